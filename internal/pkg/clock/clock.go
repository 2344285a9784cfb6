package clock

import (
	"sync"
	"time"
)

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock implementation backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Frozen is a Clocker stuck at a given instant until moved with Set or Add.
type Frozen struct {
	mu sync.RWMutex
	at time.Time
}

// NewFrozen returns a Frozen clock reading at.
func NewFrozen(at time.Time) *Frozen {
	return &Frozen{at: at}
}

// Now returns the frozen instant.
func (f *Frozen) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.at
}

// Set moves the clock to at.
func (f *Frozen) Set(at time.Time) {
	f.mu.Lock()
	f.at = at
	f.mu.Unlock()
}

// Add moves the clock forward by d.
func (f *Frozen) Add(d time.Duration) {
	f.mu.Lock()
	f.at = f.at.Add(d)
	f.mu.Unlock()
}
