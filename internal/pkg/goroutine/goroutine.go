// Package goroutine runs fire-and-forget work off the request path with a
// bound on how many tasks may be in flight at once.
package goroutine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used when NewManager receives a non-positive limit.
const DefaultMaxGoroutine = 100

// Manager starts tasks in their own goroutine. A task is dropped, never
// queued, when the limit is reached or the manager is draining.
type Manager struct {
	slots chan struct{}
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	errMu sync.Mutex
	errs  []error

	dropped atomic.Int64
}

func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = DefaultMaxGoroutine
	}

	return &Manager{slots: make(chan struct{}, limit)}
}

// Go runs f with ctx unless ctx is already done when the goroutine starts.
// Errors and panics are collected and returned by Wait.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) {
	if g == nil || !g.acquire(ctx) {
		return
	}

	go func() {
		defer g.release()
		defer g.recover(ctx)

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "error", err)
			return
		}

		if err := f(ctx); err != nil {
			g.collect(err)
		}
	}()
}

// Wait stops accepting tasks, blocks until running ones finish and joins
// their errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.errMu.Lock()
	defer g.errMu.Unlock()
	return errors.Join(g.errs...)
}

// Dropped reports how many tasks were refused.
func (g *Manager) Dropped() int64 {
	if g == nil {
		return 0
	}
	return g.dropped.Load()
}

func (g *Manager) acquire(ctx context.Context) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		g.dropped.Add(1)
		slog.WarnContext(ctx, "goroutine manager is draining, task dropped")
		return false
	}

	select {
	case g.slots <- struct{}{}:
		g.wg.Add(1)
		return true
	default:
		g.dropped.Add(1)
		slog.WarnContext(ctx, "goroutine limit reached, task dropped", "limit", cap(g.slots))
		return false
	}
}

func (g *Manager) release() {
	<-g.slots
	g.wg.Done()
}

func (g *Manager) recover(ctx context.Context) {
	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", paths)
	} else {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "panic", rvr, "stack", string(stack))
	}

	g.collect(fmt.Errorf("goroutine: panic: %v", rvr))
}

func (g *Manager) collect(err error) {
	g.errMu.Lock()
	g.errs = append(g.errs, err)
	g.errMu.Unlock()
}
