package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_RunsAndCollectsErrors(t *testing.T) {
	m := NewManager(4)
	boom := errors.New("publish failed")

	var ran atomic.Int32
	for i := range 3 {
		m.Go(context.Background(), func(context.Context) error {
			ran.Add(1)
			if i == 1 {
				return boom
			}
			return nil
		})
	}

	err := m.Wait()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), ran.Load())
	assert.Zero(t, m.Dropped())
}

func TestManager_RecoversPanics(t *testing.T) {
	m := NewManager(1)
	m.Go(context.Background(), func(context.Context) error { panic("bad event") })

	err := m.Wait()
	assert.ErrorContains(t, err, "panic: bad event")
}

func TestManager_DropsAtLimit(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})

	m.Go(context.Background(), func(context.Context) error {
		close(started)
		<-release
		return nil
	})
	<-started

	var ran atomic.Bool
	m.Go(context.Background(), func(context.Context) error {
		ran.Store(true)
		return nil
	})

	close(release)
	assert.NoError(t, m.Wait())
	assert.False(t, ran.Load())
	assert.Equal(t, int64(1), m.Dropped())
}

func TestManager_SkipsAfterWait(t *testing.T) {
	m := NewManager(1)
	assert.NoError(t, m.Wait())

	var ran atomic.Bool
	m.Go(context.Background(), func(context.Context) error {
		ran.Store(true)
		return nil
	})
	assert.NoError(t, m.Wait())
	assert.False(t, ran.Load())
	assert.Equal(t, int64(1), m.Dropped())
}

func TestManager_SkipsCanceledContext(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	m.Go(ctx, func(context.Context) error {
		ran.Store(true)
		return nil
	})
	assert.NoError(t, m.Wait())
	assert.False(t, ran.Load())
}

func TestManager_Nil(t *testing.T) {
	var m *Manager
	m.Go(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, m.Wait())
	assert.Zero(t, m.Dropped())
}
