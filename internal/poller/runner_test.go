package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunner_TicksUntilStopped(t *testing.T) {
	var ticks int64
	r := NewRunner(10*time.Millisecond, func(context.Context) {
		atomic.AddInt64(&ticks, 1)
	})

	r.Start(context.Background())
	assert.True(t, r.Running())

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&ticks) >= 3
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	assert.False(t, r.Running())

	after := atomic.LoadInt64(&ticks)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt64(&ticks))
}

func TestRunner_StartTwiceIsNoop(t *testing.T) {
	var ticks int64
	r := NewRunner(10*time.Millisecond, func(context.Context) {
		atomic.AddInt64(&ticks, 1)
	})
	r.Start(context.Background())
	r.Start(context.Background())
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&ticks) >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestRunner_StopTwiceIsSafe(t *testing.T) {
	r := NewRunner(10*time.Millisecond, func(context.Context) {})
	r.Start(context.Background())
	r.Stop()
	r.Stop()
}

func TestRunner_ContextCancelStopsLoop(t *testing.T) {
	var ticks int64
	r := NewRunner(10*time.Millisecond, func(context.Context) {
		atomic.AddInt64(&ticks, 1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	r.Start(ctx)
	cancel()

	time.Sleep(30 * time.Millisecond)
	before := atomic.LoadInt64(&ticks)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, before, atomic.LoadInt64(&ticks))
}
