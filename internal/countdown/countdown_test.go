package countdown

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tick = 5 * time.Millisecond

func waitDone(t *testing.T, tm *Timer) {
	t.Helper()
	select {
	case <-tm.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not finish")
	}
}

func TestTimerExpiresOnce(t *testing.T) {
	var (
		mu    sync.Mutex
		ticks []int
	)
	var expired atomic.Int32
	fired := make(chan struct{}, 4)

	tm := Start(context.Background(), 3, tick, func(r int) {
		mu.Lock()
		ticks = append(ticks, r)
		mu.Unlock()
	}, func() {
		expired.Add(1)
		fired <- struct{}{}
	})

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expiry callback not called")
	}
	time.Sleep(5 * tick)

	assert.Equal(t, int32(1), expired.Load())
	assert.Equal(t, 0, tm.Remaining())
	mu.Lock()
	assert.Equal(t, []int{2, 1, 0}, ticks)
	mu.Unlock()
	assert.False(t, tm.Stop(), "stopping an expired timer is a no-op")
}

func TestStopPreventsExpiry(t *testing.T) {
	var expired atomic.Bool
	tm := Start(context.Background(), 1000, tick, nil, func() { expired.Store(true) })

	require.True(t, tm.Stop())
	waitDone(t, tm)
	time.Sleep(4 * tick)
	assert.False(t, expired.Load())
	assert.False(t, tm.Stop())
}

func TestPauseHoldsRemaining(t *testing.T) {
	tm := Start(context.Background(), 1000, tick, nil, nil)
	defer tm.Stop()

	tm.Pause()
	require.True(t, tm.Paused())
	held := tm.Remaining()
	time.Sleep(6 * tick)
	assert.Equal(t, held, tm.Remaining())

	tm.Resume()
	require.Eventually(t, func() bool { return tm.Remaining() < held }, time.Second, tick)
}

func TestContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var expired atomic.Bool
	tm := Start(ctx, 1000, tick, nil, func() { expired.Store(true) })

	cancel()
	waitDone(t, tm)
	assert.False(t, expired.Load())
}

func TestZeroSecondsExpiresImmediately(t *testing.T) {
	fired := make(chan struct{})
	tm := Start(context.Background(), 0, tick, nil, func() { close(fired) })
	waitDone(t, tm)
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expiry callback not called")
	}
}
