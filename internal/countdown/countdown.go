// Package countdown runs a cancellable per-second countdown owned by one task.
package countdown

import (
	"context"
	"sync"
	"time"
)

// Timer counts down once and expires at most once. Ticks that arrive while paused are skipped.
type Timer struct {
	mu        sync.Mutex
	remaining int
	paused    bool
	finished  bool

	done     chan struct{}
	stopOnce sync.Once
	onTick   func(remaining int)
	onExpire func()
}

// Start begins counting from seconds, one step per tick. onTick and onExpire may be nil;
// both run on the timer goroutine without the timer's lock held.
// Cancelling ctx stops the timer like Stop.
func Start(ctx context.Context, seconds int, tick time.Duration, onTick func(remaining int), onExpire func()) *Timer {
	t := &Timer{
		remaining: seconds,
		done:      make(chan struct{}),
		onTick:    onTick,
		onExpire:  onExpire,
	}
	if seconds <= 0 {
		t.finished = true
		t.closeDone()
		if onExpire != nil {
			go onExpire()
		}
		return t
	}
	go t.run(ctx, tick)
	return t
}

func (t *Timer) run(ctx context.Context, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.done:
			return
		case <-ticker.C:
			remaining, expired, ok := t.step()
			if !ok {
				continue
			}
			if t.onTick != nil {
				t.onTick(remaining)
			}
			if expired {
				t.closeDone()
				if t.onExpire != nil {
					t.onExpire()
				}
				return
			}
		}
	}
}

func (t *Timer) step() (remaining int, expired bool, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished || t.paused {
		return t.remaining, false, false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.finished = true
		return 0, true, true
	}
	return t.remaining, false, true
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *Timer) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
}

func (t *Timer) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
}

// Stop cancels the countdown. When it returns true the expiry callback will never run;
// false means the timer had already expired or stopped.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	if t.finished {
		t.mu.Unlock()
		return false
	}
	t.finished = true
	t.mu.Unlock()
	t.closeDone()
	return true
}

// Done is closed once the timer expires or stops.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

func (t *Timer) closeDone() {
	t.stopOnce.Do(func() { close(t.done) })
}
