// internal/clock/clock.go
//
// Periodic driver for a game's elapsed-time counter.
// The engine holds no timer of its own; a transport session owns one Clock per
// connected game, starts it while the game's timer runs and stops it when the
// timer stops or the session ends.

package clock

import (
	"context"
	"sync"
	"time"
)

// Clock calls tick once per interval until stopped. If tick returns false the
// clock stops itself.
type Clock struct {
	interval time.Duration
	tick     func() bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New returns a stopped clock.
func New(interval time.Duration, tick func() bool) *Clock {
	return &Clock{interval: interval, tick: tick}
}

// Start launches the tick loop. It is a no-op if the clock is already running.
// Cancelling ctx stops the clock.
func (c *Clock) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	go c.loop(ctx, done)
}

// Stop halts the tick loop and waits for it to exit. Safe to call when stopped.
func (c *Clock) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the tick loop is active.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}

func (c *Clock) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer c.release(done)

	t := time.NewTicker(c.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if !c.tick() {
				return
			}
		}
	}
}

// release clears the running state if it still belongs to this loop.
func (c *Clock) release(done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done == done {
		c.cancel()
		c.cancel, c.done = nil, nil
	}
}
