package testutil

import (
	"sync"
	"time"
)

// ManualClock implements watch.Clock with explicitly fired ticks, so tests
// control virtual time instead of sleeping.
type ManualClock struct {
	mu      sync.Mutex
	waiters []chan time.Time
}

// NewManualClock returns a clock with no pending waiters.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// After registers a waiter that only delivers when Fire is called. The
// requested duration is ignored.
func (c *ManualClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

// Fire delivers a tick to the oldest pending waiter. It reports whether a
// waiter was pending, so callers can poll for the loop under test to arrive
// at its timer before firing.
func (c *ManualClock) Fire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) == 0 {
		return false
	}
	ch := c.waiters[0]
	c.waiters = c.waiters[1:]
	ch <- time.Now()
	return true
}

// Waiting reports the number of pending waiters.
func (c *ManualClock) Waiting() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}
