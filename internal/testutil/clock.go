package testutil

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced time source for tests. It satisfies
// the Clock interfaces declared by the breaker, monitor, and perf
// packages (anything with a Now() time.Time method).
//
// FakeClock is safe for concurrent use: tests may advance it from the
// test goroutine while code under test reads it from others.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock returns a FakeClock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the clock's current time. The time never moves on its own.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to the given instant.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
