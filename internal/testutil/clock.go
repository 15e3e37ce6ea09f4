package testutil

import (
	"sync"
	"time"
)

// StubClock is a dms.Clock under test control.
type StubClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewStubClock(t time.Time) *StubClock {
	return &StubClock{t: t}
}

// FixedClock starts at 2024-01-15 10:30:00 UTC.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Set jumps to t, for example past a token's expiry.
func (c *StubClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}
