package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/blockfall/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. Timers created
// with After only fire when Advance or Set moves the clock past them.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	timers      []mockTimer
}

type mockTimer struct {
	deadline time.Time
	ch       chan time.Time
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// After returns a channel that fires once the clock reaches now+d
func (c *MockClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan time.Time, 1)
	deadline := c.CurrentTime.Add(d)
	if d <= 0 {
		ch <- c.CurrentTime
		return ch
	}
	c.timers = append(c.timers, mockTimer{deadline: deadline, ch: ch})
	return ch
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
	c.fireLocked()
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
	c.fireLocked()
}

// Waiters returns the number of timers that have not fired yet
func (c *MockClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *MockClock) fireLocked() {
	pending := c.timers[:0]
	for _, t := range c.timers {
		if !t.deadline.After(c.CurrentTime) {
			t.ch <- c.CurrentTime
			continue
		}
		pending = append(pending, t)
	}
	c.timers = pending
}
