package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant a StepClock starts from unless told otherwise.
var Epoch = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// StepClock is a fake wall clock that moves forward by a fixed step on
// every reading. It makes report timestamps reproducible.
//
// All methods are safe for concurrent use.
type StepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStepClock creates a clock at Epoch advancing by step per call to Now.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{now: Epoch, step: step}
}

// Now returns the current reading and then advances the clock.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the next reading without advancing.
func (c *StepClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to Epoch.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}
