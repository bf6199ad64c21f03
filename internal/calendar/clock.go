package calendar

import (
	"sync"
	"time"
)

// Clock abstracts "now" so calendar math stays deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock returns the same instant until moved with Set or Advance.
type FixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{t: t}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// StepClock hands out the given instants in order and keeps returning the
// last one once exhausted.
type StepClock struct {
	mu     sync.Mutex
	values []time.Time
	idx    int
}

func NewStepClock(values ...time.Time) *StepClock {
	return &StepClock{values: values}
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.values) == 0 {
		return time.Time{}
	}
	if c.idx >= len(c.values) {
		return c.values[len(c.values)-1]
	}
	v := c.values[c.idx]
	c.idx++
	return v
}
