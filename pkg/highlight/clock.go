package highlight

import (
	"sync"
	"time"
)

// Clock reports monotonic time elapsed since a fixed origin. The pulse
// phase is a function of this value alone, so animation does not depend on
// how many ticks were delivered.
type Clock interface {
	Elapsed() time.Duration
}

type monotonicClock struct {
	start time.Time
}

func (c monotonicClock) Elapsed() time.Duration {
	return time.Since(c.start)
}

var processClock = monotonicClock{start: time.Now()}

// ProcessClock returns the clock shared by the whole process. Its origin is
// package initialization.
func ProcessClock() Clock {
	return processClock
}

// ManualClock is a Clock that only moves when told to. It is safe for
// concurrent use.
type ManualClock struct {
	mu      sync.Mutex
	elapsed time.Duration
}

// Elapsed returns the current reading.
func (c *ManualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.elapsed += d
	c.mu.Unlock()
}

// Set moves the clock to d.
func (c *ManualClock) Set(d time.Duration) {
	c.mu.Lock()
	c.elapsed = d
	c.mu.Unlock()
}
