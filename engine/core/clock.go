package core

import "time"

// Clock measures elapsed time against the monotonic clock.
type Clock struct {
	now       func() time.Time
	startTime time.Time
	started   bool
	elapsed   time.Duration
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if c.started {
		c.elapsed = c.now().Sub(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.started = true
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.started = false
}

// Elapsed is the time between Start and the last Update.
func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

// ElapsedMS is Elapsed truncated to whole milliseconds, the granularity the
// animation is driven at.
func (c *Clock) ElapsedMS() float64 {
	return float64(c.elapsed.Milliseconds())
}
