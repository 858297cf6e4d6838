package games

import "time"

// Countdown is a level timer advanced explicitly by Tick. A stopped
// countdown ignores ticks.
type Countdown struct {
	limit     time.Duration
	remaining time.Duration
	running   bool
}

// NewCountdown returns a stopped countdown of the given length.
func NewCountdown(limit time.Duration) Countdown {
	return Countdown{limit: limit, remaining: limit}
}

// Start rewinds to the full length and starts running.
func (c *Countdown) Start() {
	c.remaining = c.limit
	c.running = true
}

// Stop freezes the countdown.
func (c *Countdown) Stop() {
	c.running = false
}

// Running reports whether ticks are being counted.
func (c *Countdown) Running() bool { return c.running }

// Limit returns the full length.
func (c *Countdown) Limit() time.Duration { return c.limit }

// Remaining returns the time left.
func (c *Countdown) Remaining() time.Duration { return c.remaining }

// SecondsLeft returns the whole seconds left, rounded up.
func (c *Countdown) SecondsLeft() int {
	return int((c.remaining + time.Second - 1) / time.Second)
}

// Tick subtracts d and reports whether this tick expired the countdown.
// Expiry stops the countdown, so it fires at most once per Start.
func (c *Countdown) Tick(d time.Duration) (expired bool) {
	if !c.running {
		return false
	}
	c.remaining -= d
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.running = false
	return true
}
