// Package tracker implements the Lectern reading engine: the engagement
// clock, reading-time estimator, engagement classifier, scroll monitor,
// and the per-visit session that ties them together.
// Design rule: scroll reaching the end is necessary but not sufficient —
// completion credit also requires plausible active reading time.
package tracker

import "time"

// ClockState is the engagement clock's activity state.
type ClockState int

const (
	// ClockActive means the tab is visible and the window focused.
	ClockActive ClockState = iota
	// ClockInactive means the tab is hidden or the window blurred.
	ClockInactive
)

// Clock accumulates active reading time for one document session.
// Every transition settles the elapsed delta against the current state
// before flipping, so rapid focus/blur flapping neither loses nor
// double-counts time. All methods take an explicit timestamp; the clock
// never reads the wall clock itself.
type Clock struct {
	state       ClockState
	lastActive  time.Time     // reference point while Active
	accumulated time.Duration // settled active time awaiting flush
}

// NewClock creates a clock. The initial state is Active when the document
// is visible and focused at session start, Inactive otherwise.
func NewClock(now time.Time, visible bool) *Clock {
	c := &Clock{state: ClockInactive}
	if visible {
		c.state = ClockActive
		c.lastActive = now
	}
	return c
}

// State returns the current activity state.
func (c *Clock) State() ClockState { return c.state }

// OnBecameActive handles a tab-visible or window-focus transition.
// The reference point resets to now; the inactive gap is never counted.
func (c *Clock) OnBecameActive(now time.Time) {
	if c.state == ClockActive {
		return
	}
	c.state = ClockActive
	c.lastActive = now
}

// OnBecameInactive handles a tab-hidden or window-blur transition,
// settling the elapsed active time before flipping.
func (c *Clock) OnBecameInactive(now time.Time) {
	if c.state == ClockInactive {
		return
	}
	c.settle(now)
	c.state = ClockInactive
}

// Accumulated returns settled time plus the live active interval, without
// resetting the accumulator. The engagement check uses this so that
// accumulated-but-unflushed time is always observed.
func (c *Clock) Accumulated(now time.Time) time.Duration {
	if c.state == ClockActive {
		if live := now.Sub(c.lastActive); live > 0 {
			return c.accumulated + live
		}
	}
	return c.accumulated
}

// Take settles and drains the accumulator if it holds at least min.
// Returns 0 and leaves the accumulator intact below the threshold, so
// sub-threshold remainders are not lost, only deferred.
func (c *Clock) Take(now time.Time, min time.Duration) time.Duration {
	if c.state == ClockActive {
		c.settle(now)
	}
	if c.accumulated < min || c.accumulated <= 0 {
		return 0
	}
	d := c.accumulated
	c.accumulated = 0
	return d
}

// settle folds the elapsed active interval into the running total and
// moves the reference point to now. Only valid while Active.
func (c *Clock) settle(now time.Time) {
	if d := now.Sub(c.lastActive); d > 0 {
		c.accumulated += d
	}
	c.lastActive = now
}
