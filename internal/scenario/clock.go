package scenario

import "time"

// Clock is a manual clock. Scenarios replayed against it skip waits
// instantly while app timers still observe the elapsed time.
type Clock struct {
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time { return c.now }

// Set moves the clock to t. Moving backwards is ignored.
func (c *Clock) Set(t time.Time) {
	if t.After(c.now) {
		c.now = t
	}
}
