package timing

import "time"

// Throttle lets an action through at most once per interval of wall-clock
// time. It is checked from the simulation loop, so it never blocks.
type Throttle struct {
	interval time.Duration
	next     time.Time
	now      func() time.Time
}

// NewThrottle creates a throttle. The first call to Ready always passes.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval, now: time.Now}
}

// Ready reports whether the interval has elapsed since the last time it
// returned true.
func (t *Throttle) Ready() bool {
	now := t.now()
	if now.Before(t.next) {
		return false
	}
	t.next = now.Add(t.interval)
	return true
}

// Reset makes the next call to Ready pass.
func (t *Throttle) Reset() {
	t.next = time.Time{}
}
