// Package timing holds the units of simulated time, run budgets and the
// wall-clock throttle used for progress reporting.
package timing

// Simulated time is counted in picoseconds.
const (
	Picosecond  uint64 = 1
	Nanosecond         = 1000 * Picosecond
	Microsecond        = 1000 * Nanosecond
	Millisecond        = 1000 * Microsecond
	Second             = 1000 * Millisecond
)

// DefaultSteps is the run length when no duration is given.
const DefaultSteps uint64 = 100_000_000

// Micros converts picoseconds to whole microseconds.
func Micros(ps uint64) uint64 {
	return ps / Microsecond
}

// Duration sums a duration given in mixed units, in picoseconds.
func Duration(us, ms, sec uint64) uint64 {
	return us*Microsecond + ms*Millisecond + sec*Second
}

// Budget returns the number of steps needed to cover the duration, rounding
// up. A zero duration gives DefaultSteps.
func Budget(durationPS, stepPS uint64) uint64 {
	if durationPS == 0 || stepPS == 0 {
		return DefaultSteps
	}
	return (durationPS + stepPS - 1) / stepPS
}
