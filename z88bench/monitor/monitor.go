// Package monitor reports the progress of a running simulation, either as
// a single updating line or as a full-screen terminal dashboard.
package monitor

import "github.com/valerio/go-z88bench/z88bench/timing"

// Stats is a snapshot of the run handed to observers.
type Stats struct {
	Machine      string
	TimePS       uint64
	Steps        uint64
	Budget       uint64 // total steps of the run
	Instructions uint64
	Frames       int
	LastLine     string // latest trace line
}

// Micros is the simulated time in microseconds.
func (s Stats) Micros() uint64 {
	return timing.Micros(s.TimePS)
}

// Percent is the share of the step budget already run.
func (s Stats) Percent() float64 {
	if s.Budget == 0 {
		return 0
	}
	return float64(s.Steps) * 100 / float64(s.Budget)
}

// Observer receives periodic progress reports from the simulation loop.
type Observer interface {
	// Progress reports the current state. Returning false asks the run to
	// stop.
	Progress(s Stats) bool
	// Close reports the final state and releases the observer.
	Close(s Stats) error
}

// Discard is an observer that ignores everything.
type Discard struct{}

func (Discard) Progress(Stats) bool { return true }
func (Discard) Close(Stats) error   { return nil }
