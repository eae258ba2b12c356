// Package edge turns level signals sampled once per step into activation
// events.
package edge

// Detector reports rising activations of a level signal.
type Detector struct {
	prev bool
}

// New creates a detector whose previous level is initial. Starting high
// means a level that is already active at the first sample is not reported.
func New(initial bool) *Detector {
	return &Detector{prev: initial}
}

// Update records level as the current sample and reports whether it is a
// fresh activation. It must be called on every step, whether or not the
// caller acts on the result.
func (d *Detector) Update(level bool) bool {
	rising := level && !d.prev
	d.prev = level
	return rising
}
