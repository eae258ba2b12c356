package memory

// DelayLine is a fixed-depth shift register modelling device access latency.
// A value pushed in comes out depth calls later.
type DelayLine[T ~uint8 | ~uint16] struct {
	stages []T
	head   int
	fill   T
}

// NewDelayLine creates a delay line of the given depth with every stage
// holding the fill value. depth must be at least 1.
func NewDelayLine[T ~uint8 | ~uint16](depth int, fill T) *DelayLine[T] {
	if depth < 1 {
		depth = 1
	}
	d := &DelayLine[T]{
		stages: make([]T, depth),
		fill:   fill,
	}
	d.Reset()
	return d
}

// Shift inserts in at the head and returns the oldest stage.
func (d *DelayLine[T]) Shift(in T) T {
	out := d.stages[d.head]
	d.stages[d.head] = in
	d.head++
	if d.head == len(d.stages) {
		d.head = 0
	}
	return out
}

// Idle shifts the fill value in, as an unselected device does.
func (d *DelayLine[T]) Idle() T {
	return d.Shift(d.fill)
}

// Depth is the latency in steps.
func (d *DelayLine[T]) Depth() int {
	return len(d.stages)
}

// Reset fills every stage with the fill value.
func (d *DelayLine[T]) Reset() {
	for i := range d.stages {
		d.stages[i] = d.fill
	}
	d.head = 0
}
