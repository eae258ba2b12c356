package waveform

import (
	"io"

	"github.com/valerio/go-z88bench/z88bench/rotate"
)

// Dumper writes a Recorder into a rotating sequence of VCD files. Every
// file starts with its own header, so each one can be opened on its own.
type Dumper struct {
	rec   *Recorder
	out   *rotate.Writer
	split uint64
	next  uint64
}

// NewDumper creates a dumper. A non-zero splitPS starts a new file every
// splitPS picoseconds of simulated time.
func NewDumper(rec *Recorder, seq rotate.Sequence, splitPS uint64) *Dumper {
	out := rotate.NewWriter(seq)
	out.OnOpen = func(w io.Writer, _ int) error {
		return rec.Header(w)
	}
	return &Dumper{rec: rec, out: out, split: splitPS, next: splitPS}
}

// Sample records the signals at timePS, rotating first when a split
// boundary has been crossed.
func (d *Dumper) Sample(timePS uint64) error {
	for d.split > 0 && timePS >= d.next {
		d.next += d.split
		if err := d.Rotate(timePS); err != nil {
			return err
		}
	}
	d.rec.time = timePS
	active, err := d.out.Active()
	if err != nil || !active {
		return err
	}
	return d.rec.Sample(d.out, timePS)
}

// Rotate closes the current file and starts the next one at timePS.
func (d *Dumper) Rotate(timePS uint64) error {
	d.rec.time = timePS
	return d.out.Rotate()
}

// Index is the number of the current file.
func (d *Dumper) Index() int {
	return d.out.Index()
}

// Close flushes and closes the current file.
func (d *Dumper) Close() error {
	return d.out.Close()
}
