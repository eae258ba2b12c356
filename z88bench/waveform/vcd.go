// Package waveform records signal values as Value Change Dump files that
// any waveform viewer can open.
package waveform

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Signal is a named value sampled once per step.
type Signal struct {
	Name  string
	Width int // bits, 1 for a wire
	Read  func() uint64
}

// Bool adapts a boolean signal.
func Bool(name string, read func() bool) Signal {
	return Signal{Name: name, Width: 1, Read: func() uint64 {
		if read() {
			return 1
		}
		return 0
	}}
}

// Bus adapts a multi-bit signal.
func Bus[T ~uint8 | ~uint16 | ~uint32 | ~uint64](name string, width int, read func() T) Signal {
	return Signal{Name: name, Width: width, Read: func() uint64 { return uint64(read()) }}
}

// identifier returns the short VCD code of the i-th variable: printable
// ASCII from '!' to '~', in base 94.
func identifier(i int) string {
	var sb strings.Builder
	for {
		sb.WriteByte(byte('!' + i%94))
		i /= 94
		if i == 0 {
			return sb.String()
		}
		i--
	}
}

// Recorder writes value changes of a fixed set of signals.
type Recorder struct {
	scope   string
	signals []Signal
	ids     []string
	last    []uint64
	primed  bool
	time    uint64
}

// NewRecorder creates a recorder for signals in the given scope.
func NewRecorder(scope string, signals []Signal) *Recorder {
	ids := make([]string, len(signals))
	for i := range signals {
		ids[i] = identifier(i)
	}
	return &Recorder{
		scope:   scope,
		signals: signals,
		ids:     ids,
		last:    make([]uint64, len(signals)),
	}
}

// Header writes the declarations and the initial values. It starts a new
// file: every signal is dumped again.
func (r *Recorder) Header(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("$version z88bench $end\n")
	sb.WriteString("$timescale 1ps $end\n")
	fmt.Fprintf(&sb, "$scope module %s $end\n", r.scope)
	for i, p := range r.signals {
		fmt.Fprintf(&sb, "$var wire %d %s %s $end\n", p.Width, r.ids[i], p.Name)
	}
	sb.WriteString("$upscope $end\n$enddefinitions $end\n")

	fmt.Fprintf(&sb, "#%d\n$dumpvars\n", r.time)
	for i, p := range r.signals {
		r.last[i] = p.Read()
		r.value(&sb, i, r.last[i])
	}
	sb.WriteString("$end\n")
	r.primed = true

	_, err := io.WriteString(w, sb.String())
	return err
}

// Sample writes the signals that changed since the previous sample, stamped
// with timePS.
func (r *Recorder) Sample(w io.Writer, timePS uint64) error {
	r.time = timePS
	if !r.primed {
		return r.Header(w)
	}

	var sb strings.Builder
	for i, p := range r.signals {
		v := p.Read()
		if v == r.last[i] {
			continue
		}
		if sb.Len() == 0 {
			fmt.Fprintf(&sb, "#%d\n", timePS)
		}
		r.last[i] = v
		r.value(&sb, i, v)
	}
	if sb.Len() == 0 {
		return nil
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (r *Recorder) value(sb *strings.Builder, i int, v uint64) {
	if r.signals[i].Width == 1 {
		sb.WriteByte('0' + byte(v&1))
		sb.WriteString(r.ids[i])
		sb.WriteByte('\n')
		return
	}
	sb.WriteByte('b')
	sb.WriteString(strconv.FormatUint(v, 2))
	sb.WriteByte(' ')
	sb.WriteString(r.ids[i])
	sb.WriteByte('\n')
}
