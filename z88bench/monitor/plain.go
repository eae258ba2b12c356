package monitor

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/valerio/go-z88bench/z88bench/timing"
)

// Plain prints the simulated time. On a terminal it rewrites a single
// "\r<us> us" line; otherwise it logs a record every few seconds.
type Plain struct {
	w        io.Writer
	tty      bool
	throttle *timing.Throttle
}

// NewPlain creates a plain observer writing to f.
func NewPlain(f *os.File) *Plain {
	tty := term.IsTerminal(int(f.Fd()))
	interval := 5 * time.Second
	if tty {
		interval = 50 * time.Millisecond
	}
	return newPlain(f, tty, timing.NewThrottle(interval))
}

func newPlain(w io.Writer, tty bool, throttle *timing.Throttle) *Plain {
	return &Plain{w: w, tty: tty, throttle: throttle}
}

func (p *Plain) Progress(s Stats) bool {
	if !p.throttle.Ready() {
		return true
	}
	if p.tty {
		fmt.Fprintf(p.w, "\r%d us", s.Micros())
		return true
	}
	slog.Info("Simulation progress",
		"us", s.Micros(),
		"steps", s.Steps,
		"percent", fmt.Sprintf("%.1f", s.Percent()),
		"instructions", s.Instructions,
		"frames", s.Frames)
	return true
}

func (p *Plain) Close(s Stats) error {
	if p.tty {
		_, err := fmt.Fprintf(p.w, "\r%d us\n", s.Micros())
		return err
	}
	return nil
}
