// Package rotate produces numbered output files: z88_0000.vcd,
// z88_0001.vcd, ... Files numbered below a minimum index are skipped
// entirely, which lets a run fast-forward through an uninteresting prefix
// without paying for the output.
package rotate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Sequence names numbered files inside a directory.
type Sequence struct {
	Dir      string
	Pattern  string // fmt pattern with a single integer verb, e.g. "vid_%04d.bmp"
	MinIndex int
}

// Path returns the file name for index.
func (s Sequence) Path(index int) string {
	return filepath.Join(s.Dir, fmt.Sprintf(s.Pattern, index))
}

// Enabled reports whether files for index are produced.
func (s Sequence) Enabled(index int) bool {
	return index >= s.MinIndex
}

// Create creates the file for index.
func (s Sequence) Create(index int) (*os.File, error) {
	f, err := os.Create(s.Path(index))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.Path(index), err)
	}
	return f, nil
}

// Writer is a buffered writer over a Sequence. Every Rotate moves to the
// next index; while the current index is below the minimum, writes are
// discarded.
type Writer struct {
	seq   Sequence
	index int
	file  *os.File
	buf   *bufio.Writer

	// OnOpen is called after a new file is opened, before any other write.
	OnOpen func(w io.Writer, index int) error
}

// NewWriter creates a writer positioned at index 0. The first file is opened
// lazily, so OnOpen can be set after construction.
func NewWriter(seq Sequence) *Writer {
	return &Writer{seq: seq, index: -1}
}

// Index is the index of the current file.
func (w *Writer) Index() int {
	if w.index < 0 {
		return 0
	}
	return w.index
}

// Active reports whether writes currently reach a file. It opens the first
// file if needed and returns the error when that fails.
func (w *Writer) Active() (bool, error) {
	if err := w.ensure(); err != nil {
		return false, err
	}
	return w.buf != nil, nil
}

func (w *Writer) ensure() error {
	if w.index >= 0 {
		return nil
	}
	return w.open(0)
}

func (w *Writer) open(index int) error {
	w.index = index
	if !w.seq.Enabled(index) {
		return nil
	}
	f, err := w.seq.Create(index)
	if err != nil {
		return err
	}
	w.file = f
	w.buf = bufio.NewWriterSize(f, 64*1024)
	if w.OnOpen != nil {
		return w.OnOpen(w.buf, index)
	}
	return nil
}

func (w *Writer) Write(p []byte) (int, error) {
	if err := w.ensure(); err != nil {
		return 0, err
	}
	if w.buf == nil {
		return len(p), nil
	}
	return w.buf.Write(p)
}

// Flush pushes buffered data to the current file.
func (w *Writer) Flush() error {
	if w.buf == nil {
		return nil
	}
	return w.buf.Flush()
}

// Rotate closes the current file and moves to the next index.
func (w *Writer) Rotate() error {
	next := w.Index() + 1
	if err := w.Close(); err != nil {
		return err
	}
	return w.open(next)
}

// Close flushes and closes the current file. The writer keeps its index and
// discards writes until the next Rotate.
func (w *Writer) Close() error {
	if w.index < 0 {
		w.index = 0
	}
	if w.file == nil {
		return nil
	}
	err := w.buf.Flush()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.file = nil
	w.buf = nil
	return err
}
