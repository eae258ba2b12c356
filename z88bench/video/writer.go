package video

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"

	"golang.org/x/image/bmp"

	"github.com/valerio/go-z88bench/z88bench/rotate"
)

// Encoding is the image file format.
type Encoding string

const (
	BMP Encoding = "bmp"
	PNG Encoding = "png"
)

// Pattern is the default file name pattern for the encoding.
func (e Encoding) Pattern() string {
	return "vid_%04d." + string(e)
}

func (e Encoding) encode(w io.Writer, img image.Image) error {
	switch e {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("unknown image encoding %q", e)
}

// Writer decodes frames and writes them as numbered image files.
type Writer struct {
	format   Format
	encoding Encoding
	seq      rotate.Sequence
	fb       *FrameBuffer
	index    int
}

// NewWriter creates a frame writer. Frames numbered below seq.MinIndex are
// counted but not decoded.
func NewWriter(format Format, encoding Encoding, seq rotate.Sequence) *Writer {
	fb := NewFrameBuffer(format.Width, format.Height)
	fb.Clear(WhiteColor)
	return &Writer{
		format:   format,
		encoding: encoding,
		seq:      seq,
		fb:       fb,
	}
}

// Frames is the number of frames seen so far.
func (w *Writer) Frames() int {
	return w.index
}

// WriteFrame decodes vram and writes the next image. It returns the path
// written, or an empty path when the frame was skipped.
func (w *Writer) WriteFrame(vram Reader) (string, error) {
	index := w.index
	w.index++
	if !w.seq.Enabled(index) {
		return "", nil
	}

	w.format.Decode(vram, w.fb)
	defer w.fb.Clear(WhiteColor)

	f, err := w.seq.Create(index)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := w.encoding.encode(f, w.fb.ToImage()); err != nil {
		return "", fmt.Errorf("failed to encode frame %d: %w", index, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write frame %d: %w", index, err)
	}
	slog.Debug("Frame saved", "path", f.Name(), "frame", index)
	return f.Name(), nil
}
