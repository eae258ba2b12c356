package video

import (
	"errors"
	"fmt"
)

// ErrFormat is returned for video layouts that cannot be decoded.
var ErrFormat = errors.New("invalid video format")

// Packing selects how pixel values map to colors.
type Packing string

const (
	// Mono pixels are one bit: set is ink (black), clear is paper (white).
	Mono Packing = "mono"
	// Packed pixels are several bits wide and go through a gray palette.
	Packed Packing = "packed"
)

// Format describes the layout of the frame inside video memory.
type Format struct {
	Packing       Packing `yaml:"packing"`
	Width         int     `yaml:"width"`  // output pixels
	Height        int     `yaml:"height"` // output rows
	Stride        int     `yaml:"stride"` // bytes between rows in memory
	BitsPerPixel  int     `yaml:"bits_per_pixel"`
	PixelsPerByte int     `yaml:"pixels_per_byte"`
	HScale        int     `yaml:"hscale"` // horizontal replication of each memory pixel
	Palette       []uint8 `yaml:"palette,omitempty"`
}

// Z88 is the layout of the Z88 LCD: 640x64, four one-bit pixels in the low
// nibble of each byte, rows 256 bytes apart.
var Z88 = Format{
	Packing:       Mono,
	Width:         640,
	Height:        64,
	Stride:        1024 >> 2,
	BitsPerPixel:  1,
	PixelsPerByte: 4,
	HScale:        1,
}

// SourceWidth is the number of memory pixels in a row.
func (f Format) SourceWidth() int {
	return f.Width / f.HScale
}

// Validate checks the format against a video memory of vramSize bytes.
func (f Format) Validate(vramSize int) error {
	switch {
	case f.Width <= 0 || f.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrFormat, f.Width, f.Height)
	case f.HScale <= 0 || f.Width%f.HScale != 0:
		return fmt.Errorf("%w: width %d not divisible by hscale %d", ErrFormat, f.Width, f.HScale)
	case f.BitsPerPixel <= 0 || f.PixelsPerByte <= 0 || f.BitsPerPixel*f.PixelsPerByte > 8:
		return fmt.Errorf("%w: %d pixels of %d bits do not fit a byte", ErrFormat, f.PixelsPerByte, f.BitsPerPixel)
	case (f.SourceWidth()+f.PixelsPerByte-1)/f.PixelsPerByte > f.Stride:
		return fmt.Errorf("%w: row of %d pixels longer than stride %d", ErrFormat, f.SourceWidth(), f.Stride)
	case f.Stride*f.Height > vramSize:
		return fmt.Errorf("%w: %d rows of %d bytes exceed video memory of %d bytes", ErrFormat, f.Height, f.Stride, vramSize)
	}

	switch f.Packing {
	case Mono:
		if f.BitsPerPixel != 1 {
			return fmt.Errorf("%w: mono packing needs 1 bit per pixel, got %d", ErrFormat, f.BitsPerPixel)
		}
	case Packed:
		if len(f.Palette) != 1<<f.BitsPerPixel {
			return fmt.Errorf("%w: palette has %d entries, need %d", ErrFormat, len(f.Palette), 1<<f.BitsPerPixel)
		}
	default:
		return fmt.Errorf("%w: unknown packing %q", ErrFormat, f.Packing)
	}
	return nil
}
