package fetchsim

import (
	"fmt"
	"strings"

	"github.com/valerio/go-z88bench/z88bench/hdl"
	"github.com/valerio/go-z88bench/z88bench/video"
)

// Pattern is an image streamed into video memory through the write port.
type Pattern int

const (
	PatternNone Pattern = iota
	PatternCheckerboard
	PatternStripes
	PatternDiagonal
)

const (
	patternTileSize      = 8
	patternStripeWidth   = 4
	patternStripeSpeed   = 2
	patternDiagonalSpeed = 4
)

// Layout is how pattern pixels are packed into video memory bytes.
type Layout struct {
	Stride        int // bytes per row
	BitsPerPixel  int
	PixelsPerByte int
	Ink           uint8 // pixel value of a set pattern pixel
	Paper         uint8 // pixel value of a clear pattern pixel
}

// LayoutFor packs pixels the way f decodes them. Ink is the darkest pixel
// value of the format and paper the lightest.
func LayoutFor(f video.Format) Layout {
	l := Layout{
		Stride:        f.Stride,
		BitsPerPixel:  f.BitsPerPixel,
		PixelsPerByte: f.PixelsPerByte,
		Ink:           uint8(1)<<f.BitsPerPixel - 1,
	}
	if f.Packing == video.Packed && len(f.Palette) > 0 {
		l.Ink = 0
		for i, level := range f.Palette {
			if level < f.Palette[l.Ink] {
				l.Ink = uint8(i)
			}
			if level > f.Palette[l.Paper] {
				l.Paper = uint8(i)
			}
		}
	}
	return l
}

func (l Layout) valid() bool {
	return l.Stride > 0 && l.BitsPerPixel > 0 && l.PixelsPerByte > 0 &&
		l.BitsPerPixel*l.PixelsPerByte <= 8
}

var patternNames = []string{"none", "checkerboard", "stripes", "diagonal"}

func (p Pattern) String() string {
	if int(p) < len(patternNames) {
		return patternNames[p]
	}
	return fmt.Sprintf("Pattern(%d)", int(p))
}

// ParsePattern returns the pattern called name.
func ParsePattern(name string) (Pattern, error) {
	for i, n := range patternNames {
		if strings.EqualFold(n, name) {
			return Pattern(i), nil
		}
	}
	return PatternNone, fmt.Errorf("unknown pattern %q, valid: %s", name, strings.Join(patternNames, ", "))
}

// Byte returns the video memory byte at addr for the given frame. The
// leftmost pixel sits in the most significant used bits.
func (p Pattern) Byte(addr uint32, l Layout, frame int) uint8 {
	y := int(addr) / l.Stride
	x0 := int(addr) % l.Stride * l.PixelsPerByte

	var out uint8
	for i := 0; i < l.PixelsPerByte; i++ {
		v := l.Paper
		if p.ink(x0+i, y, frame) {
			v = l.Ink
		}
		out |= v << ((l.PixelsPerByte - 1 - i) * l.BitsPerPixel)
	}
	return out
}

func (p Pattern) ink(x, y, frame int) bool {
	switch p {
	case PatternCheckerboard:
		return (x/patternTileSize+y/patternTileSize+frame)%2 == 1
	case PatternStripes:
		return ((x+frame*patternStripeSpeed)/patternStripeWidth)%2 == 1
	case PatternDiagonal:
		return ((x+y+frame*patternDiagonalSpeed)/patternTileSize)%2 == 1
	}
	return false
}

// stepVideo drives the frame pulse and the pattern writer. A new write is
// set up while the clock is low so that it is stable for the following
// high phase, when the bench stores it.
func (m *Model) stepVideo() {
	frame := 0
	if m.cfg.FrameSteps > 0 {
		m.vid.Frame = m.steps%m.cfg.FrameSteps == 0
		frame = int(m.steps / m.cfg.FrameSteps)
	}

	if m.cfg.Pattern == PatternNone {
		m.vid.WriteEnable = false
		return
	}
	if m.in.Clock {
		return
	}
	m.vid = hdl.VideoPins{
		Frame:       m.vid.Frame,
		WriteEnable: true,
		WriteAddr:   m.vcursor,
		WriteData:   m.cfg.Pattern.Byte(m.vcursor, m.cfg.Layout, frame),
	}
	m.vcursor = (m.vcursor + 1) % uint32(m.cfg.VRAMSize)
}
