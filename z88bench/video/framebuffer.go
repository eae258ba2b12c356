// Package video turns the packed contents of video memory into images.
package video

import "image"

// Color is an opaque RGB color stored as 0xAARRGGBB.
type Color uint32

// Gray levels shared by the mono and packed decoders.
const (
	GrayWhite     = 255
	GrayLightGray = 170
	GrayDarkGray  = 85
	GrayBlack     = 0
)

const (
	WhiteColor Color = 0xFFFFFFFF
	BlackColor Color = 0xFF000000
)

// Gray returns the opaque gray color of the given level.
func Gray(level uint8) Color {
	l := Color(level)
	return 0xFF000000 | l<<16 | l<<8 | l
}

// RGBA splits c into its components.
func (c Color) RGBA() (r, g, b, a uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

// FrameBuffer is a fixed size grid of pixels, reused for every frame.
type FrameBuffer struct {
	width  int
	height int
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer with the specified size.
func NewFrameBuffer(width, height int) *FrameBuffer {
	return &FrameBuffer{
		width:  width,
		height: height,
		buffer: make([]uint32, width*height),
	}
}

func (fb *FrameBuffer) Width() int  { return fb.width }
func (fb *FrameBuffer) Height() int { return fb.height }

func (fb *FrameBuffer) GetPixel(x, y int) Color {
	return Color(fb.buffer[y*fb.width+x])
}

func (fb *FrameBuffer) SetPixel(x, y int, color Color) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Clear sets every pixel to color.
func (fb *FrameBuffer) Clear(color Color) {
	for i := range fb.buffer {
		fb.buffer[i] = uint32(color)
	}
}

// ToImage converts the frame to an RGBA image for encoding.
func (fb *FrameBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width(), fb.Height()))
	for y := 0; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			r, g, b, a := fb.GetPixel(x, y).RGBA()
			idx := img.PixOffset(x, y)
			img.Pix[idx] = r
			img.Pix[idx+1] = g
			img.Pix[idx+2] = b
			img.Pix[idx+3] = a
		}
	}
	return img
}
