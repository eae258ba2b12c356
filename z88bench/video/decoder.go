package video

// Reader reads video memory. Addresses wrap at the memory size.
type Reader interface {
	Read(addr uint32) uint8
}

// Decode renders the whole frame from vram into fb. Memory is only read.
func (f Format) Decode(vram Reader, fb *FrameBuffer) {
	mask := uint8(1)<<f.BitsPerPixel - 1
	src := f.SourceWidth()

	for y := 0; y < f.Height; y++ {
		row := uint32(y * f.Stride)
		for xs := 0; xs < src; xs++ {
			data := vram.Read(row + uint32(xs/f.PixelsPerByte))
			shift := (f.PixelsPerByte - 1 - xs%f.PixelsPerByte) * f.BitsPerPixel
			color := f.color(data>>shift&mask)

			x := xs * f.HScale
			for r := 0; r < f.HScale; r++ {
				fb.SetPixel(x+r, y, color)
			}
		}
	}
}

func (f Format) color(value uint8) Color {
	if f.Packing == Packed {
		return Gray(f.Palette[value])
	}
	if value != 0 {
		return BlackColor
	}
	return WhiteColor
}
