package machine

import "github.com/valerio/go-z88bench/z88bench/video"

// Z88 is the Cambridge Z88 on a 50 MHz board clock: 512K flash, 2x256K
// SRAM, 16K LCD memory holding four pixels per byte.
var Z88 = Descriptor{
	Name:       "z88",
	StepPS:     10000,
	ResetSteps: 30,
	ROM:        Memory{Size: 1 << 19, Latency: 7},
	SRAM:       Memory{Size: 1 << 18, Latency: 1},
	VRAM:       VRAM{Size: 1 << 14, DataMask: 0x0F},
	Banking: Banking{
		Segments:       4,
		SegmentShift:   14,
		LowWindowShift: 13,
		LowWindowMask:  0x07,
		ComSwitchMask:  0x04,
		LowBank:        0x00,
		HighBank:       0x20,
	},
	Video: video.Z88,
}

var presets = map[string]Descriptor{
	"z88":      Z88,
	"z88-mono": withVideo("z88-mono", 0xFF, video.Format{
		Packing: video.Mono, Width: 640, Height: 64, Stride: 256,
		BitsPerPixel: 1, PixelsPerByte: 8, HScale: 2,
	}),
	"z88-gray": withVideo("z88-gray", 0xFF, video.Format{
		Packing: video.Packed, Width: 640, Height: 64, Stride: 256,
		BitsPerPixel: 2, PixelsPerByte: 4, HScale: 2,
		Palette: []uint8{video.GrayWhite, video.GrayLightGray, video.GrayDarkGray, video.GrayBlack},
	}),
}

func withVideo(name string, dataMask uint8, f video.Format) Descriptor {
	d := Z88
	d.Name = name
	d.VRAM.DataMask = dataMask
	d.Video = f
	return d
}
