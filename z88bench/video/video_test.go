package video

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/valerio/go-z88bench/z88bench/rotate"
)

type mem []byte

func (m mem) Read(addr uint32) uint8 {
	return m[int(addr)%len(m)]
}

func filled(size int, value byte) mem {
	m := make(mem, size)
	for i := range m {
		m[i] = value
	}
	return m
}

func assertAll(t *testing.T, fb *FrameBuffer, want Color) {
	t.Helper()
	for y := 0; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			if fb.GetPixel(x, y) != want {
				t.Fatalf("pixel (%d,%d) = %08X, want %08X", x, y, fb.GetPixel(x, y), want)
			}
		}
	}
}

func TestDecodeZ88(t *testing.T) {
	fb := NewFrameBuffer(Z88.Width, Z88.Height)

	t.Run("blank memory is all paper", func(t *testing.T) {
		Z88.Decode(filled(1<<14, 0x00), fb)
		assertAll(t, fb, WhiteColor)
	})

	t.Run("full ink is all black", func(t *testing.T) {
		Z88.Decode(filled(1<<14, 0x0F), fb)
		assertAll(t, fb, BlackColor)
	})

	t.Run("high nibble is ignored", func(t *testing.T) {
		Z88.Decode(filled(1<<14, 0xF0), fb)
		assertAll(t, fb, WhiteColor)
	})

	t.Run("most significant pixel first", func(t *testing.T) {
		vram := filled(1<<14, 0x00)
		vram[0] = 0x08          // pixel 0 of row 0
		vram[1] = 0x01          // pixel 7 of row 0
		vram[Z88.Stride] = 0x04 // pixel 1 of row 1
		Z88.Decode(vram, fb)

		assert.Equal(t, BlackColor, fb.GetPixel(0, 0))
		assert.Equal(t, WhiteColor, fb.GetPixel(1, 0))
		assert.Equal(t, BlackColor, fb.GetPixel(7, 0))
		assert.Equal(t, WhiteColor, fb.GetPixel(0, 1))
		assert.Equal(t, BlackColor, fb.GetPixel(1, 1))
	})
}

func TestDecodePacked(t *testing.T) {
	f := Format{
		Packing: Packed, Width: 8, Height: 1, Stride: 2,
		BitsPerPixel: 2, PixelsPerByte: 4, HScale: 2,
		Palette: []uint8{GrayWhite, GrayLightGray, GrayDarkGray, GrayBlack},
	}
	require.NoError(t, f.Validate(2))

	fb := NewFrameBuffer(8, 1)
	f.Decode(mem{0x1B, 0x00}, fb) // 00 01 10 11

	want := []uint8{255, 255, 170, 170, 85, 85, 0, 0}
	for x, level := range want {
		assert.Equal(t, Gray(level), fb.GetPixel(x, 0), "x=%d", x)
	}
}

func TestDecodeMonoReplicated(t *testing.T) {
	f := Format{Packing: Mono, Width: 16, Height: 1, Stride: 1, BitsPerPixel: 1, PixelsPerByte: 8, HScale: 2}
	require.NoError(t, f.Validate(1))

	fb := NewFrameBuffer(16, 1)
	f.Decode(mem{0x80}, fb)
	assert.Equal(t, BlackColor, fb.GetPixel(0, 0))
	assert.Equal(t, BlackColor, fb.GetPixel(1, 0))
	assert.Equal(t, WhiteColor, fb.GetPixel(2, 0))
}

func TestFormatValidate(t *testing.T) {
	require.NoError(t, Z88.Validate(1<<14))

	tests := []struct {
		name   string
		modify func(*Format)
		vram   int
	}{
		{"vram too small", func(f *Format) {}, 1 << 12},
		{"width not divisible", func(f *Format) { f.HScale = 3 }, 1 << 14},
		{"pixels overflow byte", func(f *Format) { f.PixelsPerByte = 9 }, 1 << 14},
		{"row longer than stride", func(f *Format) { f.Stride = 100 }, 1 << 14},
		{"mono with two bits", func(f *Format) { f.BitsPerPixel = 2 }, 1 << 14},
		{"packed without palette", func(f *Format) { f.Packing = Packed }, 1 << 14},
		{"unknown packing", func(f *Format) { f.Packing = "rgb" }, 1 << 14},
		{"zero size", func(f *Format) { f.Height = 0 }, 1 << 14},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Z88
			tt.modify(&f)
			assert.ErrorIs(t, f.Validate(tt.vram), ErrFormat)
		})
	}
}

func TestWriter(t *testing.T) {
	t.Run("bmp frames", func(t *testing.T) {
		dir := t.TempDir()
		w := NewWriter(Z88, BMP, rotate.Sequence{Dir: dir, Pattern: BMP.Pattern()})

		path, err := w.WriteFrame(filled(1<<14, 0x0F))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "vid_0000.bmp"), path)

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		img, err := bmp.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, 640, img.Bounds().Dx())
		assert.Equal(t, 64, img.Bounds().Dy())
		r, g, b, _ := img.At(10, 10).RGBA()
		assert.Zero(t, r+g+b)

		assertAll(t, w.fb, WhiteColor)
		assert.Equal(t, 1, w.Frames())
	})

	t.Run("png frames below minimum index are skipped", func(t *testing.T) {
		dir := t.TempDir()
		w := NewWriter(Z88, PNG, rotate.Sequence{Dir: dir, Pattern: PNG.Pattern(), MinIndex: 1})

		path, err := w.WriteFrame(filled(1<<14, 0))
		require.NoError(t, err)
		assert.Empty(t, path)

		path, err = w.WriteFrame(filled(1<<14, 0))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "vid_0001.png"), path)

		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		img, err := png.Decode(f)
		require.NoError(t, err)
		r, _, _, _ := img.At(0, 0).RGBA()
		assert.Equal(t, uint32(0xFFFF), r)
	})
}
