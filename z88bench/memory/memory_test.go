package memory

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-z88bench/z88bench/hdl"
)

func TestBank(t *testing.T) {
	t.Run("rejects sizes that are not a power of two", func(t *testing.T) {
		_, err := NewBank("bad", 1000)
		assert.ErrorIs(t, err, ErrSize)

		_, err = NewBank("zero", 0)
		assert.ErrorIs(t, err, ErrSize)
	})

	t.Run("addresses wrap modulo size", func(t *testing.T) {
		b, err := NewBank("ram", 0x100)
		require.NoError(t, err)

		b.Write(0x1234, 0xAB)
		assert.Equal(t, byte(0xAB), b.Read(0x34))
		assert.Equal(t, byte(0xAB), b.Read(0xFF34))
		assert.Equal(t, 256, b.Size())
	})
}

func TestDelayLine(t *testing.T) {
	t.Run("starts filled", func(t *testing.T) {
		d := NewDelayLine[uint8](3, 0xFF)
		assert.Equal(t, uint8(0xFF), d.Shift(1))
		assert.Equal(t, uint8(0xFF), d.Shift(2))
		assert.Equal(t, uint8(0xFF), d.Shift(3))
		assert.Equal(t, uint8(1), d.Shift(4))
		assert.Equal(t, uint8(2), d.Idle())
		assert.Equal(t, uint8(3), d.Idle())
		assert.Equal(t, uint8(4), d.Idle())
		assert.Equal(t, uint8(0xFF), d.Idle())
	})

	t.Run("depth is clamped to one", func(t *testing.T) {
		d := NewDelayLine[uint16](0, 0xFFFF)
		assert.Equal(t, 1, d.Depth())
		assert.Equal(t, uint16(0xFFFF), d.Shift(0x1234))
		assert.Equal(t, uint16(0x1234), d.Shift(0))
	})

	t.Run("returns the value pushed depth steps ago", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for _, depth := range []int{1, 2, 7, 13} {
			d := NewDelayLine[uint8](depth, 0xFF)
			var history []uint8
			for step := 0; step < 500; step++ {
				var in uint8
				if rng.Intn(3) == 0 {
					in = 0xFF
					history = append(history, in)
					got := d.Idle()
					checkHistory(t, depth, step, history, got)
					continue
				}
				in = uint8(rng.Intn(0xFF))
				history = append(history, in)
				got := d.Shift(in)
				checkHistory(t, depth, step, history, got)
			}
		}
	})
}

func checkHistory(t *testing.T, depth, step int, history []uint8, got uint8) {
	t.Helper()
	want := uint8(0xFF)
	if step-depth >= 0 {
		want = history[step-depth]
	}
	if got != want {
		t.Fatalf("depth %d step %d: got 0x%02X; want 0x%02X", depth, step, got, want)
	}
}

func writeROM(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rom")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadROM(t *testing.T) {
	t.Run("pads to the next power of two", func(t *testing.T) {
		data := make([]byte, 1000)
		for i := range data {
			data[i] = byte(i)
		}
		rom, err := LoadROM(writeROM(t, data), 1<<19, 7)
		require.NoError(t, err)

		assert.Equal(t, 1024, rom.Size())
		assert.Equal(t, byte(0x00), rom.Read(1000), "padding is zero")
		assert.Equal(t, byte(5), rom.Read(1024+5), "addresses wrap modulo padded size")
		assert.Equal(t, byte(999&0xFF), rom.Read(0x7FFFF&^0x3FF|999))
	})

	t.Run("exact power of two keeps its size", func(t *testing.T) {
		rom, err := LoadROM(writeROM(t, make([]byte, 4096)), 1<<19, 7)
		require.NoError(t, err)
		assert.Equal(t, 4096, rom.Size())
	})

	t.Run("truncates to capacity", func(t *testing.T) {
		rom, err := LoadROM(writeROM(t, make([]byte, 5000)), 4096, 7)
		require.NoError(t, err)
		assert.Equal(t, 4096, rom.Size())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadROM(filepath.Join(t.TempDir(), "nope.rom"), 1<<19, 7)
		assert.ErrorIs(t, err, ErrROM)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := LoadROM(writeROM(t, nil), 1<<19, 7)
		assert.ErrorIs(t, err, ErrROM)
	})
}

func TestROMStep(t *testing.T) {
	rom, err := NewROM([]byte{0x11, 0x22, 0x33, 0x44}, 2)
	require.NoError(t, err)
	sel := func(addr uint32) hdl.FlashPins { return hdl.FlashPins{Addr: addr} }
	off := hdl.FlashPins{CEn: true, OEn: true, Addr: 1}

	assert.Equal(t, uint8(0xFF), rom.Step(sel(0)))
	assert.Equal(t, uint8(0xFF), rom.Step(off))
	assert.Equal(t, uint8(0x11), rom.Step(sel(5)))
	assert.Equal(t, uint8(0xFF), rom.Step(off))
	assert.Equal(t, uint8(0x22), rom.Step(off), "address 5 wraps to 1")
	assert.Equal(t, 2, rom.Latency())
}

func TestSRAM(t *testing.T) {
	t.Run("byte lanes", func(t *testing.T) {
		s, err := NewSRAM(16, 1)
		require.NoError(t, err)

		s.WriteWord(3, 0xBEEF, true, true)
		assert.Equal(t, uint16(0xBEEF), s.ReadWord(3))

		s.WriteWord(3, 0x1234, true, false)
		assert.Equal(t, uint16(0xBE34), s.ReadWord(3))

		s.WriteWord(3, 0x5678, false, true)
		assert.Equal(t, uint16(0x5634), s.ReadWord(3))

		assert.Equal(t, uint16(0x5634), s.ReadWord(16+3), "addresses wrap")
	})

	t.Run("step reads before it writes", func(t *testing.T) {
		s, err := NewSRAM(16, 1)
		require.NoError(t, err)
		s.WriteWord(2, 0x1111, true, true)

		rw := hdl.SRAMPins{CEn: false, OEn: false, WEn: false, LBn: false, UBn: true, Addr: 2, Q: 0xAAAA}
		assert.Equal(t, SRAMFill, s.Step(rw), "one step latency")
		assert.Equal(t, uint16(0x11AA), s.ReadWord(2), "only the low lane was written")

		idle := hdl.SRAMPins{CEn: true, OEn: true, WEn: true, LBn: true, UBn: true}
		assert.Equal(t, uint16(0x1111), s.Step(idle), "read latched the old word")
		assert.Equal(t, SRAMFill, s.Step(idle))
	})
}

func TestVRAM(t *testing.T) {
	v, err := NewVRAM(0x4000, 0x0F)
	require.NoError(t, err)

	pins := hdl.VideoPins{WriteEnable: true, WriteAddr: 0x4005, WriteData: 0xAB}
	v.Step(false, pins)
	assert.Equal(t, byte(0), v.Read(5), "no write while the clock is low")

	v.Step(true, pins)
	assert.Equal(t, byte(0x0B), v.Read(5), "data masked and address wrapped")

	pins.WriteEnable = false
	pins.WriteData = 0x01
	v.Step(true, pins)
	assert.Equal(t, byte(0x0B), v.Read(5))
}
