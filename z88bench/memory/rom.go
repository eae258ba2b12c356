package memory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/valerio/go-z88bench/z88bench/bit"
	"github.com/valerio/go-z88bench/z88bench/hdl"
)

// ErrROM is returned when the ROM image cannot be used. The bench treats it
// as fatal.
var ErrROM = errors.New("cannot load ROM image")

// FlashFill is the value seen on an undriven ROM data bus.
const FlashFill uint8 = 0xFF

// ROM is the flash device: a read-only image behind a delay line.
type ROM struct {
	image *Bank
	line  *DelayLine[uint8]
}

// LoadROM reads at most capacity bytes from path. When the file is smaller
// the image is padded with zeros up to the next power of two and that size
// is used for address masking.
func LoadROM(path string, capacity, latency int) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrROM, err)
	}
	defer f.Close()

	buf := make([]byte, capacity)
	n, err := io.ReadFull(f, buf)
	switch {
	case errors.Is(err, io.EOF):
		return nil, fmt.Errorf("%w: %s is empty", ErrROM, path)
	case err != nil && !errors.Is(err, io.ErrUnexpectedEOF):
		return nil, fmt.Errorf("%w: %w", ErrROM, err)
	}

	slog.Info("Loaded ROM file", "path", path, "bytes", n)
	if n == capacity {
		if extra, _ := f.Read(make([]byte, 1)); extra > 0 {
			slog.Warn("ROM file larger than ROM, truncated", "path", path, "rom_size", capacity)
		}
	}

	rom, err := NewROM(buf[:n], latency)
	if err != nil {
		return nil, err
	}
	if rom.Size() != n {
		slog.Info("ROM file packed into a smaller ROM", "rom_size", rom.Size())
	}
	return rom, nil
}

// NewROM builds a ROM from an in-memory image, padding it to a power of two.
func NewROM(image []byte, latency int) (*ROM, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrROM)
	}
	bank, err := NewBank("rom", bit.NextPow2(len(image)))
	if err != nil {
		return nil, err
	}
	copy(bank.Bytes(), image)

	return &ROM{
		image: bank,
		line:  NewDelayLine(latency, FlashFill),
	}, nil
}

// Size is the padded image size.
func (r *ROM) Size() int { return r.image.Size() }

// Read returns the image byte at addr, wrapped modulo the padded size.
func (r *ROM) Read(addr uint32) byte { return r.image.Read(addr) }

// Latency is the number of steps between address and data.
func (r *ROM) Latency() int { return r.line.Depth() }

// Step advances the delay line one stage and returns the data visible on
// the bus for this step.
func (r *ROM) Step(pins hdl.FlashPins) uint8 {
	if !pins.Selected() {
		return r.line.Idle()
	}
	return r.line.Shift(r.image.Read(pins.Addr))
}
