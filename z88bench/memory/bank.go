package memory

import (
	"errors"
	"fmt"

	"github.com/valerio/go-z88bench/z88bench/bit"
)

// ErrSize is returned when a bank is created with a size that is not a power of two.
var ErrSize = errors.New("memory size must be a power of two")

// Bank is a fixed-size addressable byte store. Every access masks the
// address into the bank, so addresses wrap modulo the bank size.
type Bank struct {
	name string
	data []byte
	mask uint32
}

// NewBank creates a zero filled bank. size must be a power of two.
func NewBank(name string, size int) (*Bank, error) {
	if !bit.IsPow2(size) {
		return nil, fmt.Errorf("%s: %d bytes: %w", name, size, ErrSize)
	}
	return &Bank{
		name: name,
		data: make([]byte, size),
		mask: uint32(size - 1),
	}, nil
}

func (b *Bank) Size() int { return len(b.data) }

func (b *Bank) Read(addr uint32) byte {
	return b.data[addr&b.mask]
}

func (b *Bank) Write(addr uint32, value byte) {
	b.data[addr&b.mask] = value
}

// Bytes exposes the backing slice. Callers must not resize it.
func (b *Bank) Bytes() []byte {
	return b.data
}
