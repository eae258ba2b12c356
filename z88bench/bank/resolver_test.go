package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-z88bench/z88bench/hdl"
)

func TestResolveZ88(t *testing.T) {
	regs := hdl.BankRegisters{Segments: [4]uint8{0x10, 0x21, 0x3F, 0xFE}}

	tests := []struct {
		name string
		pc   uint16
		com  uint8
		want uint8
	}{
		{"low window, rams switch off", 0x0000, 0x00, 0x00},
		{"low window top, rams switch off", 0x1FFF, 0x00, 0x00},
		{"low window, rams switch on", 0x1234, 0x04, 0x20},
		{"other com bits ignored", 0x0100, 0xFB, 0x00},
		{"upper half of segment 0 uses SR0", 0x2000, 0x04, 0x10},
		{"segment 1", 0x4000, 0x00, 0x21},
		{"segment 2", 0xBFFF, 0x00, 0x3F},
		{"segment 3", 0xC000, 0x04, 0xFE},
		{"segment 3 top", 0xFFFF, 0x00, 0xFE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := regs
			r.Com = tt.com
			got, err := Z88.Resolve(tt.pc, r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveIsPure(t *testing.T) {
	regs := hdl.BankRegisters{Segments: [4]uint8{1, 2, 3, 4}}
	first, err := Z88.Resolve(0x8000, regs)
	require.NoError(t, err)

	regs.Segments[2] = 0x99
	second, err := Z88.Resolve(0x8000, regs)
	require.NoError(t, err)

	assert.Equal(t, uint8(3), first, "earlier result is a value, not a reference")
	assert.Equal(t, uint8(0x99), second)
}

func TestUnmappedSegment(t *testing.T) {
	r := Z88
	r.Segments = 2

	_, err := r.Resolve(0xC000, hdl.BankRegisters{})
	assert.ErrorIs(t, err, ErrUnmappedSegment)

	got, err := r.Resolve(0x4000, hdl.BankRegisters{Segments: [4]uint8{0, 7}})
	require.NoError(t, err)
	assert.Equal(t, uint8(7), got)
}
