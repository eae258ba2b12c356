// Package bank maps a logical Z80 address to the physical bank selected by
// the gate array's segment registers.
package bank

import (
	"errors"
	"fmt"

	"github.com/valerio/go-z88bench/z88bench/bit"
	"github.com/valerio/go-z88bench/z88bench/hdl"
)

// ErrUnmappedSegment is returned when the segment index of an address has no
// segment register.
var ErrUnmappedSegment = errors.New("no segment register for segment")

// Resolver holds the address split used by a machine. The low window is the
// bottom part of segment 0, which is hard wired to one of two fixed banks
// depending on a bit of the COM register.
type Resolver struct {
	SegmentShift   uint8 // segment index is pc >> SegmentShift
	Segments       int   // number of segment registers in use
	LowWindowShift uint8 // low window index is pc >> LowWindowShift
	LowWindowMask  uint16
	ComSwitchMask  uint8 // COM bit selecting HighBank for the low window
	LowBank        uint8
	HighBank       uint8
}

// Z88 is the blink layout: four 16K segments, the bottom 8K of segment 0
// switching between bank 0x00 and bank 0x20 with COM bit 2.
var Z88 = Resolver{
	SegmentShift:   14,
	Segments:       hdl.SegmentCount,
	LowWindowShift: 13,
	LowWindowMask:  0x07,
	ComSwitchMask:  0x04,
	LowBank:        0x00,
	HighBank:       0x20,
}

// Resolve returns the bank for pc given the register values at the time of
// the call. It has no state, so a line already emitted can never change.
func (r Resolver) Resolve(pc uint16, regs hdl.BankRegisters) (uint8, error) {
	if (pc>>r.LowWindowShift)&r.LowWindowMask == 0 {
		if regs.Com&r.ComSwitchMask != 0 {
			return r.HighBank, nil
		}
		return r.LowBank, nil
	}

	seg := int(bit.Field(pc, r.SegmentShift, 16-r.SegmentShift))
	if seg >= r.Segments || seg >= len(regs.Segments) {
		return 0, fmt.Errorf("%w %d (pc %04X)", ErrUnmappedSegment, seg, pc)
	}
	return regs.Segments[seg], nil
}
