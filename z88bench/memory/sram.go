package memory

import (
	"github.com/valerio/go-z88bench/z88bench/bit"
	"github.com/valerio/go-z88bench/z88bench/hdl"
)

// SRAMFill is the value seen on an undriven SRAM data bus.
const SRAMFill uint16 = 0xFFFF

// SRAM is a 16-bit wide static RAM stored as two byte lanes.
type SRAM struct {
	low  *Bank
	high *Bank
	line *DelayLine[uint16]
}

// NewSRAM creates an SRAM with size words per lane.
func NewSRAM(size, latency int) (*SRAM, error) {
	low, err := NewBank("sram_l", size)
	if err != nil {
		return nil, err
	}
	high, err := NewBank("sram_u", size)
	if err != nil {
		return nil, err
	}
	return &SRAM{
		low:  low,
		high: high,
		line: NewDelayLine(latency, SRAMFill),
	}, nil
}

// Words is the number of 16-bit words.
func (s *SRAM) Words() int { return s.low.Size() }

// ReadWord returns the word at addr.
func (s *SRAM) ReadWord(addr uint32) uint16 {
	return bit.Combine(s.high.Read(addr), s.low.Read(addr))
}

// WriteWord stores value honouring the byte lane enables.
func (s *SRAM) WriteWord(addr uint32, value uint16, lowLane, highLane bool) {
	if lowLane {
		s.low.Write(addr, bit.Low(value))
	}
	if highLane {
		s.high.Write(addr, bit.High(value))
	}
}

// Step latches this step's read into the delay line, applies a pending
// write, and returns the data visible on the bus for this step. Writes are
// not delayed.
func (s *SRAM) Step(pins hdl.SRAMPins) uint16 {
	var out uint16
	if pins.Reading() {
		out = s.line.Shift(s.ReadWord(pins.Addr))
	} else {
		out = s.line.Idle()
	}

	if pins.Writing() {
		s.WriteWord(pins.Addr, pins.Q, !pins.LBn, !pins.UBn)
	}
	return out
}
