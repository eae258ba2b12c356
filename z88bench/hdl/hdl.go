// Package hdl describes the boundary between the bench and a clock-stepped
// hardware model. The model is opaque: the bench drives a handful of input
// pins, calls Eval once per step and observes the named outputs through a
// BusView. Nothing else of the model's internal hierarchy is visible.
package hdl

// Inputs are the pins the bench drives before every Eval.
type Inputs struct {
	Clock     bool
	Reset     bool
	FlashData uint8  // FL_D, output of the ROM delay line
	SRAMData  uint16 // SRAM_D, output of the SRAM delay line
}

// FlashPins are the ROM chip pins. CEn and OEn are active low.
type FlashPins struct {
	CEn  bool
	OEn  bool
	Addr uint32
}

// Selected reports whether the ROM is driving the bus.
func (p FlashPins) Selected() bool {
	return !p.CEn && !p.OEn
}

// SRAMPins are the 16-bit SRAM chip pins. All enables are active low.
type SRAMPins struct {
	CEn  bool
	OEn  bool
	WEn  bool
	LBn  bool
	UBn  bool
	Addr uint32
	Q    uint16 // data driven by the model during writes
}

// Reading reports whether the SRAM is selected for a read.
func (p SRAMPins) Reading() bool {
	return !p.CEn && !p.OEn
}

// Writing reports whether the SRAM is selected for a write.
func (p SRAMPins) Writing() bool {
	return !p.CEn && !p.WEn
}

// FetchPins are the CPU bus control signals used to find instruction
// fetches. M1n and MREQn are active low, Valid is the bus cycle strobe
// (PM1 on the Z88 blink).
type FetchPins struct {
	M1n   bool
	MREQn bool
	Valid bool
	Data  uint8 // data bus as seen by the CPU
}

// OpcodeFetch is the composite condition of an M1 cycle.
func (p FetchPins) OpcodeFetch() bool {
	return !p.M1n && !p.MREQn && p.Valid
}

// MemoryRead is the composite condition of a non-M1 memory cycle.
func (p FetchPins) MemoryRead() bool {
	return p.M1n && !p.MREQn && p.Valid
}

// Registers is a snapshot of the CPU visible registers.
type Registers struct {
	PC, SP uint16
	IX, IY uint16
	A, F   uint8
	B, C   uint8
	D, E   uint8
	H, L   uint8
}

// SegmentCount is the number of segment bank registers of the blink.
const SegmentCount = 4

// BankRegisters are the memory management registers of the gate array.
type BankRegisters struct {
	Segments [SegmentCount]uint8 // SR0..SR3
	Com      uint8
}

// VideoPins are the video controller outputs: the frame toggle and the
// VRAM write port.
type VideoPins struct {
	Frame       bool
	WriteEnable bool
	WriteAddr   uint32
	WriteData   uint8
}

// BusView is the read-only view of the model's outputs.
type BusView interface {
	Flash() FlashPins
	SRAM() SRAMPins
	Fetch() FetchPins
	Registers() Registers
	Banking() BankRegisters
	Video() VideoPins
}

// Model is a steppable hardware model.
type Model interface {
	BusView

	// Drive sets the input pins for the next evaluation.
	Drive(in Inputs)
	// Eval settles the model for the current input values.
	Eval()
	// Finished reports whether the model asked for the simulation to end.
	Finished() bool
}
