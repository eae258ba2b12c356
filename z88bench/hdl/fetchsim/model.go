// Package fetchsim is a behavioural stand-in for the gate-level model. It
// runs Z80 style bus cycles against the bench's memories: M1 opcode
// fetches and operand reads through the flash and SRAM pins, with data
// sampled once the device latency has elapsed. It executes just enough of
// the instruction set to move through a program (jumps, calls, loads of
// immediates, bank register writes and HALT) and can stream a test pattern
// through the video write port.
//
// The call stack is kept inside the model; CALL and RET do not produce bus
// cycles.
package fetchsim

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-z88bench/z88bench/bank"
	"github.com/valerio/go-z88bench/z88bench/disasm"
	"github.com/valerio/go-z88bench/z88bench/hdl"
	"github.com/valerio/go-z88bench/z88bench/machine"
)

// Config parameterises the model.
type Config struct {
	Resolver bank.Resolver
	// RAMBank is the first bank served by the SRAM. Lower banks are ROM.
	RAMBank uint8
	// Hold is the number of steps a bus cycle stays asserted before its data
	// is sampled. It must exceed the latency of both memories.
	Hold int
	// FrameSteps is the distance between frame pulses. Zero disables them.
	FrameSteps uint64
	Pattern    Pattern
	VRAMSize   int
	Layout     Layout
}

// DefaultConfig derives a configuration from a machine descriptor.
func DefaultConfig(d machine.Descriptor) Config {
	return Config{
		Resolver: d.Banking.Resolver(),
		RAMBank:  d.Banking.HighBank,
		Hold:     max(d.ROM.Latency, d.SRAM.Latency) + 2,
		VRAMSize: d.VRAM.Size,
		Layout:   LayoutFor(d.Video),
	}
}

func (c Config) validate() error {
	if c.Hold < 2 {
		return fmt.Errorf("bus cycle hold of %d steps is too short", c.Hold)
	}
	if c.Pattern != PatternNone && (c.VRAMSize <= 0 || !c.Layout.valid()) {
		return fmt.Errorf("pattern %s needs a video memory size and pixel layout", c.Pattern)
	}
	return nil
}

type cycleKind int

const (
	cycleFetch cycleKind = iota
	cycleRead
	cycleWrite
)

// busWrite is a memory write scheduled by the last instruction.
type busWrite struct {
	addr  uint16
	value uint8
}

// Model implements hdl.Model.
type Model struct {
	cfg Config

	in        hdl.Inputs
	prevClock bool
	steps     uint64

	flash hdl.FlashPins
	sram  hdl.SRAMPins
	fetch hdl.FetchPins
	vid   hdl.VideoPins

	regs    hdl.Registers
	banking hdl.BankRegisters
	stack   []uint16
	halted  bool

	busy    bool
	kind    cycleKind
	count   int
	ram     bool   // the current cycle targets the SRAM
	ramHigh bool   // odd byte address, upper SRAM lane
	cursor  uint16 // address of the next byte of the current instruction
	instPC  uint16
	inst    []byte
	pending *busWrite

	vcursor uint32
}

// New creates a model in its reset state.
func New(cfg Config) (*Model, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	m := &Model{cfg: cfg, inst: make([]byte, 0, 4)}
	m.reset()
	return m, nil
}

func (m *Model) Flash() hdl.FlashPins       { return m.flash }
func (m *Model) SRAM() hdl.SRAMPins         { return m.sram }
func (m *Model) Fetch() hdl.FetchPins       { return m.fetch }
func (m *Model) Registers() hdl.Registers   { return m.regs }
func (m *Model) Banking() hdl.BankRegisters { return m.banking }
func (m *Model) Video() hdl.VideoPins       { return m.vid }
func (m *Model) Drive(in hdl.Inputs)        { m.in = in }
func (m *Model) Finished() bool             { return m.halted }

// Eval advances the model by one step.
func (m *Model) Eval() {
	rising := m.in.Clock && !m.prevClock
	m.prevClock = m.in.Clock
	m.steps++

	m.stepVideo()

	if m.in.Reset {
		m.reset()
		return
	}

	if m.busy {
		m.count++
		switch {
		case m.count == m.cfg.Hold:
			m.sample()
		case m.count > m.cfg.Hold:
			m.complete()
		}
	}
	if !m.busy && rising && !m.halted {
		m.begin()
	}
}

func (m *Model) reset() {
	m.release()
	m.regs = hdl.Registers{SP: 0xFFFF, A: 0xFF, F: 0xFF}
	m.banking = hdl.BankRegisters{}
	m.stack = m.stack[:0]
	m.halted = false
	m.inst = m.inst[:0]
	m.instPC = 0
	m.cursor = 0
	m.pending = nil
}

// begin starts the next bus cycle on a rising clock edge.
func (m *Model) begin() {
	m.busy = true
	m.count = 0

	if w := m.pending; w != nil {
		m.pending = nil
		m.kind = cycleWrite
		m.drive(w.addr, false)
		if m.ram {
			m.sram.OEn = true
			m.sram.WEn = false
			m.sram.LBn = m.ramHigh
			m.sram.UBn = !m.ramHigh
			m.sram.Q = uint16(w.value)<<8 | uint16(w.value)
		} else {
			slog.Debug("Write to ROM ignored", "addr", fmt.Sprintf("%04X", w.addr))
			m.flash = hdl.FlashPins{CEn: true, OEn: true}
		}
		return
	}

	m.kind = cycleRead
	if m.wantsOpcode() {
		m.kind = cycleFetch
	}
	m.drive(m.cursor, m.kind == cycleFetch)
}

// drive puts addr on the bus of the device that serves it.
func (m *Model) drive(addr uint16, m1 bool) {
	b, err := m.cfg.Resolver.Resolve(addr, m.banking)
	if err != nil {
		b = m.cfg.Resolver.LowBank
	}
	window := uint32(1) << m.cfg.Resolver.SegmentShift
	offset := uint32(addr) & (window - 1)

	m.fetch = hdl.FetchPins{M1n: !m1, MREQn: false}
	if b < m.cfg.RAMBank {
		m.ram = false
		m.flash = hdl.FlashPins{CEn: false, OEn: false, Addr: uint32(b)*window | offset}
		m.sram = hdl.SRAMPins{CEn: true, OEn: true, WEn: true, LBn: true, UBn: true}
		return
	}

	byteAddr := uint32(b-m.cfg.RAMBank)*window | offset
	m.ram = true
	m.ramHigh = byteAddr&1 == 1
	m.flash = hdl.FlashPins{CEn: true, OEn: true}
	m.sram = hdl.SRAMPins{CEn: false, OEn: false, WEn: true, LBn: false, UBn: false, Addr: byteAddr >> 1}
}

// sample latches the data bus and strobes the cycle as valid.
func (m *Model) sample() {
	if m.kind == cycleWrite {
		return
	}

	data := m.in.FlashData
	if m.ram {
		data = uint8(m.in.SRAMData)
		if m.ramHigh {
			data = uint8(m.in.SRAMData >> 8)
		}
	}
	m.fetch.Valid = true
	m.fetch.Data = data
}

// complete ends the bus cycle. The sampled byte is only acted upon now, so
// the registers seen during the cycle belong to the instruction being
// fetched.
func (m *Model) complete() {
	kind, data := m.kind, m.fetch.Data
	m.release()
	if kind != cycleWrite {
		m.consume(data)
	}
}

func (m *Model) release() {
	m.busy = false
	m.count = 0
	m.flash = hdl.FlashPins{CEn: true, OEn: true}
	m.sram = hdl.SRAMPins{CEn: true, OEn: true, WEn: true, LBn: true, UBn: true}
	m.fetch = hdl.FetchPins{M1n: true, MREQn: true}
}

// wantsOpcode reports whether the next byte comes from an M1 cycle: the
// first byte of an instruction, or the one after a lone prefix.
func (m *Model) wantsOpcode() bool {
	switch len(m.inst) {
	case 0:
		return true
	case 1:
		return disasm.IsPrefix(m.inst[0])
	}
	return false
}

// consume appends a byte to the current instruction and executes it once
// complete.
func (m *Model) consume(b byte) {
	m.inst = append(m.inst, b)
	m.cursor++

	for len(m.inst) > 0 {
		if m.wantsOpcode() {
			return
		}
		need := disasm.DisassembleBytes(m.inst, m.instPC).Length
		if len(m.inst) < need {
			return
		}
		rest := append([]byte(nil), m.inst[need:]...)
		m.inst = m.inst[:need]
		m.execute()
		m.inst = append(m.inst[:0], rest...)
		m.cursor = m.instPC + uint16(len(m.inst))
		if m.halted {
			return
		}
	}
}
