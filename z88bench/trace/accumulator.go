// Package trace rebuilds whole instructions from the single-byte fetches seen
// on the CPU bus and writes them out as a disassembly log.
package trace

import (
	"github.com/valerio/go-z88bench/z88bench/disasm"
	"github.com/valerio/go-z88bench/z88bench/hdl"
)

// MaxBytes is the longest Z80 instruction, prefixes included.
const MaxBytes = 4

// Record is an instruction as captured off the bus, together with the
// machine state at its first fetch.
type Record struct {
	TimePS uint64
	Regs   hdl.Registers
	Bank   uint8
	Mapped bool // false when the bank could not be resolved
	Bytes  []byte
}

// PC is the address of the first byte.
func (r Record) PC() uint16 {
	return r.Regs.PC
}

// Start is the state sampled on a fetch edge.
type Start struct {
	TimePS uint64
	Regs   hdl.Registers
	Bank   uint8
	Mapped bool
}

// Accumulator collects fetched and read bytes until an instruction is known
// to be complete. An instruction is complete when the next opcode fetch
// arrives, unless everything collected so far is a single prefix byte: the
// second M1 cycle of CB, ED, DD and FD instructions continues the same
// instruction.
type Accumulator struct {
	open    bool
	start   Start
	pending [MaxBytes]byte
	n       int
}

// Fetch handles an opcode fetch edge. When it completes the previous
// instruction, that instruction is returned.
func (a *Accumulator) Fetch(s Start, op byte) (Record, bool) {
	if a.open && a.n == 1 && disasm.IsPrefix(a.pending[0]) {
		a.append(op)
		return Record{}, false
	}

	var done Record
	emitted := false
	if a.open {
		done = a.record()
		emitted = true
	}

	a.open = true
	a.start = s
	a.n = 0
	a.append(op)
	return done, emitted
}

// Read handles an operand read edge. Reads outside an instruction, or past
// MaxBytes, are dropped.
func (a *Accumulator) Read(data byte) {
	if !a.open {
		return
	}
	a.append(data)
}

// Pending returns the instruction currently being collected.
func (a *Accumulator) Pending() (Record, bool) {
	if !a.open {
		return Record{}, false
	}
	return a.record(), true
}

// Reset drops any partial instruction.
func (a *Accumulator) Reset() {
	a.open = false
	a.n = 0
}

func (a *Accumulator) append(b byte) {
	if a.n >= MaxBytes {
		return
	}
	a.pending[a.n] = b
	a.n++
}

func (a *Accumulator) record() Record {
	return Record{
		TimePS: a.start.TimePS,
		Regs:   a.start.Regs,
		Bank:   a.start.Bank,
		Mapped: a.start.Mapped,
		Bytes:  append([]byte(nil), a.pending[:a.n]...),
	}
}
