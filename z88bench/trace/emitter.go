package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/valerio/go-z88bench/z88bench/bit"
	"github.com/valerio/go-z88bench/z88bench/disasm"
	"github.com/valerio/go-z88bench/z88bench/timing"
)

// missingByte answers disassembler requests past the captured bytes.
const missingByte = 0xFF

// Flags renders the F register as SZ.H.PNC, with '.' for clear bits.
// Bits 5 and 3 are undocumented and always shown as '.'.
func Flags(f uint8) string {
	const names = "SZ.H.PNC"
	var b [8]byte
	for i := range b {
		if names[i] != '.' && bit.IsSet(uint8(7-i), f) {
			b[i] = names[i]
		} else {
			b[i] = '.'
		}
	}
	return string(b[:])
}

// Line formats one trace line, without the trailing newline.
func Line(r Record, mnemonic string) string {
	bank := fmt.Sprintf("%02X", r.Bank)
	if !r.Mapped {
		bank = "??"
	}
	g := r.Regs
	return fmt.Sprintf("%6d  %s%04X  %-16s  %02X  %s  %02X%02X %02X%02X %02X%02X  %04X %04X  %04X",
		timing.Micros(r.TimePS), bank, g.PC, mnemonic,
		g.A, Flags(g.F),
		g.B, g.C, g.D, g.E, g.H, g.L,
		g.IX, g.IY, g.SP)
}

// Emitter writes completed instructions to a log.
type Emitter struct {
	w     io.Writer
	sb    strings.Builder
	lines uint64
	last  string
}

// NewEmitter creates an emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit disassembles r and writes its line. When the disassembler needs more
// bytes than were captured, a diagnostic line precedes the instruction.
func (e *Emitter) Emit(r Record) (disasm.Instruction, error) {
	e.sb.Reset()
	pc := r.PC()
	in := disasm.Disassemble(func(addr uint16) byte {
		off := int(addr - pc)
		if off < len(r.Bytes) {
			return r.Bytes[off]
		}
		fmt.Fprintf(&e.sb, "PC: Unexpected location %04X\n", addr)
		return missingByte
	}, pc)

	line := Line(r, in.Mnemonic)
	e.sb.WriteString(line)
	e.sb.WriteByte('\n')

	e.lines++
	e.last = line
	if _, err := io.WriteString(e.w, e.sb.String()); err != nil {
		return in, fmt.Errorf("failed to write trace line: %w", err)
	}
	return in, nil
}

// Lines is the number of instructions emitted so far.
func (e *Emitter) Lines() uint64 {
	return e.lines
}

// Last is the most recent instruction line.
func (e *Emitter) Last() string {
	return e.last
}
