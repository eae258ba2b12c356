package fetchsim

import (
	"log/slog"

	"github.com/valerio/go-z88bench/z88bench/bit"
)

const (
	flagS uint8 = 0x80
	flagZ uint8 = 0x40
	flagH uint8 = 0x10
	flagP uint8 = 0x04
	flagN uint8 = 0x02
	flagC uint8 = 0x01
)

// Blink I/O ports.
const (
	portSR0 = 0xD0
	portSR3 = 0xD3
	portCOM = 0xB0
)

// execute applies the completed instruction in m.inst and moves to the
// next one. Anything not handled below only advances PC.
func (m *Model) execute() {
	in := m.inst
	r := &m.regs
	next := m.instPC + uint16(len(in))
	imm16 := func() uint16 { return bit.Combine(in[2], in[1]) }

	switch in[0] {
	case 0x76: // HALT
		m.halted = true
		next = m.instPC
		slog.Debug("CPU halted", "pc", r.PC)
	case 0xC3: // JP nn
		next = imm16()
	case 0x18: // JR e
		next += uint16(int8(in[1]))
	case 0x10: // DJNZ e
		r.B--
		if r.B != 0 {
			next += uint16(int8(in[1]))
		}
	case 0xCD: // CALL nn
		m.stack = append(m.stack, next)
		r.SP -= 2
		next = imm16()
	case 0xC9: // RET
		if n := len(m.stack); n > 0 {
			next = m.stack[n-1]
			m.stack = m.stack[:n-1]
			r.SP += 2
		}
	case 0x01:
		r.B, r.C = bit.High(imm16()), bit.Low(imm16())
	case 0x11:
		r.D, r.E = bit.High(imm16()), bit.Low(imm16())
	case 0x21:
		r.H, r.L = bit.High(imm16()), bit.Low(imm16())
	case 0x31:
		r.SP = imm16()
	case 0x06, 0x0E, 0x16, 0x1E, 0x26, 0x2E, 0x3E: // LD r,n
		*m.reg8(in[0]>>3&7) = in[1]
	case 0x3C: // INC A
		r.A++
		r.F = r.F&flagC | szp(r.A)&^flagP
		if r.A&0x0F == 0 {
			r.F |= flagH
		}
		if r.A == 0x80 {
			r.F |= flagP
		}
	case 0xAF: // XOR A
		r.A = 0
		r.F = szp(0)
	case 0x32: // LD (nn),A
		m.pending = &busWrite{addr: imm16(), value: r.A}
	case 0x77: // LD (HL),A
		m.pending = &busWrite{addr: bit.Combine(r.H, r.L), value: r.A}
	case 0xD3: // OUT (n),A
		m.out(in[1], r.A)
	case 0xDD, 0xFD:
		if len(in) == 4 && in[1] == 0x21 {
			v := bit.Combine(in[3], in[2])
			if in[0] == 0xDD {
				r.IX = v
			} else {
				r.IY = v
			}
		}
	}

	r.PC = next
	m.instPC = next
}

func (m *Model) reg8(i byte) *uint8 {
	r := &m.regs
	switch i {
	case 0:
		return &r.B
	case 1:
		return &r.C
	case 2:
		return &r.D
	case 3:
		return &r.E
	case 4:
		return &r.H
	case 5:
		return &r.L
	}
	return &r.A
}

// out handles writes to the gate array registers. Other ports are ignored.
func (m *Model) out(port, value uint8) {
	switch {
	case port >= portSR0 && port <= portSR3:
		m.banking.Segments[port-portSR0] = value
	case port == portCOM:
		m.banking.Com = value
	default:
		return
	}
	slog.Debug("Bank register written", "port", port, "value", value)
}

// szp returns the sign, zero and parity flags of v.
func szp(v uint8) uint8 {
	f := v & flagS
	if v == 0 {
		f |= flagZ
	}
	ones := 0
	for b := v; b != 0; b &= b - 1 {
		ones++
	}
	if ones%2 == 0 {
		f |= flagP
	}
	return f
}
