// Package disasm is a Z80 disassembler that pulls bytes through a callback,
// so it can decode from memory, from a snapshot, or from bytes captured off
// a bus. It reads exactly the bytes the instruction is made of.
package disasm

import (
	"fmt"

	"github.com/valerio/go-z88bench/z88bench/bit"
)

// ByteSource returns the byte at addr.
type ByteSource func(addr uint16) byte

// Instruction is a single decoded instruction.
type Instruction struct {
	Address  uint16
	Mnemonic string
	Length   int
	// TStates is the duration in clock cycles, taking the branch for
	// conditional instructions. TStatesAlt is the duration when the branch
	// is not taken, or zero for unconditional instructions.
	TStates    int
	TStatesAlt int
}

var (
	reg8   = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
	reg16  = [4]string{"BC", "DE", "HL", "SP"}
	reg16s = [4]string{"BC", "DE", "HL", "AF"}
	cond   = [8]string{"NZ", "Z", "NC", "C", "PO", "PE", "P", "M"}
	aluOps = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}
	rotOps = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SLL", "SRL"}
	imMode = [8]string{"0", "0/1", "1", "2", "0", "0/1", "1", "2"}
	accOps = [8]string{"RLCA", "RRCA", "RLA", "RRA", "DAA", "CPL", "SCF", "CCF"}
	block  = [4][4]string{
		{"LDI", "CPI", "INI", "OUTI"},
		{"LDD", "CPD", "IND", "OUTD"},
		{"LDIR", "CPIR", "INIR", "OTIR"},
		{"LDDR", "CPDR", "INDR", "OTDR"},
	}
)

// IsPrefix reports whether op is one of the Z80 opcode prefixes.
func IsPrefix(op byte) bool {
	return op == 0xCB || op == 0xED || op == 0xDD || op == 0xFD
}

// Disassemble decodes the instruction at pc.
func Disassemble(read ByteSource, pc uint16) Instruction {
	d := &decoder{read: read, pc: pc}
	mnemonic, t, t2 := d.decode()
	return Instruction{
		Address:    pc,
		Mnemonic:   mnemonic,
		Length:     d.n,
		TStates:    t,
		TStatesAlt: t2,
	}
}

// DisassembleBytes decodes the instruction at the start of data, treating
// data as located at pc. Missing bytes read as zero.
func DisassembleBytes(data []byte, pc uint16) Instruction {
	return Disassemble(func(addr uint16) byte {
		off := int(addr - pc)
		if off < len(data) {
			return data[off]
		}
		return 0
	}, pc)
}

type decoder struct {
	read ByteSource
	pc   uint16
	n    int

	index string // "", "IX" or "IY"
	disp  bool   // an (IX+d) displacement was read
}

func (d *decoder) next() byte {
	b := d.read(d.pc + uint16(d.n))
	d.n++
	return b
}

func (d *decoder) imm16() uint16 {
	lo := d.next()
	hi := d.next()
	return bit.Combine(hi, lo)
}

func (d *decoder) relative() uint16 {
	e := int8(d.next())
	return d.pc + uint16(d.n) + uint16(e)
}

// r returns the name of 8-bit register i, applying the index prefix.
// plain keeps H and L unprefixed, as in LD H,(IX+d).
func (d *decoder) r(i byte, plain bool) string {
	if d.index == "" {
		return reg8[i]
	}
	switch i {
	case 4:
		if !plain {
			return d.index + "H"
		}
	case 5:
		if !plain {
			return d.index + "L"
		}
	case 6:
		return d.indexed()
	}
	return reg8[i]
}

func (d *decoder) indexed() string {
	e := int8(d.next())
	d.disp = true
	return fmt.Sprintf("(%s%+d)", d.index, e)
}

func (d *decoder) hl() string {
	if d.index != "" {
		return d.index
	}
	return "HL"
}

func (d *decoder) rp(p byte) string {
	if p == 2 {
		return d.hl()
	}
	return reg16[p]
}

func (d *decoder) rp2(p byte) string {
	if p == 2 {
		return d.hl()
	}
	return reg16s[p]
}

func (d *decoder) decode() (string, int, int) {
	op := d.next()
	switch op {
	case 0xCB:
		return d.decodeCB()
	case 0xED:
		return d.decodeED()
	case 0xDD, 0xFD:
		d.index = "IX"
		if op == 0xFD {
			d.index = "IY"
		}
		return d.decodeIndexed()
	}
	return d.decodeBase(op)
}

func (d *decoder) decodeIndexed() (string, int, int) {
	op := d.next()
	switch op {
	case 0xDD, 0xFD, 0xED:
		// the first prefix behaves as a NOP and the next byte starts a new
		// instruction
		d.n = 1
		return fmt.Sprintf("db $%02X", d.read(d.pc)), 4, 0
	case 0xCB:
		return d.decodeIndexedCB()
	}

	mnemonic, t, t2 := d.decodeBase(op)
	t += 4
	if t2 != 0 {
		t2 += 4
	}
	if d.disp {
		t += 8
		if op == 0x36 {
			// LD (IX+d),n overlaps the displacement with the operand fetch
			t -= 3
		}
	}
	return mnemonic, t, t2
}

func (d *decoder) decodeIndexedCB() (string, int, int) {
	mem := d.indexed()
	op := d.next()
	x, y, z := op>>6, (op>>3)&7, op&7

	var mnemonic string
	switch x {
	case 0:
		mnemonic = fmt.Sprintf("%s %s", rotOps[y], mem)
	case 1:
		return fmt.Sprintf("BIT %d,%s", y, mem), 20, 0
	case 2:
		mnemonic = fmt.Sprintf("RES %d,%s", y, mem)
	default:
		mnemonic = fmt.Sprintf("SET %d,%s", y, mem)
	}
	if z != 6 {
		mnemonic += "," + reg8[z]
	}
	return mnemonic, 23, 0
}

func (d *decoder) decodeCB() (string, int, int) {
	op := d.next()
	x, y, z := op>>6, (op>>3)&7, op&7

	t := 8
	if z == 6 {
		t = 15
		if x == 1 {
			t = 12
		}
	}
	switch x {
	case 0:
		return fmt.Sprintf("%s %s", rotOps[y], reg8[z]), t, 0
	case 1:
		return fmt.Sprintf("BIT %d,%s", y, reg8[z]), t, 0
	case 2:
		return fmt.Sprintf("RES %d,%s", y, reg8[z]), t, 0
	}
	return fmt.Sprintf("SET %d,%s", y, reg8[z]), t, 0
}

func (d *decoder) decodeED() (string, int, int) {
	op := d.next()
	x, y, z := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	if x == 2 && z <= 3 && y >= 4 {
		if y >= 6 {
			return block[y-4][z], 21, 16
		}
		return block[y-4][z], 16, 0
	}
	if x != 1 {
		return fmt.Sprintf("db $ED,$%02X", op), 8, 0
	}

	switch z {
	case 0:
		if y == 6 {
			return "IN F,(C)", 12, 0
		}
		return fmt.Sprintf("IN %s,(C)", reg8[y]), 12, 0
	case 1:
		if y == 6 {
			return "OUT (C),0", 12, 0
		}
		return fmt.Sprintf("OUT (C),%s", reg8[y]), 12, 0
	case 2:
		if q == 0 {
			return fmt.Sprintf("SBC HL,%s", reg16[p]), 15, 0
		}
		return fmt.Sprintf("ADC HL,%s", reg16[p]), 15, 0
	case 3:
		nn := d.imm16()
		if q == 0 {
			return fmt.Sprintf("LD ($%04X),%s", nn, reg16[p]), 20, 0
		}
		return fmt.Sprintf("LD %s,($%04X)", reg16[p], nn), 20, 0
	case 4:
		return "NEG", 8, 0
	case 5:
		if y == 1 {
			return "RETI", 14, 0
		}
		return "RETN", 14, 0
	case 6:
		return "IM " + imMode[y], 8, 0
	}

	switch y {
	case 0:
		return "LD I,A", 9, 0
	case 1:
		return "LD R,A", 9, 0
	case 2:
		return "LD A,I", 9, 0
	case 3:
		return "LD A,R", 9, 0
	case 4:
		return "RRD", 18, 0
	case 5:
		return "RLD", 18, 0
	}
	return fmt.Sprintf("db $ED,$%02X", op), 8, 0
}

func (d *decoder) decodeBase(op byte) (string, int, int) {
	x, y, z := op>>6, (op>>3)&7, op&7
	p, q := y>>1, y&1

	switch x {
	case 1:
		if op == 0x76 {
			return "HALT", 4, 0
		}
		mem := y == 6 || z == 6
		dst := d.r(y, mem)
		src := d.r(z, mem)
		if mem {
			return fmt.Sprintf("LD %s,%s", dst, src), 7, 0
		}
		return fmt.Sprintf("LD %s,%s", dst, src), 4, 0
	case 2:
		src := d.r(z, false)
		if z == 6 {
			return aluOps[y] + src, 7, 0
		}
		return aluOps[y] + src, 4, 0
	case 0:
		return d.decodeX0(y, z, p, q)
	}
	return d.decodeX3(y, z, p, q)
}

func (d *decoder) decodeX0(y, z, p, q byte) (string, int, int) {
	switch z {
	case 0:
		switch y {
		case 0:
			return "NOP", 4, 0
		case 1:
			return "EX AF,AF'", 4, 0
		case 2:
			return fmt.Sprintf("DJNZ $%04X", d.relative()), 13, 8
		case 3:
			return fmt.Sprintf("JR $%04X", d.relative()), 12, 0
		}
		return fmt.Sprintf("JR %s,$%04X", cond[y-4], d.relative()), 12, 7
	case 1:
		if q == 0 {
			return fmt.Sprintf("LD %s,$%04X", d.rp(p), d.imm16()), 10, 0
		}
		return fmt.Sprintf("ADD %s,%s", d.hl(), d.rp(p)), 11, 0
	case 2:
		switch p {
		case 0, 1:
			if q == 0 {
				return fmt.Sprintf("LD (%s),A", reg16[p]), 7, 0
			}
			return fmt.Sprintf("LD A,(%s)", reg16[p]), 7, 0
		case 2:
			if q == 0 {
				return fmt.Sprintf("LD ($%04X),%s", d.imm16(), d.hl()), 16, 0
			}
			return fmt.Sprintf("LD %s,($%04X)", d.hl(), d.imm16()), 16, 0
		}
		if q == 0 {
			return fmt.Sprintf("LD ($%04X),A", d.imm16()), 13, 0
		}
		return fmt.Sprintf("LD A,($%04X)", d.imm16()), 13, 0
	case 3:
		if q == 0 {
			return "INC " + d.rp(p), 6, 0
		}
		return "DEC " + d.rp(p), 6, 0
	case 4, 5:
		name := "INC "
		if z == 5 {
			name = "DEC "
		}
		dst := d.r(y, false)
		if y == 6 {
			return name + dst, 11, 0
		}
		return name + dst, 4, 0
	case 6:
		dst := d.r(y, false)
		n := d.next()
		if y == 6 {
			return fmt.Sprintf("LD %s,$%02X", dst, n), 10, 0
		}
		return fmt.Sprintf("LD %s,$%02X", dst, n), 7, 0
	}
	return accOps[y], 4, 0
}

func (d *decoder) decodeX3(y, z, p, q byte) (string, int, int) {
	switch z {
	case 0:
		return "RET " + cond[y], 11, 5
	case 1:
		if q == 0 {
			return "POP " + d.rp2(p), 10, 0
		}
		switch p {
		case 0:
			return "RET", 10, 0
		case 1:
			return "EXX", 4, 0
		case 2:
			return fmt.Sprintf("JP (%s)", d.hl()), 4, 0
		}
		return "LD SP," + d.hl(), 6, 0
	case 2:
		return fmt.Sprintf("JP %s,$%04X", cond[y], d.imm16()), 10, 10
	case 3:
		switch y {
		case 0:
			return fmt.Sprintf("JP $%04X", d.imm16()), 10, 0
		case 2:
			return fmt.Sprintf("OUT ($%02X),A", d.next()), 11, 0
		case 3:
			return fmt.Sprintf("IN A,($%02X)", d.next()), 11, 0
		case 4:
			return fmt.Sprintf("EX (SP),%s", d.hl()), 19, 0
		case 5:
			return "EX DE,HL", 4, 0
		case 6:
			return "DI", 4, 0
		case 7:
			return "EI", 4, 0
		}
		// 0xCB only reaches here through an index prefix, which is
		// handled before decodeBase
		return "db $CB", 4, 0
	case 4:
		return fmt.Sprintf("CALL %s,$%04X", cond[y], d.imm16()), 17, 10
	case 5:
		if q == 0 {
			return "PUSH " + d.rp2(p), 11, 0
		}
		if p == 0 {
			return fmt.Sprintf("CALL $%04X", d.imm16()), 17, 0
		}
		return fmt.Sprintf("db $%02X", 0xC5|y<<3), 4, 0
	case 6:
		return fmt.Sprintf("%s$%02X", aluOps[y], d.next()), 7, 0
	}
	return fmt.Sprintf("RST $%02X", y*8), 11, 0
}
