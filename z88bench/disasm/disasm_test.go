package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassemble(t *testing.T) {
	tests := []struct {
		name     string
		pc       uint16
		bytes    []byte
		mnemonic string
		length   int
		tstates  int
		alt      int
	}{
		{"nop", 0, []byte{0x00}, "NOP", 1, 4, 0},
		{"ld bc,nn", 0, []byte{0x01, 0x34, 0x12}, "LD BC,$1234", 3, 10, 0},
		{"ld a,n", 0, []byte{0x3E, 0x7F}, "LD A,$7F", 2, 7, 0},
		{"ld (hl),n", 0, []byte{0x36, 0x01}, "LD (HL),$01", 2, 10, 0},
		{"ld r,r", 0, []byte{0x78}, "LD A,B", 1, 4, 0},
		{"ld r,(hl)", 0, []byte{0x46}, "LD B,(HL)", 1, 7, 0},
		{"halt", 0, []byte{0x76}, "HALT", 1, 4, 0},
		{"alu r", 0, []byte{0x90}, "SUB B", 1, 4, 0},
		{"alu n", 0, []byte{0xFE, 0x10}, "CP $10", 2, 7, 0},
		{"adc a,(hl)", 0, []byte{0x8E}, "ADC A,(HL)", 1, 7, 0},
		{"jp nn", 0, []byte{0xC3, 0x00, 0xC0}, "JP $C000", 3, 10, 0},
		{"jr backwards", 0x0100, []byte{0x18, 0xFE}, "JR $0100", 2, 12, 0},
		{"jr nz forwards", 0x0100, []byte{0x20, 0x05}, "JR NZ,$0107", 2, 12, 7},
		{"djnz", 0x0200, []byte{0x10, 0xFC}, "DJNZ $01FE", 2, 13, 8},
		{"call cc", 0, []byte{0xDC, 0x00, 0x10}, "CALL C,$1000", 3, 17, 10},
		{"ret cc", 0, []byte{0xC8}, "RET Z", 1, 11, 5},
		{"push af", 0, []byte{0xF5}, "PUSH AF", 1, 11, 0},
		{"out n", 0, []byte{0xD3, 0xD1}, "OUT ($D1),A", 2, 11, 0},
		{"rst", 0, []byte{0xEF}, "RST $28", 1, 11, 0},
		{"ex af", 0, []byte{0x08}, "EX AF,AF'", 1, 4, 0},
		{"ld (nn),a", 0, []byte{0x32, 0xCD, 0xAB}, "LD ($ABCD),A", 3, 13, 0},

		{"cb rlc", 0, []byte{0xCB, 0x00}, "RLC B", 2, 8, 0},
		{"cb bit", 0, []byte{0xCB, 0x47}, "BIT 0,A", 2, 8, 0},
		{"cb bit (hl)", 0, []byte{0xCB, 0x7E}, "BIT 7,(HL)", 2, 12, 0},
		{"cb set (hl)", 0, []byte{0xCB, 0xC6}, "SET 0,(HL)", 2, 15, 0},

		{"ed ldir", 0, []byte{0xED, 0xB0}, "LDIR", 2, 21, 16},
		{"ed ldi", 0, []byte{0xED, 0xA0}, "LDI", 2, 16, 0},
		{"ed ld (nn),de", 0, []byte{0xED, 0x53, 0x00, 0x80}, "LD ($8000),DE", 4, 20, 0},
		{"ed im 2", 0, []byte{0xED, 0x5E}, "IM 2", 2, 8, 0},
		{"ed in r,(c)", 0, []byte{0xED, 0x78}, "IN A,(C)", 2, 12, 0},
		{"ed sbc", 0, []byte{0xED, 0x52}, "SBC HL,DE", 2, 15, 0},
		{"ed invalid", 0, []byte{0xED, 0x00}, "db $ED,$00", 2, 8, 0},

		{"ld ix,nn", 0, []byte{0xDD, 0x21, 0x00, 0x40}, "LD IX,$4000", 4, 14, 0},
		{"ld a,(ix+d)", 0, []byte{0xDD, 0x7E, 0x05}, "LD A,(IX+5)", 3, 19, 0},
		{"ld (iy-2),h", 0, []byte{0xFD, 0x74, 0xFE}, "LD (IY-2),H", 3, 19, 0},
		{"ld (ix+d),n", 0, []byte{0xDD, 0x36, 0x02, 0x99}, "LD (IX+2),$99", 4, 19, 0},
		{"inc (ix+d)", 0, []byte{0xDD, 0x34, 0x00}, "INC (IX+0)", 3, 23, 0},
		{"add a,(iy+d)", 0, []byte{0xFD, 0x86, 0x01}, "ADD A,(IY+1)", 3, 19, 0},
		{"push iy", 0, []byte{0xFD, 0xE5}, "PUSH IY", 2, 15, 0},
		{"jp (ix)", 0, []byte{0xDD, 0xE9}, "JP (IX)", 2, 8, 0},
		{"add ix,ix", 0, []byte{0xDD, 0x29}, "ADD IX,IX", 2, 15, 0},
		{"ld ixh,n", 0, []byte{0xDD, 0x26, 0x12}, "LD IXH,$12", 3, 11, 0},
		{"ex de,hl unaffected", 0, []byte{0xDD, 0xEB}, "EX DE,HL", 2, 8, 0},
		{"ddcb bit", 0, []byte{0xDD, 0xCB, 0x03, 0x46}, "BIT 0,(IX+3)", 4, 20, 0},
		{"fdcb set", 0, []byte{0xFD, 0xCB, 0xFF, 0xFE}, "SET 7,(IY-1)", 4, 23, 0},
		{"fdcb undocumented copy", 0, []byte{0xFD, 0xCB, 0x01, 0x00}, "RLC (IY+1),B", 4, 23, 0},
		{"double prefix", 0, []byte{0xDD, 0xFD, 0x21}, "db $DD", 1, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := DisassembleBytes(tt.bytes, tt.pc)
			assert.Equal(t, tt.mnemonic, in.Mnemonic)
			assert.Equal(t, tt.length, in.Length)
			assert.Equal(t, tt.tstates, in.TStates)
			assert.Equal(t, tt.alt, in.TStatesAlt)
			assert.Equal(t, tt.pc, in.Address)
		})
	}
}

func TestDisassembleReadsOnlyWhatItNeeds(t *testing.T) {
	data := []byte{0xCB, 0x47, 0xAA, 0xBB}
	var offsets []int
	in := Disassemble(func(addr uint16) byte {
		off := int(addr - 0x8000)
		offsets = append(offsets, off)
		return data[off]
	}, 0x8000)

	assert.Equal(t, "BIT 0,A", in.Mnemonic)
	assert.Equal(t, []int{0, 1}, offsets)
}

func TestAllOpcodesDecode(t *testing.T) {
	for _, prefix := range [][]byte{nil, {0xCB}, {0xED}, {0xDD}, {0xFD}, {0xDD, 0xCB, 0x00}} {
		for op := 0; op < 256; op++ {
			data := append(append([]byte{}, prefix...), byte(op), 0x00, 0x00)
			in := DisassembleBytes(data, 0)
			assert.NotEmpty(t, in.Mnemonic, "prefix %X op %02X", prefix, op)
			assert.True(t, in.Length >= 1 && in.Length <= 4, "prefix %X op %02X length %d", prefix, op, in.Length)
			assert.True(t, in.TStates >= 4, "prefix %X op %02X", prefix, op)
		}
	}
}

func TestIsPrefix(t *testing.T) {
	for op := 0; op < 256; op++ {
		want := op == 0xCB || op == 0xED || op == 0xDD || op == 0xFD
		assert.Equal(t, want, IsPrefix(byte(op)), "op %02X", op)
	}
}
