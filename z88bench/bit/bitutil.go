package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// Field extracts width bits of value starting at shift.
// Example: Field(0xE000, 13, 3) -> 0b111
func Field(value uint16, shift, width uint8) uint16 {
	return (value >> shift) & ((1 << width) - 1)
}

// IsPow2 reports whether n is a positive power of two.
func IsPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// NextPow2 returns the smallest power of two greater than or equal to n.
// NextPow2(0) is 1.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Width returns the number of bits needed to address n distinct values.
func Width(n int) int {
	w := 0
	for (1 << w) < n {
		w++
	}
	return w
}
