// Package bit has the byte-twiddling helpers shared by the display controller
// and VRAM.
package bit

// IsSet will check if the bit at the specified index is Set to 1 or not.
func IsSet(index, b uint8) bool {
	return ((b >> index) & 1) == 1
}

// Set returns b with the bit at index set to 1.
func Set(index, b uint8) uint8 {
	return b | (1 << index)
}

// Reset returns b with the bit at index cleared.
func Reset(index, b uint8) uint8 {
	return b &^ (1 << index)
}

// Mask returns a byte with bits highBit down to lowBit (inclusive) set.
func Mask(highBit, lowBit uint8) uint8 {
	width := highBit - lowBit + 1
	return uint8((1<<width)-1) << lowBit
}

// ExtractBits extracts bits from highBit to lowBit (inclusive)
// Example: ExtractBits(0b11010110, 6, 4) -> 0b101 (extracts bits 6, 5, 4)
func ExtractBits(value uint8, highBit, lowBit uint8) uint8 {
	return (value & Mask(highBit, lowBit)) >> lowBit
}
