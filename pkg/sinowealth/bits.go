// Package sinowealth implements the vendor-specific half of a SinoWealth
// 8051 bring-up: the JTAG mode's post-wake-up register choreography and
// CODESCAN flash-read register, and the alternate byte-framed ICP mode.
// Both sit on top of pkg/jtag and pkg/phy, which know nothing about this
// vendor.
package sinowealth

// bitReverse8 reverses the bit order of a byte.
func bitReverse8(v uint8) uint8 {
	v = (v>>4)&0x0F | (v<<4)&0xF0
	v = (v>>2)&0x33 | (v<<2)&0xCC
	v = (v>>1)&0x55 | (v<<1)&0xAA
	return v
}

// bitReverse16 reverses the bit order of a 16-bit word.
func bitReverse16(v uint16) uint16 {
	v = (v>>8)&0x00FF | (v<<8)&0xFF00
	v = (v>>4)&0x0F0F | (v<<4)&0xF0F0
	v = (v>>2)&0x3333 | (v<<2)&0xCCCC
	v = (v>>1)&0x5555 | (v<<1)&0xAAAA
	return v
}

// reverse6 reverses a 6-bit field (bits 5:0 of v; bits above that are
// ignored on input and always zero on output). Built from bitReverse8: for
// any x < 0x40, bitReverse8(x) has its bottom two bits clear, so
// bitReverse8(x) >> 2 is exactly the 6-bit-wide reversal of x, and the
// function is its own inverse over that domain.
func reverse6(v uint8) uint8 {
	return bitReverse8(v&0x3F) >> 2
}
