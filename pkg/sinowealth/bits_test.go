package sinowealth

import "testing"

// Property 4: bit reversal is an involution.
func TestBitReverseInvolution(t *testing.T) {
	for v := 0; v <= 0xFF; v++ {
		if got := bitReverse8(bitReverse8(uint8(v))); got != uint8(v) {
			t.Fatalf("bitReverse8(bitReverse8(%#x)) = %#x, want %#x", v, got, v)
		}
	}
	for v := 0; v <= 0xFFFF; v += 37 { // sampled: full 64k sweep is unnecessary
		if got := bitReverse16(bitReverse16(uint16(v))); got != uint16(v) {
			t.Fatalf("bitReverse16(bitReverse16(%#x)) = %#x, want %#x", v, got, v)
		}
	}
}

func TestReverse6Involution(t *testing.T) {
	for v := uint8(0); v < 0x40; v++ {
		if got := reverse6(reverse6(v)); got != v {
			t.Fatalf("reverse6(reverse6(%#x)) = %#x, want %#x", v, got, v)
		}
	}
}

// CODESCAN's READ ctrl 0x04 reversed over 6 bits lands on 0x08 in the
// wire's LSB-first packing.
func TestReverse6ReadCtrl(t *testing.T) {
	if got := reverse6(0x04); got != 0x08 {
		t.Errorf("reverse6(0x04) = %#x, want 0x08", got)
	}
}
