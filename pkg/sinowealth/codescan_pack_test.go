package sinowealth

import "testing"

// Property 5: CODESCAN packing round-trips. For all (addr, ctrl<=0x3F,
// data), unpackCodescan(packCodescan(addr, ctrl, data)) == (addr, ctrl, data).
func TestCodescanPackRoundTrip(t *testing.T) {
	addrs := []uint16{0x0000, 0x0001, 0x00FF, 0x1234, 0x7FFF, 0xFFFF}
	datas := []uint8{0x00, 0x01, 0x55, 0xAA, 0x7F, 0xFF}

	for _, addr := range addrs {
		for ctrl := uint8(0); ctrl <= 0x3F; ctrl++ {
			for _, data := range datas {
				wire := packCodescan(addr, ctrl, data)
				gotAddr, gotCtrl, gotData := unpackCodescan(wire)
				if gotAddr != addr || gotCtrl != ctrl || gotData != data {
					t.Fatalf("unpackCodescan(packCodescan(%#04x, %#02x, %#02x)) = (%#04x, %#02x, %#02x), want (%#04x, %#02x, %#02x)",
						addr, ctrl, data, gotAddr, gotCtrl, gotData, addr, ctrl, data)
				}
			}
		}
	}
}
