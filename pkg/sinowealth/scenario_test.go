package sinowealth

import (
	"testing"

	"github.com/MadnessASAP/SinoJTAG/pkg/jtag"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy/driversim"
)

func newFastPHY(sim *driversim.Sim) *phy.PHY {
	p := phy.New(sim)
	p.SetHalfPeriod(0)
	return p
}

// byteFromWireBits reconstructs the original byte from the 8 TDI samples
// sendByte produced for it: cycle i carries bit i of bitReverse8(b), which
// is bit (7-i) of b, so the captured sequence is b's bits MSB-first.
func byteFromWireBits(bits []bool) byte {
	var b byte
	for i, set := range bits {
		if set {
			b |= 1 << uint(7-i)
		}
	}
	return b
}

// Scenario B: a CODESCAN flash read of one byte decodes the vendor's
// mixed-bit-order 30-bit DR correctly.
func TestScenarioCodescanReadOneByte(t *testing.T) {
	sim := driversim.New()
	p := newFastPHY(sim)
	tap := jtag.New(p, jtag.DefaultIRBits)

	const addr = 0x10
	wantData := byte(0xAB)

	// 4 don't-care bits prime the IR shift; the DR shift's low 22 bits
	// (addr/ctrl) are don't-care too, only bits [29:22] (the data field)
	// matter for this assertion.
	feed := make([]bool, 0, 4+30)
	for i := 0; i < 4+22; i++ {
		feed = append(feed, false)
	}
	reversed := bitReverse8(wantData)
	for i := 0; i < 8; i++ {
		feed = append(feed, reversed&(1<<uint(i)) != 0)
	}
	sim.FeedTDO(feed...)

	tap.IR(irCodescan)
	raw := tap.DR(uint64(packCodescan(addr, codescanReadCtrl, 0)), 30)
	tap.IdleClocks(2)

	_, _, data := unpackCodescan(uint32(raw))
	if data != wantData {
		t.Errorf("CODESCAN read decoded data = %#02x, want %#02x", data, wantData)
	}
}

// Scenario C: ICP ping emits the two command bytes MSB-first on TDI (via
// the bit-reversed-then-LSB-shift framing), each followed by one idle
// clock, with TMS never asserted.
func TestScenarioICPPing(t *testing.T) {
	sim := driversim.New()
	p := newFastPHY(sim)
	p.Init(false)
	p.SwitchMode(phy.Icp)

	beforeTDI := len(sim.Writes(phy.TDI))
	beforeTMS := len(sim.Writes(phy.TMS))

	icp := NewICP(p)
	icp.Ping()

	tdi := sim.Writes(phy.TDI)[beforeTDI:]
	tms := sim.Writes(phy.TMS)[beforeTMS:]

	if len(tdi) != 16 {
		t.Fatalf("ping shifted %d TDI bits, want 16 (two 8-bit bytes)", len(tdi))
	}
	if got := byteFromWireBits(tdi[0:8]); got != 0x49 {
		t.Errorf("first ping byte = %#02x, want 0x49", got)
	}
	if got := byteFromWireBits(tdi[8:16]); got != 0xFF {
		t.Errorf("second ping byte = %#02x, want 0xFF", got)
	}

	// 8 shift bits + 1 idle clock per byte, TMS low throughout: exit is
	// never asserted.
	if len(tms) != 18 {
		t.Fatalf("ping drove %d TMS writes, want 18 (2x(8 shift + 1 idle))", len(tms))
	}
	for i, v := range tms {
		if v {
			t.Errorf("TMS write %d was asserted; ping must never exit", i)
		}
	}
}

// Scenario F: the write-unlock choreography emits the exact byte sequence
// the vendor protocol documents, with every byte framed MSB-first plus a
// trailing idle clock, and reports success.
func TestScenarioICPWriteUnlockSequence(t *testing.T) {
	sim := driversim.New()
	p := newFastPHY(sim)
	p.Init(false)
	p.SwitchMode(phy.Icp)

	beforeTDI := len(sim.Writes(phy.TDI))

	icp := NewICP(p)
	b0, b1, b2 := byte(0x11), byte(0x22), byte(0x33)
	ok := icp.WriteFlash(0x100, []byte{b0, b1, b2})
	if !ok {
		t.Fatal("WriteFlash returned false, want true")
	}

	want := []byte{
		cmdSetIBOffsetL, 0x00,
		cmdSetIBOffsetH, 0x01,
		cmdSetIBData, b0,
		cmdWriteUnlock,
		preamble[0], preamble[1], preamble[2], preamble[3],
		b1, 0x00,
		b2, 0x00,
		writeTerm[0], writeTerm[1], writeTerm[2], writeTerm[3],
	}

	tdi := sim.Writes(phy.TDI)[beforeTDI:]
	if len(tdi) != len(want)*8 {
		t.Fatalf("write-unlock shifted %d TDI bits, want %d (%d bytes x 8)",
			len(tdi), len(want)*8, len(want))
	}
	for i, wantByte := range want {
		got := byteFromWireBits(tdi[i*8 : i*8+8])
		if got != wantByte {
			t.Errorf("byte %d = %#02x, want %#02x", i, got, wantByte)
		}
	}
}
