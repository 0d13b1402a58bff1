package jtag_test

import (
	"testing"

	"github.com/MadnessASAP/SinoJTAG/pkg/jtag"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy/driversim"
)

// TestIDCodeDrivesExactSequence exercises the full PHY+Controller stack:
// after a TAP reset (five TMS=1 clocks) it checks the wire sequence an
// IDCODE read produces: 4 TDI bits carrying 0xE LSB-first with TMS
// asserted on the last bit, then 32 TDI bits of zero with TMS asserted on
// the last bit, ending in Update-DR.
func TestIDCodeDrivesExactSequence(t *testing.T) {
	sim := driversim.New()
	p := phy.New(sim)
	p.SetHalfPeriod(0)
	tap := jtag.New(p, jtag.DefaultIRBits)

	tap.Reset()
	beforeTMS := len(sim.Writes(phy.TMS))
	beforeTDI := len(sim.Writes(phy.TDI))

	tap.IDCode(32)

	tmsSeq := sim.Writes(phy.TMS)[beforeTMS:]
	tdiSeq := sim.Writes(phy.TDI)[beforeTDI:]

	// From Test-Logic-Reset the path into Shift-IR is five TMS-only steps
	// (0,1,1,0,0) with no TDI writes, so the IR shift's TMS writes start at
	// index 5 while its TDI writes start at index 0.
	const pathToShiftIR = 5

	// IR shift: 4 bits, TMS asserted only on the final bit; IR value 0xE
	// (0b1110) LSB-first is 0,1,1,1.
	wantIRTMS := []bool{false, false, false, true}
	wantIRTDI := []bool{false, true, true, true}

	// IR leaves the TAP in Update-IR; IDCode's DR call routes from there to
	// Shift-DR on its own. The 32-bit DR shift must show TMS low on the
	// first 31 bits and high on the 32nd, with all-zero TDI throughout. The
	// very last TMS write is DR's own Exit1-DR -> Update-DR step, so the
	// shift's TMS writes are the 32 just before it.
	if len(tmsSeq) < pathToShiftIR+len(wantIRTMS)+33 {
		t.Fatalf("wire sequence too short: %d writes", len(tmsSeq))
	}
	for i, want := range wantIRTMS {
		if tmsSeq[pathToShiftIR+i] != want || tdiSeq[i] != wantIRTDI[i] {
			t.Fatalf("IR bit %d: TMS=%v TDI=%v, want TMS=%v TDI=%v", i, tmsSeq[pathToShiftIR+i], tdiSeq[i], want, wantIRTDI[i])
		}
	}

	drTMS := tmsSeq[len(tmsSeq)-33 : len(tmsSeq)-1]
	drTDI := tdiSeq[len(tdiSeq)-32:]
	for i := 0; i < 32; i++ {
		wantTMS := i == 31
		if drTMS[i] != wantTMS {
			t.Errorf("DR bit %d: TMS=%v, want %v", i, drTMS[i], wantTMS)
		}
		if drTDI[i] {
			t.Errorf("DR bit %d: TDI=true, want false (IDCODE shifts zero out)", i)
		}
	}

	if tap.State() != jtag.UpdateDR {
		t.Errorf("State() after IDCode = %v, want UpdateDR", tap.State())
	}
}
