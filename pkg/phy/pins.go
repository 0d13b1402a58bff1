// Package phy implements deterministic bit-level JTAG/ICP signalling on
// four wires (TCK, TMS, TDI, TDO) plus an optional Vref sense, including
// the SinoWealth vendor wake-up waveform and mode switching. It is
// hardware-agnostic: all pin access goes through the Driver interface, with
// concrete backends in the driverhid, driverperiph, and driversim
// subpackages.
package phy

// Signal identifies one of the five logical JTAG/ICP roles a Driver binds
// to a physical pin. The binding is resolved once, at Driver construction,
// and never mutated afterward.
type Signal uint8

const (
	TCK Signal = iota
	TMS
	TDI
	TDO
	Vref
)

func (s Signal) String() string {
	switch s {
	case TCK:
		return "TCK"
	case TMS:
		return "TMS"
	case TDI:
		return "TDI"
	case TDO:
		return "TDO"
	case Vref:
		return "Vref"
	default:
		return "Unknown"
	}
}

// Driver is the capability a PHY needs from the underlying transport: pin
// direction control, level read/write, and pull resistor configuration.
// It stands in for a raw DDRx/PORTx/PINx register triad, resolved once per
// Signal at construction time by whichever backend implements it.
type Driver interface {
	// Output configures sig as a driven output.
	Output(sig Signal)
	// Input configures sig as a high-impedance input.
	Input(sig Signal)
	// Write drives sig to the given level. Only valid once sig is an output.
	Write(sig Signal, high bool)
	// Read samples the current level of sig. Only valid once sig is an input
	// (or, for TDO, always — it is never driven by the adapter).
	Read(sig Signal) bool
	// PullUp enables sig's internal pull-up resistor.
	PullUp(sig Signal)
	// PullOff disables sig's internal pull-up resistor.
	PullOff(sig Signal)
}
