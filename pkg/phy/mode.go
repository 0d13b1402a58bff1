package phy

// Mode is the PHY's tagged protocol-mode enumeration. The underlying byte
// values are not arbitrary: Jtag and Icp are the literal mode bytes shifted
// onto the wire LSB-first during the SinoWealth mode handshake.
type Mode uint8

const (
	// NotInitialized is the PHY's state before Init and after Stop. Every
	// pin is high-impedance.
	NotInitialized Mode = 0xFF
	// Ready is the SinoWealth diagnostic mode entered by the wake-up
	// waveform; mode switches always pass back through Ready.
	Ready Mode = 0x00
	// Jtag is standard IEEE 1149.1 JTAG signalling.
	Jtag Mode = 0xA5
	// Icp is the vendor's byte-oriented in-circuit-programming framing.
	Icp Mode = 0x69
)

func (m Mode) String() string {
	switch m {
	case NotInitialized:
		return "NotInitialized"
	case Ready:
		return "Ready"
	case Jtag:
		return "Jtag"
	case Icp:
		return "Icp"
	default:
		return "Unknown"
	}
}
