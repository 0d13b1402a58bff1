package sinowealth

import (
	"time"

	"github.com/MadnessASAP/SinoJTAG/pkg/jtag"
)

// Vendor-private instruction register opcodes (4-bit IR). Control/Data/Exit
// are the alternate names PostInit uses for the same three opcodes as
// Debug/Config/Halt — the original firmware carries both naming schemes
// because two independent bring-up paths were written against them at
// different times.
const (
	irCodescan uint32 = 0x0
	irDebug    uint32 = 0x2
	irControl  uint32 = 0x2
	irConfig   uint32 = 0x3
	irData     uint32 = 0x3
	irRun      uint32 = 0x4
	irHalt     uint32 = 0x0C
	irExit     uint32 = 0x0C
	irIdcode   uint32 = 0xE
)

// DEBUG command payloads (4-bit DR).
const (
	debugEnable uint32 = 0x4
	debugHalt   uint32 = 0x1
)

// debugCtrlAddr is the CONFIG register address (7-bit) used to gate the
// debug subsystem during bring-up.
const debugCtrlAddr uint8 = 0x40

// sfrMirrorAddrs are the CONFIG addresses cleared during init; each maps to
// an 8051 SFR at addr+0x80.
var sfrMirrorAddrs = [...]uint8{0x63, 0x67, 0x6B, 0x6F, 0x73, 0x77, 0x7B, 0x7F}

// breakpointWords are the eight CONFIG write values PostInit programs after
// the three data registers; their meaning is not documented by the vendor
// and is preserved bit-exactly rather than reinterpreted.
var breakpointWords = [...]uint32{
	0x630000, 0x670000, 0x6B0000, 0x6F0000,
	0x730000, 0x770000, 0x7B0000, 0x7F0000,
}

// packConfigWrite lays out a 23-bit CONFIG write DR, LSB-first: bits [15:0]
// are data, bits [22:16] are a 7-bit register address.
func packConfigWrite(addr uint8, data uint16) uint32 {
	return uint32(data) | uint32(addr&0x7F)<<16
}

// ConfigRead is the decoded 64-bit CONFIG read DR.
type ConfigRead struct {
	OpComplete bool
	WaitExtend bool
	Data       byte
	Response   [6]byte
}

// unpackConfigRead decodes a CONFIG read capture: a 4-bit status field
// assembled from bits [1:0] and [11:10] (bit 0 = op_complete, bit 3 =
// wait_extend), an 8-bit data field at [9:2], and six LSB-first response
// bytes at [63:16].
func unpackConfigRead(raw uint64) ConfigRead {
	status := raw&0x3 | (raw>>10&0x3)<<2
	var resp [6]byte
	for i := range resp {
		resp[i] = byte(raw >> (16 + 8*i))
	}
	return ConfigRead{
		OpComplete: status&0x1 != 0,
		WaitExtend: status&0x8 != 0,
		Data:       byte(raw >> 2),
		Response:   resp,
	}
}

// packCodescan lays out the 30-bit CODESCAN DR. Unlike CONFIG, every field
// is stored MSB-first on the wire, so each field is bit-reversed before
// packing: bits [15:0] = reverse16(addr), bits [21:16] = reverse6(ctrl),
// bits [29:22] = reverse8(data).
func packCodescan(addr uint16, ctrl uint8, data uint8) uint32 {
	return uint32(bitReverse16(addr)) |
		uint32(reverse6(ctrl))<<16 |
		uint32(bitReverse8(data))<<22
}

// unpackCodescan is packCodescan's inverse.
func unpackCodescan(wire uint32) (addr uint16, ctrl uint8, data uint8) {
	addr = bitReverse16(uint16(wire))
	ctrl = reverse6(uint8(wire >> 16))
	data = bitReverse8(uint8(wire >> 22))
	return
}

// codescanReadCtrl is the CODESCAN control field for a flash read, already
// expressed MSB-first the way the source embeds it (0x04 MSB-first reverses
// to 0x08 on the LSB-first wire — see reverse6).
const codescanReadCtrl uint8 = 0x04

// JTAG drives the SinoWealth-specific register choreography on top of a
// generic TAP controller: debug-subsystem bring-up, IDCODE validation, and
// opcode injection to unlock the flash debug interface.
type JTAG struct {
	tap *jtag.Controller
}

// NewJTAG wraps tap with SinoWealth's vendor operations. tap must already be
// routed through a PHY in Jtag mode.
func NewJTAG(tap *jtag.Controller) *JTAG { return &JTAG{tap: tap} }

func (j *JTAG) debugCmd(cmd uint32) {
	j.tap.IR(irDebug)
	j.tap.DR(uint64(cmd), 4)
}

func (j *JTAG) configWrite(addr uint8, data uint16) {
	j.tap.IR(irConfig)
	j.tap.DR(uint64(packConfigWrite(addr, data)), 23)
}

// ConfigRead shifts a 64-bit CONFIG read DR and decodes it. IR must already
// be Config.
func (j *JTAG) ConfigRead() ConfigRead {
	return unpackConfigRead(j.tap.DR(0, 64))
}

// Init runs the full bring-up: debug-subsystem enable, SFR mirror clear,
// halt, and opcode injection to unlock the flash debug interface, then
// validates the target by reading IDCODE.
func (j *JTAG) Init() Status {
	j.tap.GotoState(jtag.RunTestIdle)
	j.tap.IdleClocks(2)

	j.debugCmd(debugEnable)

	j.configWrite(debugCtrlAddr, 0x3000)
	time.Sleep(50 * time.Microsecond)
	j.configWrite(debugCtrlAddr, 0x2000)
	j.configWrite(debugCtrlAddr, 0x0000)

	for _, addr := range sfrMirrorAddrs {
		j.configWrite(addr, 0x0000)
	}

	j.debugCmd(debugHalt)
	j.tap.IR(irHalt)

	// Inject MOV 0xFF, #0x80: SFR 0xFF bit 7 gates the flash debug
	// interface. IR stays at Halt for all three bytes.
	for _, b := range [...]byte{0x75, 0xFF, 0x80} {
		j.tap.DR(uint64(bitReverse8(b)), 8)
	}

	id := j.tap.IDCode(16)
	if id == 0x0000 || id == 0xFFFF {
		return ErrIDCode
	}
	return OK
}

// PostInit is the alternate bring-up path: register writes whose meaning is
// not documented by the vendor, preserved bit-exactly. It does not perform
// opcode injection and is not equivalent to Init — callers choose one or
// the other, never both.
func (j *JTAG) PostInit() {
	j.tap.GotoState(jtag.RunTestIdle)
	j.tap.IdleClocks(2)

	j.tap.IR(irControl)
	j.tap.DR(4, 4)
	j.tap.IdleClocks(1)

	j.tap.IR(irData)
	j.tap.DR(0x403000, 23)
	j.tap.IdleClocks(1)
	time.Sleep(50 * time.Microsecond)
	j.tap.DR(0x402000, 23)
	j.tap.IdleClocks(1)
	j.tap.DR(0x400000, 23)
	j.tap.IdleClocks(1)

	for _, w := range breakpointWords {
		j.tap.DR(uint64(w), 23)
		j.tap.IdleClocks(1)
	}

	j.tap.IR(irControl)
	j.tap.DR(1, 4)
	j.tap.IdleClocks(1)

	j.tap.IR(irExit)
}
