package jtag

// PhyOps is the capability a TAP controller needs from the bit-level
// signalling layer. It exists so Controller never depends on a concrete
// PHY type — the production PHY bit-bangs real pins, a test PHY (see
// github.com/MadnessASAP/SinoJTAG/pkg/phy/driversim) records the bit
// stream instead.
type PhyOps interface {
	// NextState drives TMS and pulses TCK once, exactly one transition.
	NextState(tms bool)
	// Shift clocks n bits (n in [1,64]) of out onto TDI LSB-first, sampling
	// TDO into the returned value. When exitOnLast is set, the final
	// rising edge also asserts TMS so the TAP leaves Shift-IR/DR.
	Shift(out uint64, n uint8, exitOnLast bool) uint64
}

// DefaultIRBits is the SinoWealth device's configured instruction register
// width.
const DefaultIRBits = 4

// Controller is an IEEE 1149.1 TAP controller: it owns exactly one tracked
// state and drives it exclusively through PhyOps. Mismatched IR/DR routing
// relative to the real hardware state is a correctness bug in the caller,
// not something Controller can detect.
type Controller struct {
	phy    PhyOps
	state  State
	irBits uint8
}

// New constructs a Controller bound to phy, with the TAP state initialized
// to Test-Logic-Reset and the instruction register width set to irBits
// (pass DefaultIRBits for SinoWealth targets).
func New(phy PhyOps, irBits uint8) *Controller {
	return &Controller{phy: phy, state: TestLogicReset, irBits: irBits}
}

// State returns the controller's tracked TAP state.
func (c *Controller) State() State { return c.state }

// step applies a single TMS transition through the PHY and updates the
// tracked state accordingly. Every state mutation in this package funnels
// through here so "TCK edge" and "state update" can never drift apart.
func (c *Controller) step(tms bool) {
	c.phy.NextState(tms)
	c.state = nextState(c.state, tms)
}

// Reset drives TMS=1 for five clocks and forces the tracked state to
// Test-Logic-Reset. Five clocks is sufficient to converge from any state.
func (c *Controller) Reset() {
	for i := 0; i < 5; i++ {
		c.step(true)
	}
	c.state = TestLogicReset
}

// GotoState moves the TAP to target via the shortest TMS sequence,
// computed by breadth-first search over the 16-node transition graph.
// Ties are broken in favor of TMS=0 by visiting tms=0 before tms=1 when
// expanding each node. If target happens to be unreachable (never true
// for a correctly built table) GotoState does nothing.
func (c *Controller) GotoState(target State) {
	if c.state == target {
		return
	}

	var prev [numStates]State
	var prevTMS [numStates]bool
	var visited [numStates]bool
	queue := make([]State, 0, numStates)

	visited[c.state] = true
	queue = append(queue, c.state)

	for head := 0; head < len(queue) && !visited[target]; head++ {
		s := queue[head]
		for _, tms := range [2]bool{false, true} {
			ns := nextState(s, tms)
			if !visited[ns] {
				visited[ns] = true
				prev[ns] = s
				prevTMS[ns] = tms
				queue = append(queue, ns)
			}
		}
	}

	if !visited[target] {
		return
	}

	var seq []bool
	for cur := target; cur != c.state; cur = prev[cur] {
		seq = append(seq, prevTMS[cur])
	}

	for i := len(seq) - 1; i >= 0; i-- {
		c.step(seq[i])
	}
}

// IR routes to Shift-IR, shifts the configured IR width LSB-first with
// exit asserted on the last bit, and settles in Update-IR. It returns the
// captured TDO bits. Callers that need Run-Test/Idle afterward must drive
// there explicitly, typically via IdleClocks.
func (c *Controller) IR(out uint32) uint32 {
	c.GotoState(ShiftIR)
	capture := c.phy.Shift(uint64(out), c.irBits, true)
	c.state = Exit1IR
	c.step(true) // Exit1-IR -> Update-IR
	return uint32(capture)
}

// DR routes to Shift-DR, shifts bits (1..64) LSB-first with exit asserted
// on the last bit, and settles in Update-DR. It returns the captured TDO
// bits. Callers that need Run-Test/Idle afterward must drive there
// explicitly, typically via IdleClocks.
func (c *Controller) DR(out uint64, bits uint8) uint64 {
	c.GotoState(ShiftDR)
	capture := c.phy.Shift(out, bits, true)
	c.state = Exit1DR
	c.step(true) // Exit1-DR -> Update-DR
	return capture
}

// Bypass selects the BYPASS instruction (all configured IR bits set).
func (c *Controller) Bypass() {
	mask := uint32(1)<<c.irBits - 1
	c.IR(mask)
}

// defaultIdcodeInstr is the standard JTAG IDCODE instruction opcode.
const defaultIdcodeInstr = 0xE

// IDCode selects the IDCODE instruction then shifts bits of zero through
// DR, returning the captured device identification register. Semantic
// validation (not all-zeros/all-ones) is the caller's responsibility —
// TAP operations never fail on their own.
func (c *Controller) IDCode(bits uint8) uint32 {
	c.IR(defaultIdcodeInstr)
	return uint32(c.DR(0, bits))
}

// IdleClocks emits count TCK pulses with TMS held low. Only stable in
// Run-Test/Idle, Shift-IR/DR, or Pause-IR/DR — calling it from any other
// state is a caller bug that IdleClocks has no way to detect.
func (c *Controller) IdleClocks(count uint8) {
	for i := uint8(0); i < count; i++ {
		c.step(false)
	}
}
