// Package jtag implements an IEEE 1149.1 Test Access Port controller: the
// sixteen-state machine, shortest-path state routing, and typed IR/DR scan
// operations. It knows nothing about SinoWealth or any other vendor; it is
// driven through the PhyOps capability interface in tap.go.
package jtag

// State enumerates the sixteen IEEE 1149.1 TAP states. The numbering
// (0-15) is stable so a caller can pass/return a raw byte for "current
// state" without any translation table.
type State uint8

const (
	TestLogicReset State = iota
	RunTestIdle
	SelectDRScan
	CaptureDR
	ShiftDR
	Exit1DR
	PauseDR
	Exit2DR
	UpdateDR
	SelectIRScan
	CaptureIR
	ShiftIR
	Exit1IR
	PauseIR
	Exit2IR
	UpdateIR
)

// numStates is the size of the TAP state graph (16 nodes).
const numStates = 16

func (s State) String() string {
	switch s {
	case TestLogicReset:
		return "TestLogicReset"
	case RunTestIdle:
		return "RunTestIdle"
	case SelectDRScan:
		return "SelectDRScan"
	case CaptureDR:
		return "CaptureDR"
	case ShiftDR:
		return "ShiftDR"
	case Exit1DR:
		return "Exit1DR"
	case PauseDR:
		return "PauseDR"
	case Exit2DR:
		return "Exit2DR"
	case UpdateDR:
		return "UpdateDR"
	case SelectIRScan:
		return "SelectIRScan"
	case CaptureIR:
		return "CaptureIR"
	case ShiftIR:
		return "ShiftIR"
	case Exit1IR:
		return "Exit1IR"
	case PauseIR:
		return "PauseIR"
	case Exit2IR:
		return "Exit2IR"
	case UpdateIR:
		return "UpdateIR"
	default:
		return "Invalid"
	}
}

// nextState is the pure IEEE 1149.1 transition function: a fixed successor
// for every (state, tms) pair. It is the single source of truth consulted
// by Reset, GotoState's BFS, and every IR/DR step — no other code in this
// package may special-case a transition.
func nextState(s State, tms bool) State {
	switch s {
	case TestLogicReset:
		if tms {
			return TestLogicReset
		}
		return RunTestIdle
	case RunTestIdle:
		if tms {
			return SelectDRScan
		}
		return RunTestIdle
	case SelectDRScan:
		if tms {
			return SelectIRScan
		}
		return CaptureDR
	case CaptureDR:
		if tms {
			return Exit1DR
		}
		return ShiftDR
	case ShiftDR:
		if tms {
			return Exit1DR
		}
		return ShiftDR
	case Exit1DR:
		if tms {
			return UpdateDR
		}
		return PauseDR
	case PauseDR:
		if tms {
			return Exit2DR
		}
		return PauseDR
	case Exit2DR:
		if tms {
			return UpdateDR
		}
		return ShiftDR
	case UpdateDR:
		if tms {
			return SelectDRScan
		}
		return RunTestIdle
	case SelectIRScan:
		if tms {
			return TestLogicReset
		}
		return CaptureIR
	case CaptureIR:
		if tms {
			return Exit1IR
		}
		return ShiftIR
	case ShiftIR:
		if tms {
			return Exit1IR
		}
		return ShiftIR
	case Exit1IR:
		if tms {
			return UpdateIR
		}
		return PauseIR
	case PauseIR:
		if tms {
			return Exit2IR
		}
		return PauseIR
	case Exit2IR:
		if tms {
			return UpdateIR
		}
		return ShiftIR
	case UpdateIR:
		if tms {
			return SelectDRScan
		}
		return RunTestIdle
	default:
		return TestLogicReset
	}
}
