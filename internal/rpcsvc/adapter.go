package rpcsvc

import (
	"github.com/cesanta/errors"
	"github.com/golang/glog"

	"github.com/MadnessASAP/SinoJTAG/pkg/jtag"
	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
	"github.com/MadnessASAP/SinoJTAG/pkg/sinowealth"
)

// Adapter is the process-wide owner of the PHY, TAP and vendor facades, so
// mode and TAP state are never mutated from two places at once. Every RPC
// command dispatches through exactly one Adapter.
type Adapter struct {
	phy *phy.PHY
	tap *jtag.Controller
	jt  *sinowealth.JTAG
	icp *sinowealth.ICP
}

// New constructs an Adapter bound to drv, with the TAP width fixed at
// jtag.DefaultIRBits (the SinoWealth target's configured IR width).
func New(drv phy.Driver) *Adapter {
	p := phy.New(drv)
	tap := jtag.New(p, jtag.DefaultIRBits)
	return &Adapter{
		phy: p,
		tap: tap,
		jt:  sinowealth.NewJTAG(tap),
		icp: sinowealth.NewICP(p),
	}
}

// Dispatch executes one decoded command and returns its response payload.
// phy.Driver has no error-return channel of its own, so a PinDriver backend
// reports a hardware I/O failure by panicking; Dispatch recovers that panic
// here and turns it into the same plain Go error a validation failure
// would produce, so one bad command never takes the daemon down. Dispatch
// never retries — failures propagate to the caller as-is.
func (a *Adapter) Dispatch(f frame) (resp []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errors.Annotatef(e, "cmd=%d panicked", f.cmd)
			} else {
				err = errors.Errorf("cmd=%d panicked: %v", f.cmd, r)
			}
			resp = nil
		}
	}()

	glog.V(2).Infof("dispatch cmd=%d payload=%d bytes", f.cmd, len(f.payload))

	switch f.cmd {
	case CmdPhyInit:
		if err := a.phy.Init(true); err != nil {
			return nil, errors.Annotatef(err, "phy_init")
		}
		return nil, nil

	case CmdPhyReset:
		mode := a.phy.Reset()
		return retBool(mode == phy.Ready), nil

	case CmdPhyStop:
		a.phy.Stop()
		return nil, nil

	case CmdTapInit:
		status := a.jt.Init()
		return retU8(uint8(status)), nil

	case CmdTapState:
		return retU8(uint8(a.tap.State())), nil

	case CmdTapReset:
		a.tap.Reset()
		return nil, nil

	case CmdTapGotoState:
		target, err := argU8(f.payload)
		if err != nil {
			return nil, errors.Annotatef(err, "tap_goto_state")
		}
		a.tap.GotoState(jtag.State(target))
		return nil, nil

	case CmdTapIR:
		out, err := argU8(f.payload)
		if err != nil {
			return nil, errors.Annotatef(err, "tap_ir")
		}
		return retU8(uint8(a.tap.IR(uint32(out)))), nil

	case CmdTapDR:
		return a.dispatchDR(f.payload)

	case CmdTapBypass:
		a.tap.Bypass()
		return nil, nil

	case CmdTapIDCode:
		return retU32(a.tap.IDCode(32)), nil

	case CmdTapIdleClocks:
		count, err := argU8(f.payload)
		if err != nil {
			return nil, errors.Annotatef(err, "tap_idle_clocks")
		}
		a.tap.IdleClocks(count)
		return nil, nil

	case CmdTapCodescanRead:
		addr, err := argU16(f.payload)
		if err != nil {
			return nil, errors.Annotatef(err, "tap_codescan_read")
		}
		buf := sinowealth.ReadFlashBlock(a.tap, addr, 1)
		return retU8(buf[0]), nil

	case CmdFlashRead:
		addr, err := argU16(f.payload)
		if err != nil {
			return nil, errors.Annotatef(err, "flash_read")
		}
		return sinowealth.ReadFlashBlock(a.tap, addr, 128), nil

	case CmdICPInit:
		a.icp.Init()
		return nil, nil

	case CmdICPVerify:
		return retBool(a.icp.Verify()), nil

	case CmdICPRead:
		return a.dispatchICPRead(f.payload)

	case CmdICPErase:
		addr, err := argU16(f.payload)
		if err != nil {
			return nil, errors.Annotatef(err, "icp_erase")
		}
		return retBool(a.icp.EraseFlash(addr)), nil

	case CmdICPWrite:
		return a.dispatchICPWrite(f.payload)

	default:
		return nil, errors.Errorf("unknown command %d", f.cmd)
	}
}

// drBitWidths is the closed set of DR widths the dispatch table accepts for
// CmdTapDR: DEBUG (4), HALT opcode injection (8), IDCODE (16 or 32), CONFIG
// write (23) and CODESCAN (30). The 64-bit CONFIG read does not fit the
// 32-bit argument and return value and is not reachable through CmdTapDR.
var drBitWidths = map[uint8]bool{4: true, 8: true, 16: true, 23: true, 30: true, 32: true}

func (a *Adapter) dispatchDR(payload []byte) ([]byte, error) {
	if len(payload) < 5 {
		return nil, errors.Errorf("tap_dr: expected 5 argument bytes, got %d", len(payload))
	}
	out := uint32(payload[0]) | uint32(payload[1])<<8 | uint32(payload[2])<<16 | uint32(payload[3])<<24
	bits := payload[4]
	if !drBitWidths[bits] {
		return nil, errors.Errorf("tap_dr: unsupported width %d", bits)
	}
	return retU32(uint32(a.tap.DR(uint64(out), bits))), nil
}

func (a *Adapter) dispatchICPRead(payload []byte) ([]byte, error) {
	if len(payload) < 4 {
		return nil, errors.Errorf("icp_read: expected 4 argument bytes, got %d", len(payload))
	}
	addr := uint16(payload[0]) | uint16(payload[1])<<8
	size := uint16(payload[2]) | uint16(payload[3])<<8
	return a.icp.ReadFlash(addr, int(size)), nil
}

func (a *Adapter) dispatchICPWrite(payload []byte) ([]byte, error) {
	if len(payload) < 2 {
		return nil, errors.Errorf("icp_write: expected at least 2 argument bytes, got %d", len(payload))
	}
	addr := uint16(payload[0]) | uint16(payload[1])<<8
	return retBool(a.icp.WriteFlash(addr, payload[2:])), nil
}
