package driverhid

import (
	"time"

	"github.com/cesanta/errors"

	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
)

// pin maps the four logical wire signals the MCP2221A can drive to its GP0-3
// pins. TDO is the only input; Vref has no dedicated GPIO and is reported
// hardwired (see Read).
var pin = map[phy.Signal]byte{
	phy.TCK: 0,
	phy.TMS: 1,
	phy.TDI: 2,
	phy.TDO: 3,
}

// Adapter drives a SinoWealth target's four JTAG/ICP wires through an
// MCP2221A's GP0-3 pins. It implements phy.Driver.
type Adapter struct {
	dev *device
}

// Open claims the idx-th attached MCP2221A (0 for the first one found).
func Open(idx byte) (*Adapter, error) {
	dev, err := openDevice(idx, VID, PID)
	if err != nil {
		return nil, errors.Annotatef(err, "driverhid.Open")
	}
	return &Adapter{dev: dev}, nil
}

// Close releases the underlying USB HID handle.
func (a *Adapter) Close() error { return a.dev.Close() }

// Reset power-cycles the MCP2221A's USB stack, for recovering a wedged
// adapter without a physical unplug.
func (a *Adapter) Reset(timeout time.Duration) error { return a.dev.reset(timeout) }

func (a *Adapter) Output(sig phy.Signal) {
	p, ok := pin[sig]
	if !ok {
		return // Vref has no GPIO; nothing to configure.
	}
	if err := a.dev.gpioConfigureDirection(p, dirOutput); err != nil {
		panic(errors.Annotatef(err, "driverhid: Output(%v)", sig))
	}
}

func (a *Adapter) Input(sig phy.Signal) {
	p, ok := pin[sig]
	if !ok {
		return
	}
	if err := a.dev.gpioConfigureDirection(p, dirInput); err != nil {
		panic(errors.Annotatef(err, "driverhid: Input(%v)", sig))
	}
}

func (a *Adapter) Write(sig phy.Signal, high bool) {
	p, ok := pin[sig]
	if !ok {
		return
	}
	if err := a.dev.gpioSetOutput(p, high); err != nil {
		panic(errors.Annotatef(err, "driverhid: Write(%v)", sig))
	}
}

// Read samples sig. Vref always reads high: the MCP2221A has no spare GPIO
// for a target-power sense line in this wiring, so target power presence is
// assumed rather than measured on this backend.
func (a *Adapter) Read(sig phy.Signal) bool {
	if sig == phy.Vref {
		return true
	}
	p, ok := pin[sig]
	if !ok {
		return false
	}
	v, err := a.dev.gpioGet(p)
	if err != nil {
		panic(errors.Annotatef(err, "driverhid: Read(%v)", sig))
	}
	return v
}

// PullUp and PullOff are no-ops on this backend: the GPIO command subset
// used here does not expose per-pin pull resistor control. TDO is expected
// to be actively driven by the target; host-side biasing is unnecessary.
func (a *Adapter) PullUp(phy.Signal)  {}
func (a *Adapter) PullOff(phy.Signal) {}

var _ phy.Driver = (*Adapter)(nil)
