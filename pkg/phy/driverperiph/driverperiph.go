// Package driverperiph implements phy.Driver directly on host GPIO pins via
// periph.io, for single-board computers (Raspberry Pi and similar) wired
// straight to a target's JTAG/ICP header with no USB bridge in between.
//
// Grounded on periph.io's pin-level GPIO idiom (gpioreg.ByName, pin.Out,
// pin.In, pin.Read) as seen in the FTDI MPSSE bit-banger in this pack's
// other_examples; periph.io/x/host/v3 supplies the platform driver
// registration that vendor-specific bit-bangers like that one build on top
// of.
package driverperiph

import (
	"github.com/cesanta/errors"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/MadnessASAP/SinoJTAG/pkg/phy"
)

// PinNames maps each logical wire to the periph.io pin name it is wired to
// (e.g. "GPIO17"). Construct with reasonable defaults via DefaultPinNames
// and override as needed before calling Open.
type PinNames map[phy.Signal]string

// DefaultPinNames is a reasonable Raspberry Pi header assignment; callers
// wiring a different board should build their own PinNames map.
func DefaultPinNames() PinNames {
	return PinNames{
		phy.TCK:  "GPIO11",
		phy.TMS:  "GPIO25",
		phy.TDI:  "GPIO10",
		phy.TDO:  "GPIO9",
		phy.Vref: "GPIO24",
	}
}

// Adapter drives phy.Signal wires through periph.io gpio.PinIO handles.
type Adapter struct {
	pins map[phy.Signal]gpio.PinIO
}

// Open initializes the periph.io host drivers and resolves names into pin
// handles. It returns an error if host.Init fails or if any name in names
// does not resolve to a pin on this host.
func Open(names PinNames) (*Adapter, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotatef(err, "driverperiph: host.Init")
	}

	a := &Adapter{pins: make(map[phy.Signal]gpio.PinIO, len(names))}
	for sig, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, errors.Errorf("driverperiph: no such pin %q for signal %v", name, sig)
		}
		a.pins[sig] = p
	}
	return a, nil
}

func (a *Adapter) pin(sig phy.Signal) gpio.PinIO {
	p, ok := a.pins[sig]
	if !ok {
		panic(errors.Errorf("driverperiph: signal %v has no bound pin", sig))
	}
	return p
}

func (a *Adapter) Output(sig phy.Signal) {
	if err := a.pin(sig).Out(gpio.Low); err != nil {
		panic(errors.Annotatef(err, "driverperiph: Output(%v)", sig))
	}
}

func (a *Adapter) Input(sig phy.Signal) {
	if err := a.pin(sig).In(gpio.Float, gpio.NoEdge); err != nil {
		panic(errors.Annotatef(err, "driverperiph: Input(%v)", sig))
	}
}

func (a *Adapter) Write(sig phy.Signal, high bool) {
	level := gpio.Low
	if high {
		level = gpio.High
	}
	if err := a.pin(sig).Out(level); err != nil {
		panic(errors.Annotatef(err, "driverperiph: Write(%v, %v)", sig, high))
	}
}

func (a *Adapter) Read(sig phy.Signal) bool {
	return a.pin(sig).Read() == gpio.High
}

func (a *Adapter) PullUp(sig phy.Signal) {
	if err := a.pin(sig).In(gpio.PullUp, gpio.NoEdge); err != nil {
		panic(errors.Annotatef(err, "driverperiph: PullUp(%v)", sig))
	}
}

func (a *Adapter) PullOff(sig phy.Signal) {
	if err := a.pin(sig).In(gpio.Float, gpio.NoEdge); err != nil {
		panic(errors.Annotatef(err, "driverperiph: PullOff(%v)", sig))
	}
}

var _ phy.Driver = (*Adapter)(nil)
