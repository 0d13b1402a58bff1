package phy

import "time"

// DefaultHalfPeriod is the nominal TCK half-period: 1-2 µs, i.e. roughly
// 250-500 kHz.
const DefaultHalfPeriod = 2 * time.Microsecond

// PHY bit-bangs TCK/TMS/TDI/TDO (plus Vref sense) through a Driver. It owns
// the single process-wide Mode: every transition is legal only through
// reset() back to Ready first, except Ready->{Jtag,Icp} directly, and
// NotInitialized->Ready happens exactly once via Init.
type PHY struct {
	drv        Driver
	halfPeriod time.Duration
	mode       Mode

	// StatusToggle, if set, is invoked roughly every 51ms while
	// WaitForVref blocks, so a caller can flash an indicator LED without
	// PHY needing to know about a sixth pin.
	StatusToggle func()
}

// New constructs a PHY bound to drv with the default half-period and mode
// NotInitialized.
func New(drv Driver) *PHY {
	return &PHY{drv: drv, halfPeriod: DefaultHalfPeriod, mode: NotInitialized}
}

// SetHalfPeriod overrides the TCK half-period delay (default
// DefaultHalfPeriod).
func (p *PHY) SetHalfPeriod(d time.Duration) { p.halfPeriod = d }

// Mode returns the PHY's currently tracked protocol mode.
func (p *PHY) Mode() Mode { return p.mode }

func (p *PHY) delayHalf() { spin(p.halfPeriod) }

// spin busy-waits for d on the monotonic clock. Signalling delays use it
// instead of time.Sleep, which only guarantees a minimum duration and so
// cannot hold a microsecond-scale half-period.
func spin(d time.Duration) {
	for start := time.Now(); time.Since(start) < d; {
	}
}

// PreinitGPIO places all five pins as inputs with pull-ups off, guaranteeing
// a known starting state independent of the host adapter's own power-on
// defaults. Must be called once before any other pin access.
func (p *PHY) PreinitGPIO() {
	for _, sig := range [5]Signal{TCK, TMS, TDI, TDO, Vref} {
		p.drv.Input(sig)
		p.drv.PullOff(sig)
	}
}

// ErrVrefTimeout is returned by WaitForVref when maxIterations is positive
// and exceeded without observing Vref go high. Passing maxIterations <= 0
// waits unboundedly.
type vrefTimeoutError struct{}

func (vrefTimeoutError) Error() string { return "phy: timed out waiting for Vref" }

var ErrVrefTimeout error = vrefTimeoutError{}

// toggleEvery is how many 200µs polling iterations elapse between
// StatusToggle calls (~51 ms).
const toggleEvery = 256
const vrefPollInterval = 200 * time.Microsecond

// WaitForVref spins until the Vref sense pin reads high, optionally calling
// StatusToggle every ~51ms so the caller can flash a status indicator. If
// maxIterations > 0 and exceeded, it returns ErrVrefTimeout instead of
// blocking forever.
func (p *PHY) WaitForVref(maxIterations int) error {
	count := 0
	for !p.drv.Read(Vref) {
		count++
		if maxIterations > 0 && count > maxIterations {
			return ErrVrefTimeout
		}
		if p.StatusToggle != nil && count%toggleEvery == 0 {
			p.StatusToggle()
		}
		time.Sleep(vrefPollInterval)
	}
	return nil
}

// Init brings the PHY from NotInitialized to Ready. It is idempotent: if
// mode is already anything other than NotInitialized, Init returns
// immediately. Otherwise it optionally waits for Vref, configures
// TCK/TMS/TDI as outputs and TDO as an input (with pull-up), drives
// TCK=0/TMS=1/TDI=0, runs the SinoWealth wake-up waveform, and sets
// mode = Ready.
func (p *PHY) Init(waitVref bool) error {
	if p.mode != NotInitialized {
		return nil
	}

	if waitVref {
		if err := p.WaitForVref(0); err != nil {
			return err
		}
	}

	p.drv.Output(TCK)
	p.drv.Output(TMS)
	p.drv.Output(TDI)
	p.drv.Input(TDO)
	p.drv.PullUp(TDO)

	p.drv.Write(TCK, false)
	p.drv.Write(TMS, true)
	p.drv.Write(TDI, false)

	p.wakeup()

	p.mode = Ready
	return nil
}

// Stop sets every pin high-impedance and returns the PHY to NotInitialized.
func (p *PHY) Stop() {
	for _, sig := range [4]Signal{TCK, TMS, TDI, TDO} {
		p.drv.Input(sig)
	}
	p.mode = NotInitialized
}

// modeFrameBits is the width of the mode byte plus two trailing zero bits,
// shifted LSB-first without asserting a JTAG exit.
const modeFrameBits = 10

// SwitchMode transitions the PHY to target. If the current mode already
// equals target, or the PHY is NotInitialized, it is returned unchanged.
// Otherwise the PHY first calls Reset to return to Ready (a no-op if
// already Ready), then shifts the 10-bit mode frame with TMS held low
// throughout, without asserting a JTAG exit.
func (p *PHY) SwitchMode(target Mode) Mode {
	if p.mode == target || p.mode == NotInitialized {
		return p.mode
	}

	if p.mode != Ready {
		p.Reset()
	}

	frame := uint64(target)
	p.shiftRaw(frame, modeFrameBits, false)
	p.mode = target

	return p.mode
}

// Reset exits whatever vendor mode the PHY is currently in, back to Ready.
// From Jtag it pulses TCK 35 times with TMS=1 then parks TCK high/TMS low.
// From Icp it pulses TMS high-then-low while holding TCK high. From
// Ready/NotInitialized it is a no-op.
func (p *PHY) Reset() Mode {
	switch p.mode {
	case Jtag:
		for i := 0; i < 35; i++ {
			p.NextState(true)
		}
		p.drv.Write(TCK, true)
		p.drv.Write(TMS, false)
		p.mode = Ready

	case Icp:
		p.drv.Write(TCK, true)
		p.drv.Write(TMS, true)
		p.delayHalf()
		p.drv.Write(TMS, false)
		p.delayHalf()
		p.mode = Ready
	}

	return p.mode
}

// NextState drives TMS and pulses TCK low->high->low with a half-period
// delay on each edge — exactly one TMS transition.
func (p *PHY) NextState(tms bool) {
	p.drv.Write(TMS, tms)
	p.pulseTCK()
}

func (p *PHY) pulseTCK() {
	p.drv.Write(TCK, false)
	p.delayHalf()
	p.drv.Write(TCK, true)
	p.delayHalf()
	p.drv.Write(TCK, false)
}

// SampleTDO reads the current TDO level without driving any clock edge.
// ICP's erase-status readback needs a bare sample between two byte-framed
// writes, outside the normal shift/clock discipline.
func (p *PHY) SampleTDO() bool { return p.drv.Read(TDO) }

// Shift clocks n bits (n in [1,64]) of out onto TDI LSB-first, sampling TDO
// into the returned value. When exitOnLast is set, the final bit also
// asserts TMS so the n-th rising edge carries the TAP out of Shift-IR/DR
// into Exit1; otherwise TMS stays low and the TAP remains in Shift.
func (p *PHY) Shift(out uint64, n uint8, exitOnLast bool) uint64 {
	return p.shiftRaw(out, n, exitOnLast)
}

func (p *PHY) shiftRaw(out uint64, n uint8, exitOnLast bool) uint64 {
	var capture uint64
	for i := uint8(0); i < n; i++ {
		isLast := i == n-1
		p.drv.Write(TMS, exitOnLast && isLast)
		p.drv.Write(TDI, out&1 != 0)

		p.drv.Write(TCK, false)
		p.delayHalf()
		p.drv.Write(TCK, true)
		p.delayHalf()

		if p.drv.Read(TDO) {
			capture |= 1 << i
		}

		p.drv.Write(TCK, false)
		out >>= 1
	}
	return capture
}
