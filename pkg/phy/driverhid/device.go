// Package driverhid implements phy.Driver on top of a Microchip MCP2221A
// USB-to-GPIO bridge. Only the GPIO command subset is kept — I2C, ADC, DAC,
// and flash/SRAM settings management are unrelated to bit-banging four
// signal wires and were dropped during adaptation.
package driverhid

import (
	"time"

	"github.com/cesanta/errors"
	usb "github.com/karalabe/hid"
)

// VID and PID are the USB-IF assigned identifiers for the MCP2221A.
const (
	VID = 0x04D8
	PID = 0x00DD
)

// msgSize is the fixed length of every command and response message.
const msgSize = 64

const (
	wordSet byte = 0xFF
	wordClr byte = 0x00
)

const (
	cmdGPIOSet byte = 0x50
	cmdGPIOGet byte = 0x51
	cmdSRAMSet byte = 0x60
	cmdSRAMGet byte = 0x61
	cmdReset   byte = 0x70
)

func makeMsg() []byte { return make([]byte, msgSize) }

// gpioDir mirrors the MCP2221A's GPIO direction encoding.
type gpioDir byte

const (
	dirOutput gpioDir = 0x00
	dirInput  gpioDir = 0x01
)

// gpioMode mirrors the MCP2221A's GPIO operation mode encoding; only plain
// GPIO mode is used here.
type gpioMode byte

const modeGPIO gpioMode = 0x00

// device wraps the opened USB HID handle. It knows nothing about JTAG or
// SinoWealth; Adapter (in driverhid.go) is the phy.Driver seam.
type device struct {
	hid   *usb.Device
	index byte
	vid   uint16
	pid   uint16
}

// openDevice claims the idx-th attached MCP2221A matching vid/pid.
func openDevice(idx byte, vid, pid uint16) (*device, error) {
	info := usb.Enumerate(vid, pid)
	if int(idx) >= len(info) {
		return nil, errors.Errorf("device index %d out of range [0, %d]", idx, len(info)-1)
	}

	h, err := info[idx].Open()
	if err != nil {
		return nil, errors.Annotatef(err, "open MCP2221A at index %d", idx)
	}
	return &device{hid: h, index: idx, vid: vid, pid: pid}, nil
}

func (d *device) valid() error {
	if d == nil || d.hid == nil {
		return errors.Errorf("nil MCP2221A handle")
	}
	return nil
}

func (d *device) Close() error {
	if err := d.valid(); err != nil {
		return err
	}
	return errors.Annotatef(d.hid.Close(), "close MCP2221A")
}

// send transmits a command message and returns its response, except for
// cmdReset which has none.
func (d *device) send(cmd byte, data []byte) ([]byte, error) {
	if err := d.valid(); err != nil {
		return nil, err
	}

	data[0] = cmd
	if _, err := d.hid.Write(data); err != nil {
		return nil, errors.Annotatef(err, "write cmd=0x%02X", cmd)
	}

	if cmd == cmdReset {
		return nil, nil
	}

	rsp := makeMsg()
	n, err := d.hid.Read(rsp)
	if err != nil {
		return nil, errors.Annotatef(err, "read cmd=0x%02X", cmd)
	}
	if n < msgSize {
		return rsp, errors.Errorf("short read for cmd=0x%02X: %d of %d bytes", cmd, n, msgSize)
	}
	if rsp[0] != cmd || rsp[1] != wordClr {
		return rsp, errors.Errorf("cmd=0x%02X failed, status=0x%02X", cmd, rsp[1])
	}
	return rsp, nil
}

// reset power-cycles the MCP2221A's USB stack and reopens the handle.
func (d *device) reset(timeout time.Duration) error {
	if err := d.valid(); err != nil {
		return err
	}

	cmd := makeMsg()
	cmd[1], cmd[2], cmd[3] = 0xAB, 0xCD, 0xEF
	if _, err := d.send(cmdReset, cmd); err != nil {
		return errors.Annotatef(err, "send reset")
	}

	ch := make(chan *usb.Device, 1)
	go func() {
		for {
			if nd, err := openDevice(d.index, d.vid, d.pid); err == nil {
				ch <- nd.hid
				return
			}
		}
	}()

	select {
	case <-time.After(timeout):
		return errors.Errorf("timed out reopening MCP2221A index %d", d.index)
	case h := <-ch:
		d.hid = h
	}
	return nil
}

// gpioSetOutput configures pin as a driven output at the given initial
// level, in plain GPIO mode.
func (d *device) gpioSetOutput(pin byte, high bool) error {
	val := byte(0)
	if high {
		val = 1
	}
	cmd := makeMsg()
	i := 2 + 4*pin
	cmd[i+0] = wordSet
	cmd[i+1] = val
	cmd[i+2] = wordSet
	cmd[i+3] = byte(dirOutput)
	_, err := d.send(cmdGPIOSet, cmd)
	return errors.Annotatef(err, "gpioSetOutput(pin=%d)", pin)
}

// gpioConfigureDirection rewrites the SRAM GP designation for pin so it is
// plain GPIO in the given direction, default-low. All four pins' SRAM bytes
// must be resent together since cmdSRAMSet overwrites all of them at once.
func (d *device) gpioConfigureDirection(pin byte, dir gpioDir) error {
	cur, err := d.sramGet(22, 25)
	if err != nil {
		return errors.Annotatef(err, "gpioConfigureDirection(pin=%d): read current config", pin)
	}

	cmd := makeMsg()
	cmd[7] = wordSet
	copy(cmd[8:12], cur[:4])
	cmd[8+pin] = (byte(dir) << 3) | byte(modeGPIO)

	_, err = d.send(cmdSRAMSet, cmd)
	return errors.Annotatef(err, "gpioConfigureDirection(pin=%d)", pin)
}

func (d *device) sramGet(start, stop byte) ([]byte, error) {
	rsp, err := d.send(cmdSRAMGet, makeMsg())
	if err != nil {
		return nil, errors.Annotatef(err, "sramGet")
	}
	return rsp[start : stop+1], nil
}

// gpioGet reads the current digital value of pin.
func (d *device) gpioGet(pin byte) (bool, error) {
	rsp, err := d.send(cmdGPIOGet, makeMsg())
	if err != nil {
		return false, errors.Annotatef(err, "gpioGet(pin=%d)", pin)
	}
	i := 2 + 2*pin
	if rsp[i] == 0xEE {
		return false, errors.Errorf("pin %d not in GPIO mode", pin)
	}
	return rsp[i] != 0, nil
}
