package sinowealth

import "github.com/MadnessASAP/SinoJTAG/pkg/jtag"

// FlashCursor reads SinoWealth flash through the CODESCAN register (IR=0).
// The hardware pipelines one scan ahead, so the byte the cursor holds
// belongs to the address two behind the next one to be scanned (that is,
// Address()); construction primes the pipeline with two scans before the
// first dereference is valid.
type FlashCursor struct {
	tap  *jtag.Controller
	addr uint16
	data uint8
}

// NewFlashCursor selects CODESCAN and primes the read pipeline so the
// cursor's first Byte() returns the byte at addr.
func NewFlashCursor(tap *jtag.Controller, addr uint16) *FlashCursor {
	tap.IR(irCodescan)
	c := &FlashCursor{tap: tap, addr: addr}
	c.readNext()
	c.readNext()
	return c
}

// Byte returns the byte at the cursor's current address.
func (c *FlashCursor) Byte() uint8 { return c.data }

// Address returns the address Byte() corresponds to.
func (c *FlashCursor) Address() uint16 { return c.addr - 2 }

// Next advances the cursor to the following address.
func (c *FlashCursor) Next() { c.readNext() }

// Close returns the TAP to Test-Logic-Reset, ending the CODESCAN session.
// The cursor must not be used afterward.
func (c *FlashCursor) Close() { c.tap.Reset() }

func (c *FlashCursor) readNext() {
	wire := packCodescan(c.addr, codescanReadCtrl, 0)
	raw := c.tap.DR(uint64(wire), 30)

	// Two idle clocks are mandatory: without them the pipeline corrupts
	// after a handful of reads even though the first few look fine.
	c.tap.IdleClocks(2)

	_, _, data := unpackCodescan(uint32(raw))
	c.data = data
	c.addr++
}

// ReadFlashBlock reads n consecutive bytes starting at addr through a
// single CODESCAN session.
func ReadFlashBlock(tap *jtag.Controller, addr uint16, n int) []byte {
	c := NewFlashCursor(tap, addr)
	defer c.Close()

	buf := make([]byte, n)
	for i := range buf {
		buf[i] = c.Byte()
		if i < n-1 {
			c.Next()
		}
	}
	return buf
}
