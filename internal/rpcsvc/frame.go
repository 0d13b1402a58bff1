// Package rpcsvc implements the thin framing/dispatch adapter that sits
// between a serial transport and the PHY/TAP/vendor operations in pkg/jtag,
// pkg/phy and pkg/sinowealth. It adds no protocol logic of its own beyond
// reading a command frame, dispatching, and writing the response.
package rpcsvc

import (
	"encoding/binary"
	"io"

	"github.com/cesanta/errors"
)

// Command identifies one row of the RPC command table. Values are the
// one-byte wire identifiers; they are not related to any JTAG instruction
// opcode.
type Command byte

const (
	CmdPhyInit Command = iota
	CmdPhyReset
	CmdPhyStop
	CmdTapInit
	CmdTapState
	CmdTapReset
	CmdTapGotoState
	CmdTapIR
	CmdTapDR
	CmdTapBypass
	CmdTapIDCode
	CmdTapIdleClocks
	CmdTapCodescanRead
	CmdFlashRead
	CmdICPInit
	CmdICPVerify
	CmdICPRead
	CmdICPErase
	CmdICPWrite
)

// frame is a length-prefixed binary message: a 1-byte command ID followed
// by a 4-byte little-endian payload length and the payload itself.
type frame struct {
	cmd     Command
	payload []byte
}

// readFrame reads one frame from r. It blocks until the full frame
// (including payload) has arrived or r returns an error.
func readFrame(r io.Reader) (frame, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return frame{}, io.EOF
		}
		return frame{}, errors.Annotatef(err, "read frame header")
	}

	cmd := Command(hdr[0])
	n := binary.LittleEndian.Uint32(hdr[1:])

	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return frame{}, errors.Annotatef(err, "read frame payload (%d bytes)", n)
		}
	}

	return frame{cmd: cmd, payload: payload}, nil
}

// writeFrame writes a response frame: no command byte, just a 4-byte
// little-endian length prefix and the payload. Responses never echo the
// command back; the transport is strictly request-then-response so the
// caller already knows which request this answers.
func writeFrame(w io.Writer, payload []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return errors.Annotatef(err, "write frame header")
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return errors.Annotatef(err, "write frame payload")
		}
	}
	return nil
}

// argU8 decodes a single byte argument from payload.
func argU8(payload []byte) (uint8, error) {
	if len(payload) < 1 {
		return 0, errors.Errorf("expected 1 argument byte, got %d", len(payload))
	}
	return payload[0], nil
}

// argU16 decodes a little-endian uint16 argument from payload.
func argU16(payload []byte) (uint16, error) {
	if len(payload) < 2 {
		return 0, errors.Errorf("expected 2 argument bytes, got %d", len(payload))
	}
	return binary.LittleEndian.Uint16(payload), nil
}

func retU8(v uint8) []byte  { return []byte{v} }
func retBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func retU32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}
