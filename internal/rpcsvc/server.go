package rpcsvc

import (
	"io"

	"github.com/cesanta/errors"
	"github.com/golang/glog"
	"go.bug.st/serial"
)

// OpenSerial opens port at baud 8-N-1, the framing this adapter's protocol
// assumes: a fixed DataBits/Parity/StopBits triad with only the baud rate
// configurable.
func OpenSerial(port string, baud int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, errors.Annotatef(err, "open serial port %q", port)
	}
	return p, nil
}

// Serve reads frames from rw, dispatches each to a, and writes the response
// frame back, until rw returns an error (typically io.EOF on port close).
// One command at a time, strictly request-then-response — the host never
// pipelines commands ahead of their responses. A command whose dispatch
// fails is logged and gets no response frame.
func Serve(rw io.ReadWriter, a *Adapter) error {
	for {
		f, err := readFrame(rw)
		if err != nil {
			if err == io.EOF {
				glog.Info("connection closed")
				return nil
			}
			return errors.Annotatef(err, "serve")
		}

		resp, err := a.Dispatch(f)
		if err != nil {
			glog.Errorf("dispatch cmd=%d failed: %v", f.cmd, err)
			continue
		}

		if err := writeFrame(rw, resp); err != nil {
			return errors.Annotatef(err, "serve: write response")
		}
	}
}
