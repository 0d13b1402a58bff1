// Package driversim provides an in-memory phy.Driver that records every
// pin access instead of touching real hardware. It backs the PHY tests and
// the wire-level scenario tests in this module.
package driversim

import "github.com/MadnessASAP/SinoJTAG/pkg/phy"

// Access records a single pin operation, in chronological order, so tests
// can reconstruct exactly what bits/TMS values were emitted on the wire.
type Access struct {
	Signal phy.Signal
	Read   bool // false = write, true = read
	Level  bool
}

// Direction tracks whether a pin is currently configured as input or
// output, purely for test introspection; the Sim does not enforce
// input/output discipline on Write/Read the way real silicon would.
type Direction uint8

const (
	DirUnknown Direction = iota
	DirInput
	DirOutput
)

// Sim is a phy.Driver that records every access and lets tests program a
// canned sequence of TDO bits to return.
type Sim struct {
	Log []Access

	levels map[phy.Signal]bool
	dirs   map[phy.Signal]Direction
	pullup map[phy.Signal]bool

	// TDOFeed is consumed front-to-back on every Read(phy.TDO); once
	// exhausted, Read returns false. Tests populate it directly before
	// exercising the PHY/TAP under test.
	TDOFeed []bool
	tdoPos  int

	// VrefHigh controls what Read(phy.Vref) returns; defaults to true so
	// WaitForVref does not block unless a test explicitly wants it to.
	VrefHigh bool
}

// New returns a Sim with Vref already high (so PHY.Init's optional Vref
// wait does not block) and no TDO bits queued.
func New() *Sim {
	return &Sim{
		levels:   make(map[phy.Signal]bool),
		dirs:     make(map[phy.Signal]Direction),
		pullup:   make(map[phy.Signal]bool),
		VrefHigh: true,
	}
}

// FeedTDO appends bits (LSB of each byte meaningless; pass explicit bools)
// to be returned on successive Read(phy.TDO) calls.
func (s *Sim) FeedTDO(bits ...bool) {
	s.TDOFeed = append(s.TDOFeed, bits...)
}

// FeedTDOWord queues the low n bits of v, LSB-first, as TDO samples —
// convenient for programming a whole DR capture value at once.
func (s *Sim) FeedTDOWord(v uint64, n uint8) {
	for i := uint8(0); i < n; i++ {
		s.TDOFeed = append(s.TDOFeed, v&1 != 0)
		v >>= 1
	}
}

func (s *Sim) Output(sig phy.Signal) { s.dirs[sig] = DirOutput }
func (s *Sim) Input(sig phy.Signal)  { s.dirs[sig] = DirInput }

func (s *Sim) Write(sig phy.Signal, high bool) {
	s.levels[sig] = high
	s.Log = append(s.Log, Access{Signal: sig, Read: false, Level: high})
}

func (s *Sim) Read(sig phy.Signal) bool {
	var level bool
	switch sig {
	case phy.Vref:
		level = s.VrefHigh
	case phy.TDO:
		if s.tdoPos < len(s.TDOFeed) {
			level = s.TDOFeed[s.tdoPos]
			s.tdoPos++
		}
	default:
		level = s.levels[sig]
	}
	s.Log = append(s.Log, Access{Signal: sig, Read: true, Level: level})
	return level
}

func (s *Sim) PullUp(sig phy.Signal)  { s.pullup[sig] = true }
func (s *Sim) PullOff(sig phy.Signal) { s.pullup[sig] = false }

// Direction reports the last configured direction of sig (for assertions).
func (s *Sim) Direction(sig phy.Signal) Direction { return s.dirs[sig] }

// PullUpEnabled reports whether sig's pull-up was last enabled.
func (s *Sim) PullUpEnabled(sig phy.Signal) bool { return s.pullup[sig] }

// Writes returns the chronological sequence of levels written to sig,
// filtering out all other signals and all reads. This is the primary tool
// scenario tests use to assert "exactly this TMS/TDI sequence was emitted".
func (s *Sim) Writes(sig phy.Signal) []bool {
	var out []bool
	for _, a := range s.Log {
		if a.Signal == sig && !a.Read {
			out = append(out, a.Level)
		}
	}
	return out
}

// RisingEdges counts how many times sig transitioned from driven-low to
// driven-high, counting the very first write-high as an edge iff it was
// preceded by an explicit low write. Used by the wake-up waveform test to
// count TMS/TDI/TCK toggle cycles without caring about absolute timing.
func (s *Sim) RisingEdges(sig phy.Signal) int {
	count := 0
	prev := false
	have := false
	for _, a := range s.Log {
		if a.Signal != sig || a.Read {
			continue
		}
		if have && !prev && a.Level {
			count++
		}
		prev = a.Level
		have = true
	}
	return count
}
