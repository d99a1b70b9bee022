// Package stabilize smooths the noisy frame-to-frame estimates coming out of
// a pitch detector into a display-ready value. Every variant is single-owner
// state intended to live on the audio-callback goroutine: Update and
// Stabilized never allocate after construction and never block.
package stabilize

import (
	"fmt"

	"github.com/amesford/tunerkit/algorithms/pitch"
)

// Type selects a stabilization algorithm. The variant set is closed; the
// owning pipeline picks one at construction and never swaps it mid-stream.
type Type int

const (
	StabilizerNone   Type = iota // Raw detector output, no smoothing
	StabilizerEMA                // Exponential moving average
	StabilizerMedian             // Sliding-window median filter
	StabilizerHybrid             // Median window + confidence-weighted EMA (recommended)
)

func (t Type) String() string {
	switch t {
	case StabilizerNone:
		return "none"
	case StabilizerEMA:
		return "ema"
	case StabilizerMedian:
		return "median"
	case StabilizerHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}

// ParseType maps a configuration string to a stabilizer Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "none":
		return StabilizerNone, nil
	case "ema":
		return StabilizerEMA, nil
	case "median":
		return StabilizerMedian, nil
	case "hybrid":
		return StabilizerHybrid, nil
	}
	return StabilizerNone, fmt.Errorf("unknown stabilizer type: %q", s)
}

// Stabilizer consumes raw per-frame pitch results and exposes a smoothed one.
//
// Stabilized is a pure read and is valid in every state; before the first
// Update (and after Reset) it returns the zero Result. The smoothed
// frequency always lies within the range of the raw frequencies still
// retained; stabilizers smooth, they never extrapolate.
type Stabilizer interface {
	Update(raw pitch.Result)
	Stabilized() pitch.Result
	Reset()
}

// Config carries the parameters for all stabilizer variants; each variant
// reads only the fields it needs.
type Config struct {
	Alpha      float64 `json:"alpha"`       // EMA smoothing factor, (0, 1]
	WindowSize int     `json:"window_size"` // Median window length, >= 1
}

// DefaultConfig returns the parameters the tuner ships with.
func DefaultConfig() Config {
	return Config{Alpha: 0.3, WindowSize: 5}
}

// New constructs a stabilizer of the given type. Configuration errors are
// reported here, never discovered mid-stream.
func New(t Type, config Config) (Stabilizer, error) {
	switch t {
	case StabilizerNone:
		return &Passthrough{}, nil
	case StabilizerEMA:
		return NewEMA(config.Alpha)
	case StabilizerMedian:
		return NewMedian(config.WindowSize)
	case StabilizerHybrid:
		return NewHybrid(config.Alpha, config.WindowSize)
	}
	return nil, fmt.Errorf("unknown stabilizer type: %d", t)
}

// Passthrough is the no-op variant: Stabilized returns the most recent raw
// sample unchanged.
type Passthrough struct {
	last pitch.Result
}

func (p *Passthrough) Update(raw pitch.Result) {
	p.last = raw
}

func (p *Passthrough) Stabilized() pitch.Result {
	return p.last
}

func (p *Passthrough) Reset() {
	p.last = pitch.Result{}
}
