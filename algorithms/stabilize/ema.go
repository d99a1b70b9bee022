package stabilize

import (
	"fmt"

	"github.com/amesford/tunerkit/algorithms/pitch"
)

// EMAFilter smooths with an exponential moving average over both the
// frequency and confidence channels.
//
// The first sample after construction or Reset is adopted exactly, so the
// filter never blends toward zero while attacking a fresh note.
type EMAFilter struct {
	alpha  float64
	state  pitch.Result
	primed bool
}

// NewEMA creates an exponential moving average filter. Alpha must lie in
// (0, 1]; higher values track faster, lower values smooth harder.
func NewEMA(alpha float64) (*EMAFilter, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("ema alpha must be in (0, 1], got %g", alpha)
	}
	return &EMAFilter{alpha: alpha}, nil
}

func (f *EMAFilter) Update(raw pitch.Result) {
	if !f.primed {
		f.state = raw
		f.primed = true
		return
	}
	f.state.Frequency = f.state.Frequency*(1-f.alpha) + raw.Frequency*f.alpha
	f.state.Confidence = f.state.Confidence*(1-f.alpha) + raw.Confidence*f.alpha
}

func (f *EMAFilter) Stabilized() pitch.Result {
	return f.state
}

func (f *EMAFilter) Reset() {
	f.state = pitch.Result{}
	f.primed = false
}
