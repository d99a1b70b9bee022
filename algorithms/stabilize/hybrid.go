package stabilize

import (
	"fmt"

	"github.com/amesford/tunerkit/algorithms/common"
	"github.com/amesford/tunerkit/algorithms/pitch"
)

// HybridFilter chains a median window into a confidence-weighted EMA: the
// median stage strips outlier frames, then the EMA stage smooths the median
// output with an effective alpha scaled by the raw sample's confidence.
// Confident frames move the display quickly, doubtful ones barely nudge it.
//
// This is the default stabilizer for the tuner.
type HybridFilter struct {
	median *MedianFilter

	baseAlpha float64
	state     pitch.Result
	primed    bool
}

// NewHybrid creates the median-plus-weighted-EMA filter.
func NewHybrid(alpha float64, windowSize int) (*HybridFilter, error) {
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("hybrid base alpha must be in (0, 1], got %g", alpha)
	}
	median, err := NewMedian(windowSize)
	if err != nil {
		return nil, err
	}
	return &HybridFilter{median: median, baseAlpha: alpha}, nil
}

func (f *HybridFilter) Update(raw pitch.Result) {
	f.median.Update(raw)
	filtered := f.median.Stabilized()

	if !f.primed {
		f.state = filtered
		f.primed = true
		return
	}

	alpha := f.baseAlpha * common.Clamp(raw.Confidence, 0.0, 1.0)
	f.state.Frequency = f.state.Frequency*(1-alpha) + filtered.Frequency*alpha
	f.state.Confidence = f.state.Confidence*(1-alpha) + filtered.Confidence*alpha
}

func (f *HybridFilter) Stabilized() pitch.Result {
	return f.state
}

func (f *HybridFilter) Reset() {
	f.median.Reset()
	f.state = pitch.Result{}
	f.primed = false
}
