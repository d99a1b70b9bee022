package pitch

import (
	"fmt"
	"math"
)

// HybridConfig composes the primary YIN detector with the NSDF cross-check.
type HybridConfig struct {
	Yin YinConfig `json:"yin"`
	MPM MPMConfig `json:"mpm"`

	// HarmonicTolerance is the relative tolerance used when testing whether
	// the two detectors disagree by a small integer frequency ratio.
	HarmonicTolerance float64 `json:"harmonic_tolerance"`
}

// DefaultHybridConfig returns the detector configuration used by the
// real-time pipeline.
func DefaultHybridConfig() HybridConfig {
	return HybridConfig{
		Yin:               DefaultYinConfig(),
		MPM:               DefaultMPMConfig(),
		HarmonicTolerance: 0.05,
	}
}

// HybridDetector runs YIN as the primary estimator and NSDF as a secondary
// cross-check on the same frame, rejecting the octave-up errors that
// autocorrelation detectors produce on harmonically rich plucked strings.
//
// Decision policy per frame:
//  1. Primary finds nothing: no detection.
//  2. Secondary finds nothing: primary wins.
//  3. The two frequencies sit near a small integer ratio: the lower
//     fundamental wins unless its confidence is drastically worse.
//  4. Otherwise: primary wins.
type HybridDetector struct {
	yin *YinDetector
	mpm *MPMDetector

	tolerance float64
}

// harmonicRatios are the integer ratios checked during octave rejection.
// Ratio 2 covers the dominant octave-up failure; 3 and 4 cover the rarer
// twelfth and double-octave errors.
var harmonicRatios = [3]float64{2.0, 3.0, 4.0}

// confidenceVetoRatio: the lower fundamental is only preferred while its
// confidence is at least this fraction of the higher one's.
const confidenceVetoRatio = 0.5

// NewHybrid creates the composed detector.
func NewHybrid(config HybridConfig) (*HybridDetector, error) {
	if config.HarmonicTolerance <= 0 || config.HarmonicTolerance >= 0.5 {
		return nil, fmt.Errorf("harmonic tolerance must be in (0, 0.5), got %g", config.HarmonicTolerance)
	}

	yin, err := NewYin(config.Yin)
	if err != nil {
		return nil, fmt.Errorf("primary detector: %w", err)
	}
	mpm, err := NewMPM(config.MPM)
	if err != nil {
		return nil, fmt.Errorf("secondary detector: %w", err)
	}

	return &HybridDetector{
		yin:       yin,
		mpm:       mpm,
		tolerance: config.HarmonicTolerance,
	}, nil
}

// Detect runs both estimators on the same frame and applies the harmonic
// rejection policy. Allocation-free after the detectors' first calls.
func (h *HybridDetector) Detect(frame []float64, sampleRate float64) (Result, bool) {
	primary, ok := h.yin.Detect(frame, sampleRate)
	if !ok {
		return Result{}, false
	}

	secondary, ok := h.mpm.Detect(frame, sampleRate)
	if !ok {
		return primary, true
	}

	if resolved, isHarmonic := resolveHarmonic(primary, secondary, h.tolerance); isHarmonic {
		return resolved, true
	}

	return primary, true
}

// resolveHarmonic checks whether two estimates disagree by a small integer
// frequency ratio. When they do, the lower fundamental is returned unless
// its confidence is less than confidenceVetoRatio of the higher one's.
func resolveHarmonic(a, b Result, tolerance float64) (Result, bool) {
	lower, higher := a, b
	if lower.Frequency > higher.Frequency {
		lower, higher = higher, lower
	}
	if lower.Frequency <= 0 {
		return Result{}, false
	}

	ratio := higher.Frequency / lower.Frequency
	for _, target := range harmonicRatios {
		if math.Abs(ratio-target)/target <= tolerance {
			if lower.Confidence >= confidenceVetoRatio*higher.Confidence {
				return lower, true
			}
			return higher, true
		}
	}

	return Result{}, false
}
