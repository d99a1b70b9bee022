package pitch

import (
	"fmt"
	"math"

	"github.com/amesford/tunerkit/algorithms/common"
)

// YinConfig contains parameters for the YIN detector.
type YinConfig struct {
	// Threshold is the CMNDF acceptance level. Lower values demand a cleaner
	// periodicity before a pitch is reported; 0.10-0.15 works well for
	// plucked strings.
	Threshold float64 `json:"threshold"`

	MinFrequency float64 `json:"min_frequency"` // Lowest detectable frequency (Hz)
	MaxFrequency float64 `json:"max_frequency"` // Highest detectable frequency (Hz)

	// EnergyFloor is the mean-square frame energy below which the frame is
	// treated as silence and the search is skipped entirely.
	EnergyFloor float64 `json:"energy_floor"`
}

// DefaultYinConfig returns the configuration used by the guitar tuner:
// E2 through D6 with the threshold recommended by the YIN paper.
func DefaultYinConfig() YinConfig {
	return YinConfig{
		Threshold:    0.15,
		MinFrequency: 80.0,
		MaxFrequency: 1200.0,
		EnergyFloor:  1e-6,
	}
}

// YinDetector implements the YIN pitch detection algorithm.
//
// Reference: de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental
// frequency estimator for speech and music"
//
// The detector computes the cumulative-mean-normalized difference function
// (CMNDF) over the candidate lag range, takes the first local minimum under
// the threshold, and refines the lag with parabolic interpolation for
// sub-sample precision. Scratch buffers are sized on the first Detect call
// and reused, so the steady state is allocation-free and safe to run inside
// a real-time audio callback.
type YinDetector struct {
	config YinConfig

	diff  []float64
	cmndf []float64
}

// NewYin creates a YIN detector, validating the configuration up front.
func NewYin(config YinConfig) (*YinDetector, error) {
	if config.Threshold <= 0 || config.Threshold >= 1 {
		return nil, fmt.Errorf("yin threshold must be in (0, 1), got %g", config.Threshold)
	}
	if config.MinFrequency <= 0 {
		return nil, fmt.Errorf("min frequency must be positive, got %g", config.MinFrequency)
	}
	if config.MaxFrequency <= config.MinFrequency {
		return nil, fmt.Errorf("max frequency (%g) must exceed min frequency (%g)",
			config.MaxFrequency, config.MinFrequency)
	}
	if config.EnergyFloor < 0 {
		return nil, fmt.Errorf("energy floor must be non-negative, got %g", config.EnergyFloor)
	}

	return &YinDetector{config: config}, nil
}

// Config returns the detector configuration.
func (y *YinDetector) Config() YinConfig {
	return y.config
}

// Detect estimates the fundamental frequency of one audio frame. The second
// return value is false when the frame is silent, aperiodic, or no candidate
// passes the threshold.
func (y *YinDetector) Detect(frame []float64, sampleRate float64) (Result, bool) {
	half := len(frame) / 2
	if half < 2 || sampleRate <= 0 {
		return Result{}, false
	}

	// Scratch sizing happens before any early return, so a silent first
	// frame still leaves subsequent calls allocation-free.
	y.ensureBuffers(half)

	// Silence gate: skip the lag search entirely for near-zero frames
	energy := 0.0
	for _, s := range frame {
		energy += s * s
	}
	if energy/float64(len(frame)) < y.config.EnergyFloor {
		return Result{}, false
	}

	minLag := int(sampleRate / y.config.MaxFrequency)
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(sampleRate / y.config.MinFrequency)
	if maxLag > half-1 {
		maxLag = half - 1
	}
	if minLag >= maxLag {
		return Result{}, false
	}

	diff := y.diff[:half]
	cmndf := y.cmndf[:half]

	// Difference function d(tau) over the searched lag range
	for tau := 0; tau <= maxLag; tau++ {
		sum := 0.0
		for j := 0; j < half; j++ {
			delta := frame[j] - frame[j+tau]
			sum += delta * delta
		}
		diff[tau] = sum
	}

	// Cumulative mean normalized difference function
	cmndf[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau <= maxLag; tau++ {
		runningSum += diff[tau]
		if runningSum > 0 {
			cmndf[tau] = diff[tau] * float64(tau) / runningSum
		} else {
			cmndf[tau] = 1.0
		}
	}

	// First dip under the threshold, followed to its local minimum
	best := -1
	for tau := minLag; tau <= maxLag; tau++ {
		if cmndf[tau] < y.config.Threshold {
			for tau+1 <= maxLag && cmndf[tau+1] < cmndf[tau] {
				tau++
			}
			best = tau
			break
		}
	}
	if best < 0 {
		return Result{}, false
	}

	period := common.ParabolicInterpolate(cmndf[:maxLag+1], best)
	if period <= 0 || math.IsNaN(period) || math.IsInf(period, 0) {
		return Result{}, false
	}

	frequency := sampleRate / period
	if frequency < y.config.MinFrequency || frequency > y.config.MaxFrequency {
		return Result{}, false
	}

	confidence := common.Clamp(1.0-cmndf[best], 0.0, 1.0)

	return Result{Frequency: frequency, Confidence: confidence}, true
}

// ensureBuffers sizes the scratch space for a frame half-length. Capacity is
// only ever grown, so repeated calls with the same (or smaller) frame size
// do not allocate.
func (y *YinDetector) ensureBuffers(half int) {
	if cap(y.diff) < half {
		y.diff = make([]float64, half)
		y.cmndf = make([]float64, half)
		return
	}
	y.diff = y.diff[:half]
	y.cmndf = y.cmndf[:half]
}
