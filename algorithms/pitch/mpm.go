package pitch

import (
	"fmt"
	"math"

	"github.com/amesford/tunerkit/algorithms/common"
)

// MPMConfig contains parameters for the NSDF-based detector.
type MPMConfig struct {
	// ClarityThreshold is the minimum NSDF peak value accepted as a pitch.
	// Normalized autocorrelation peaks approach 1.0 for genuinely periodic
	// input, so this sits much higher than a YIN threshold.
	ClarityThreshold float64 `json:"clarity_threshold"`

	MinFrequency float64 `json:"min_frequency"` // Lowest detectable frequency (Hz)
	MaxFrequency float64 `json:"max_frequency"` // Highest detectable frequency (Hz)
}

// DefaultMPMConfig returns the cross-check configuration used alongside the
// YIN detector.
func DefaultMPMConfig() MPMConfig {
	return MPMConfig{
		ClarityThreshold: 0.90,
		MinFrequency:     80.0,
		MaxFrequency:     1200.0,
	}
}

// MPMDetector implements normalized-autocorrelation peak picking in the
// style of the McLeod Pitch Method.
//
// Reference: McLeod, P., Wyvill, G. (2005). "A smarter way to find pitch"
//
// NSDF(tau) = 2*ACF(tau) / (m(0) + m(tau)) lies in [-1, 1]; the first
// local maximum above the clarity threshold within the lag range is taken
// as the period. Like YinDetector, the steady state is allocation-free.
type MPMDetector struct {
	config MPMConfig

	nsdf []float64
}

// NewMPM creates an NSDF detector, validating the configuration up front.
func NewMPM(config MPMConfig) (*MPMDetector, error) {
	if config.ClarityThreshold <= 0 || config.ClarityThreshold >= 1 {
		return nil, fmt.Errorf("clarity threshold must be in (0, 1), got %g", config.ClarityThreshold)
	}
	if config.MinFrequency <= 0 {
		return nil, fmt.Errorf("min frequency must be positive, got %g", config.MinFrequency)
	}
	if config.MaxFrequency <= config.MinFrequency {
		return nil, fmt.Errorf("max frequency (%g) must exceed min frequency (%g)",
			config.MaxFrequency, config.MinFrequency)
	}

	return &MPMDetector{config: config}, nil
}

// Config returns the detector configuration.
func (m *MPMDetector) Config() MPMConfig {
	return m.config
}

// Detect estimates the fundamental frequency of one audio frame. The second
// return value is false when no NSDF peak clears the clarity threshold.
func (m *MPMDetector) Detect(frame []float64, sampleRate float64) (Result, bool) {
	half := len(frame) / 2
	if half < 3 || sampleRate <= 0 {
		return Result{}, false
	}

	// Scratch sizing happens before any early return, matching YinDetector.
	m.ensureBuffer(half)

	minLag := int(sampleRate / m.config.MaxFrequency)
	if minLag < 1 {
		minLag = 1
	}
	maxLag := int(sampleRate / m.config.MinFrequency)
	if maxLag > half-1 {
		maxLag = half - 1
	}
	if minLag >= maxLag {
		return Result{}, false
	}

	nsdf := m.nsdf[:half]

	for tau := 0; tau <= maxLag; tau++ {
		acf := 0.0
		m1 := 0.0
		m2 := 0.0

		for j := 0; j < half; j++ {
			x1 := frame[j]
			x2 := frame[j+tau]

			acf += x1 * x2
			m1 += x1 * x1
			m2 += x2 * x2
		}

		if m1+m2 > 0 {
			nsdf[tau] = 2.0 * acf / (m1 + m2)
		} else {
			nsdf[tau] = 0.0
		}
	}

	// First local maximum above the clarity threshold. Taking the first
	// rather than the tallest peak keeps a perfectly periodic signal from
	// resolving to a lag multiple, where the NSDF peaks are near-identical
	// and numeric noise would decide.
	best := -1
	for tau := minLag; tau <= maxLag; tau++ {
		if nsdf[tau] >= m.config.ClarityThreshold && nsdf[tau] > nsdf[tau-1] && (tau == maxLag || nsdf[tau] >= nsdf[tau+1]) {
			best = tau
			break
		}
	}
	if best < 0 {
		return Result{}, false
	}
	bestValue := nsdf[best]

	period := common.ParabolicInterpolate(nsdf[:maxLag+1], best)
	if period <= 0 || math.IsNaN(period) || math.IsInf(period, 0) {
		return Result{}, false
	}

	frequency := sampleRate / period
	if frequency < m.config.MinFrequency || frequency > m.config.MaxFrequency {
		return Result{}, false
	}

	confidence := common.Clamp(bestValue, 0.0, 1.0)

	return Result{Frequency: frequency, Confidence: confidence}, true
}

func (m *MPMDetector) ensureBuffer(half int) {
	if cap(m.nsdf) < half {
		m.nsdf = make([]float64, half)
		return
	}
	m.nsdf = m.nsdf[:half]
}
