package spectral

import (
	"fmt"

	"github.com/amesford/tunerkit/algorithms/common"
)

// HPSConfig contains parameters for the harmonic product spectrum estimator.
type HPSConfig struct {
	NumHarmonics int     `json:"num_harmonics"` // Harmonics multiplied into the product
	MinFrequency float64 `json:"min_frequency"` // Lowest candidate F0 (Hz)
	MaxFrequency float64 `json:"max_frequency"` // Highest candidate F0 (Hz)
}

// DefaultHPSConfig returns the cross-check configuration used by the file
// analyzer.
func DefaultHPSConfig() HPSConfig {
	return HPSConfig{
		NumHarmonics: 4,
		MinFrequency: 80.0,
		MaxFrequency: 1200.0,
	}
}

// HPSDetector estimates a fundamental by multiplying the power spectrum with
// downsampled copies of itself, which reinforces the harmonic stack at the
// true F0 bin. Resolution is limited to one FFT bin plus parabolic
// refinement, so it serves as a sanity check on the time-domain detectors
// rather than a tuner-grade estimator.
type HPSDetector struct {
	config HPSConfig
	fft    *FFT
}

// NewHPS creates a harmonic product spectrum estimator.
func NewHPS(config HPSConfig) (*HPSDetector, error) {
	if config.NumHarmonics < 2 {
		return nil, fmt.Errorf("hps needs at least 2 harmonics, got %d", config.NumHarmonics)
	}
	if config.MinFrequency <= 0 {
		return nil, fmt.Errorf("min frequency must be positive, got %g", config.MinFrequency)
	}
	if config.MaxFrequency <= config.MinFrequency {
		return nil, fmt.Errorf("max frequency (%g) must exceed min frequency (%g)",
			config.MaxFrequency, config.MinFrequency)
	}
	return &HPSDetector{config: config, fft: NewFFT()}, nil
}

// EstimateF0 returns the harmonic product spectrum estimate for one frame,
// or (0, false) when no peak falls in the configured range. The frame is
// windowed on a copy; the input is not modified.
func (h *HPSDetector) EstimateF0(frame []float64, sampleRate float64) (float64, bool) {
	if len(frame) < 4 || sampleRate <= 0 {
		return 0, false
	}

	windowed := make([]float64, len(frame))
	copy(windowed, frame)
	HannWindow(windowed)

	magnitude := h.fft.Magnitude(windowed)
	hps := h.product(magnitude)

	binWidth := sampleRate / float64(len(frame))
	minBin := int(h.config.MinFrequency / binWidth)
	if minBin < 1 {
		minBin = 1
	}
	maxBin := int(h.config.MaxFrequency / binWidth)
	if maxBin > len(hps)-2 {
		maxBin = len(hps) - 2
	}
	if minBin >= maxBin {
		return 0, false
	}

	best := -1
	bestValue := 0.0
	for bin := minBin; bin <= maxBin; bin++ {
		if hps[bin] > bestValue {
			best = bin
			bestValue = hps[bin]
		}
	}
	if best < 0 || bestValue <= 0 {
		return 0, false
	}

	refined := common.ParabolicInterpolate(hps, best)
	frequency := refined * binWidth
	if frequency < h.config.MinFrequency || frequency > h.config.MaxFrequency {
		return 0, false
	}
	return frequency, true
}

// product builds the harmonic product spectrum from a magnitude spectrum.
func (h *HPSDetector) product(magnitude []float64) []float64 {
	hps := make([]float64, len(magnitude))
	for i, m := range magnitude {
		hps[i] = m * m
	}

	for harmonic := 2; harmonic <= h.config.NumHarmonics; harmonic++ {
		limit := len(magnitude) / harmonic
		for i := 0; i < limit; i++ {
			m := magnitude[i*harmonic]
			hps[i] *= m * m
		}
		for i := limit; i < len(hps); i++ {
			hps[i] = 0
		}
	}
	return hps
}
