// Package spectral holds the frequency-domain analysis used by the offline
// tools. Nothing in this package is real-time safe; the transforms allocate
// per call, which is fine for file analysis and deliberately kept out of the
// audio callback path.
package spectral

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// FFT wraps the go-dsp transforms behind the small surface the analysis
// code needs.
type FFT struct{}

// NewFFT creates an FFT calculator.
func NewFFT() *FFT {
	return &FFT{}
}

// Compute returns the complex spectrum of a real signal. go-dsp handles
// non-power-of-2 lengths, so callers do not need to pad.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// Magnitude returns the magnitude spectrum over the positive frequencies,
// len(x)/2+1 bins.
func (f *FFT) Magnitude(x []float64) []float64 {
	spectrum := f.Compute(x)
	if len(spectrum) == 0 {
		return []float64{}
	}

	bins := len(spectrum)/2 + 1
	magnitude := make([]float64, bins)
	for i := 0; i < bins; i++ {
		magnitude[i] = math.Sqrt(real(spectrum[i])*real(spectrum[i]) +
			imag(spectrum[i])*imag(spectrum[i]))
	}
	return magnitude
}

// HannWindow applies a Hann window in place and returns the slice.
func HannWindow(x []float64) []float64 {
	n := len(x)
	if n < 2 {
		return x
	}
	for i := range x {
		x[i] *= 0.5 * (1.0 - math.Cos(2.0*math.Pi*float64(i)/float64(n-1)))
	}
	return x
}
