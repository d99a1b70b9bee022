// Package feedback generates the tuner's audible output: the in-tune beep,
// the reference tone, and multi-voice reference chords. Generators are
// phase-continuous so frequency and volume changes never click, and their
// hot paths are allocation-free for use inside output callbacks.
package feedback

import (
	"math"
	"sync/atomic"
)

// SineGenerator produces a phase-continuous sine wave. The frequency and
// amplitude can be changed from another goroutine while a callback is
// rendering; changes take effect on the next sample without a phase jump.
type SineGenerator struct {
	sampleRate float64
	phase      float64

	frequencyBits atomic.Uint64
	amplitudeBits atomic.Uint64
}

// NewSineGenerator creates a silent generator at the given sample rate.
func NewSineGenerator(sampleRate float64) *SineGenerator {
	g := &SineGenerator{sampleRate: sampleRate}
	g.SetFrequency(0)
	g.SetAmplitude(0)
	return g
}

// SetFrequency updates the tone frequency in Hz. Zero or negative silences
// the generator.
func (g *SineGenerator) SetFrequency(hz float64) {
	if hz < 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
		hz = 0
	}
	g.frequencyBits.Store(math.Float64bits(hz))
}

// Frequency returns the current tone frequency.
func (g *SineGenerator) Frequency() float64 {
	return math.Float64frombits(g.frequencyBits.Load())
}

// SetAmplitude updates the linear output level, clamped to [0, 1].
func (g *SineGenerator) SetAmplitude(a float64) {
	if a < 0 || math.IsNaN(a) {
		a = 0
	} else if a > 1 {
		a = 1
	}
	g.amplitudeBits.Store(math.Float64bits(a))
}

// Amplitude returns the current output level.
func (g *SineGenerator) Amplitude() float64 {
	return math.Float64frombits(g.amplitudeBits.Load())
}

// NextSample advances the oscillator by one sample. Only the goroutine that
// renders audio may call this.
func (g *SineGenerator) NextSample() float32 {
	freq := math.Float64frombits(g.frequencyBits.Load())
	amp := math.Float64frombits(g.amplitudeBits.Load())
	if freq <= 0 || amp <= 0 {
		return 0
	}

	sample := amp * math.Sin(g.phase)
	g.phase += 2 * math.Pi * freq / g.sampleRate
	if g.phase >= 2*math.Pi {
		g.phase -= 2 * math.Pi
	}
	return float32(sample)
}

// MixInto adds the generator's output to out, clipping to [-1, 1].
func (g *SineGenerator) MixInto(out []float32) {
	for i := range out {
		out[i] = clip(out[i] + g.NextSample())
	}
}

// Reset returns the oscillator phase to zero.
func (g *SineGenerator) Reset() {
	g.phase = 0
}

func clip(s float32) float32 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}
