package feedback

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSampleRate = 48000.0

func TestSineGeneratorMatchesReference(t *testing.T) {
	g := NewSineGenerator(testSampleRate)
	g.SetFrequency(440.0)
	g.SetAmplitude(0.5)

	for i := 0; i < 100; i++ {
		want := 0.5 * math.Sin(2*math.Pi*440.0*float64(i)/testSampleRate)
		assert.InDelta(t, want, float64(g.NextSample()), 1e-4, "sample %d", i)
	}
}

func TestSineGeneratorSilentByDefault(t *testing.T) {
	g := NewSineGenerator(testSampleRate)
	for i := 0; i < 10; i++ {
		assert.Zero(t, g.NextSample())
	}
}

func TestSineGeneratorPhaseContinuityAcrossFrequencyChange(t *testing.T) {
	g := NewSineGenerator(testSampleRate)
	g.SetFrequency(440.0)
	g.SetAmplitude(1.0)

	prev := g.NextSample()
	maxStep := 2 * math.Pi * 880.0 / testSampleRate // Steepest slope at the higher frequency

	for i := 0; i < 500; i++ {
		if i == 250 {
			g.SetFrequency(880.0)
		}
		s := g.NextSample()
		assert.LessOrEqual(t, math.Abs(float64(s-prev)), maxStep*1.01, "sample %d", i)
		prev = s
	}
}

func TestSineGeneratorAmplitudeClamped(t *testing.T) {
	g := NewSineGenerator(testSampleRate)
	g.SetAmplitude(2.5)
	assert.Equal(t, 1.0, g.Amplitude())

	g.SetAmplitude(-1)
	assert.Zero(t, g.Amplitude())
}

func TestSineGeneratorRejectsInvalidFrequency(t *testing.T) {
	g := NewSineGenerator(testSampleRate)
	g.SetFrequency(math.NaN())
	assert.Zero(t, g.Frequency())

	g.SetFrequency(math.Inf(1))
	assert.Zero(t, g.Frequency())

	g.SetFrequency(-50)
	assert.Zero(t, g.Frequency())
}

func TestSineGeneratorMixIntoClips(t *testing.T) {
	g := NewSineGenerator(testSampleRate)
	g.SetFrequency(440.0)
	g.SetAmplitude(1.0)

	out := make([]float32, 256)
	for i := range out {
		out[i] = 0.9
	}
	g.MixInto(out)

	for i, s := range out {
		assert.LessOrEqual(t, s, float32(1.0), "sample %d", i)
		assert.GreaterOrEqual(t, s, float32(-1.0), "sample %d", i)
	}
}

func TestPolyphonicGeneratorVoices(t *testing.T) {
	p := NewPolyphonicGenerator(testSampleRate, 6)
	require.Equal(t, 6, p.VoiceCount())

	// Out-of-range voice indices are ignored
	p.SetVoice(-1, 440.0)
	p.SetVoice(6, 440.0)

	p.SetVoice(0, 110.0)
	p.SetAmplitude(0.8)

	out := make([]float32, 512)
	p.MixInto(out)

	peak := float32(0)
	for _, s := range out {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
	}
	assert.Greater(t, peak, float32(0))

	p.Silence()
	for i := range out {
		out[i] = 0
	}
	p.MixInto(out)
	for _, s := range out {
		assert.Zero(t, s)
	}
}

func TestPolyphonicGeneratorHeadroom(t *testing.T) {
	p := NewPolyphonicGenerator(testSampleRate, 6)
	for i := 0; i < 6; i++ {
		p.SetVoice(i, 110.0*float64(i+1))
	}
	p.SetAmplitude(1.0)

	out := make([]float32, 2048)
	p.MixInto(out)

	for i, s := range out {
		assert.LessOrEqual(t, math.Abs(float64(s)), 1.0, "sample %d", i)
	}
}
