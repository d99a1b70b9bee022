package pitch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHybridDetectsPureTones(t *testing.T) {
	detector, err := NewHybrid(DefaultHybridConfig())
	require.NoError(t, err)

	for _, want := range []float64{82.41, 110.0, 196.0, 329.63} {
		frame, _ := sineFrame(want, 0.5, 0, testFrameSize)

		result, ok := detector.Detect(frame, testSampleRate)
		require.True(t, ok, "%.2f Hz", want)
		assert.InDelta(t, want, result.Frequency, 1.0, "%.2f Hz", want)
	}
}

func TestHybridSilenceNotDetected(t *testing.T) {
	detector, err := NewHybrid(DefaultHybridConfig())
	require.NoError(t, err)

	frame := make([]float64, testFrameSize)
	_, ok := detector.Detect(frame, testSampleRate)
	assert.False(t, ok)
}

func TestHybridConfigValidation(t *testing.T) {
	cfg := DefaultHybridConfig()
	cfg.HarmonicTolerance = 0
	_, err := NewHybrid(cfg)
	assert.Error(t, err)

	cfg = DefaultHybridConfig()
	cfg.HarmonicTolerance = 0.5
	_, err = NewHybrid(cfg)
	assert.Error(t, err)

	cfg = DefaultHybridConfig()
	cfg.Yin.Threshold = 0
	_, err = NewHybrid(cfg)
	assert.Error(t, err)

	cfg = DefaultHybridConfig()
	cfg.MPM.ClarityThreshold = 0
	_, err = NewHybrid(cfg)
	assert.Error(t, err)
}

func TestResolveHarmonicPrefersLowerFundamental(t *testing.T) {
	a := Result{Frequency: 880.0, Confidence: 0.9}
	b := Result{Frequency: 440.0, Confidence: 0.85}

	resolved, isHarmonic := resolveHarmonic(a, b, 0.05)
	require.True(t, isHarmonic)
	assert.Equal(t, 440.0, resolved.Frequency)

	// Argument order must not matter
	resolved, isHarmonic = resolveHarmonic(b, a, 0.05)
	require.True(t, isHarmonic)
	assert.Equal(t, 440.0, resolved.Frequency)
}

func TestResolveHarmonicConfidenceVeto(t *testing.T) {
	// The lower estimate loses when its confidence collapses
	low := Result{Frequency: 440.0, Confidence: 0.3}
	high := Result{Frequency: 880.0, Confidence: 0.9}

	resolved, isHarmonic := resolveHarmonic(low, high, 0.05)
	require.True(t, isHarmonic)
	assert.Equal(t, 880.0, resolved.Frequency)
}

func TestResolveHarmonicHigherRatios(t *testing.T) {
	for _, ratio := range []float64{2.0, 3.0, 4.0} {
		low := Result{Frequency: 110.0, Confidence: 0.9}
		high := Result{Frequency: 110.0 * ratio, Confidence: 0.9}

		resolved, isHarmonic := resolveHarmonic(high, low, 0.05)
		require.True(t, isHarmonic, "ratio %g", ratio)
		assert.Equal(t, 110.0, resolved.Frequency, "ratio %g", ratio)
	}
}

func TestResolveHarmonicNearMissWithinTolerance(t *testing.T) {
	// 3% off an exact octave still counts with a 5% tolerance
	low := Result{Frequency: 110.0, Confidence: 0.9}
	high := Result{Frequency: 110.0 * 2.0 * 1.03, Confidence: 0.9}

	_, isHarmonic := resolveHarmonic(low, high, 0.05)
	assert.True(t, isHarmonic)
}

func TestResolveHarmonicUnrelatedFrequencies(t *testing.T) {
	a := Result{Frequency: 440.0, Confidence: 0.9}
	b := Result{Frequency: 660.0, Confidence: 0.9} // Ratio 1.5

	_, isHarmonic := resolveHarmonic(a, b, 0.05)
	assert.False(t, isHarmonic)

	// Near-identical estimates are agreement, not a harmonic conflict
	c := Result{Frequency: 441.0, Confidence: 0.9}
	_, isHarmonic = resolveHarmonic(a, c, 0.05)
	assert.False(t, isHarmonic)
}

func TestAnalyzeTrack(t *testing.T) {
	assert.Equal(t, TrackStats{}, AnalyzeTrack(nil))

	// All unvoiced
	stats := AnalyzeTrack([]float64{0, 0, 0})
	assert.Zero(t, stats.MeanFrequency)
	assert.Zero(t, stats.VoicedRatio)

	// Steady track with two unvoiced gaps
	stats = AnalyzeTrack([]float64{0, 110, 110, 110, 110, 0})
	assert.InDelta(t, 110.0, stats.MeanFrequency, 1e-9)
	assert.InDelta(t, 4.0/6.0, stats.VoicedRatio, 1e-9)
	assert.Zero(t, stats.StdDev)
	assert.Zero(t, stats.Jitter)
	assert.InDelta(t, 1.0, stats.Stability, 1e-9)

	// Jittery track has nonzero spread
	stats = AnalyzeTrack([]float64{110, 112, 108, 111, 109})
	assert.InDelta(t, 110.0, stats.MeanFrequency, 1e-9)
	assert.Greater(t, stats.StdDev, 0.0)
	assert.Greater(t, stats.Jitter, 0.0)
	assert.Less(t, stats.Stability, 1.0)
}
