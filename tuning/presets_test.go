package tuning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const freqTolerance = 0.01

func TestStandardTuningA440(t *testing.T) {
	preset := PresetFor(Standard, 440.0)

	assert.Equal(t, "Standard (EADGBE)", preset.Name)

	want := []float64{82.41, 110.00, 146.83, 196.00, 246.94, 329.63}
	names := []string{"E2", "A2", "D3", "G3", "B3", "E4"}
	for i := range want {
		assert.InDelta(t, want[i], preset.Frequencies[i], freqTolerance, "string %d", i)
		assert.Equal(t, names[i], preset.NoteNames[i], "string %d", i)
	}
}

func TestAlternateTunings(t *testing.T) {
	tests := []struct {
		mode  Mode
		name  string
		freqs []float64
	}{
		{DropD, "Drop D", []float64{73.42, 110.00, 146.83, 196.00, 246.94, 329.63}},
		{DropC, "Drop C", []float64{65.41, 98.00, 130.81, 174.61, 220.00, 293.66}},
		{DADGAD, "DADGAD", []float64{73.42, 110.00, 146.83, 196.00, 220.00, 293.66}},
		{OpenG, "Open G", []float64{73.42, 98.00, 146.83, 196.00, 246.94, 293.66}},
		{OpenD, "Open D", []float64{73.42, 110.00, 146.83, 185.00, 220.00, 293.66}},
	}

	for _, tt := range tests {
		preset := PresetFor(tt.mode, 440.0)
		assert.Equal(t, tt.name, preset.Name)
		for i, want := range tt.freqs {
			assert.InDelta(t, want, preset.Frequencies[i], freqTolerance, "%s string %d", tt.name, i)
		}
	}
}

func TestChromaticModeHasNoTargets(t *testing.T) {
	preset := PresetFor(Chromatic, 440.0)

	assert.Equal(t, "Chromatic", preset.Name)
	for i := 0; i < StringCount; i++ {
		assert.Zero(t, preset.Frequencies[i])
		assert.Empty(t, preset.NoteNames[i])
	}
}

func TestReferencePitchScaling(t *testing.T) {
	base := PresetFor(Standard, 440.0)

	for _, ref := range []float64{430.0, 442.0, 450.0} {
		preset := PresetFor(Standard, ref)
		scale := ref / 440.0
		for i := 0; i < StringCount; i++ {
			assert.InDelta(t, base.Frequencies[i]*scale, preset.Frequencies[i], freqTolerance,
				"A4=%g string %d", ref, i)
		}
	}
}

func TestOutOfRangeModeFallsBackToChromatic(t *testing.T) {
	assert.Equal(t, "Chromatic", PresetFor(Mode(42), 440.0).Name)
	assert.Equal(t, "Chromatic", PresetFor(Mode(-1), 440.0).Name)
}

func TestAllPresets(t *testing.T) {
	presets := AllPresets(440.0)

	require.Len(t, presets, 7)
	names := []string{"Chromatic", "Standard (EADGBE)", "Drop D", "Drop C", "DADGAD", "Open G", "Open D"}
	for i, want := range names {
		assert.Equal(t, want, presets[i].Name)
	}
}

func TestFindClosestStringExactMatch(t *testing.T) {
	tests := []struct {
		frequency float64
		index     int
	}{
		{82.41, 0},  // 6th string
		{110.00, 1}, // 5th string
		{329.63, 5}, // 1st string
	}
	for _, tt := range tests {
		idx, ok := FindClosestString(Standard, tt.frequency, 440.0, DefaultStringTolerance)
		require.True(t, ok, "%.2f Hz", tt.frequency)
		assert.Equal(t, tt.index, idx, "%.2f Hz", tt.frequency)
	}
}

func TestFindClosestStringWithinTolerance(t *testing.T) {
	// 10 cents sharp of low E
	sharpE2 := 82.41 * math.Pow(2, 10.0/1200.0)
	idx, ok := FindClosestString(Standard, sharpE2, 440.0, DefaultStringTolerance)
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	// 15 cents flat of A2
	flatA2 := 110.00 * math.Pow(2, -15.0/1200.0)
	idx, ok = FindClosestString(Standard, flatA2, 440.0, DefaultStringTolerance)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestFindClosestStringOutsideTolerance(t *testing.T) {
	// 50 cents sharp of low E is outside the 25 cent window
	verySharpE2 := 82.41 * math.Pow(2, 50.0/1200.0)
	_, ok := FindClosestString(Standard, verySharpE2, 440.0, DefaultStringTolerance)
	assert.False(t, ok)

	_, ok = FindClosestString(Standard, 50.0, 440.0, DefaultStringTolerance)
	assert.False(t, ok)

	_, ok = FindClosestString(Standard, 500.0, 440.0, DefaultStringTolerance)
	assert.False(t, ok)
}

func TestFindClosestStringBoundary(t *testing.T) {
	justInside := 82.41 * math.Pow(2, 24.9/1200.0)
	_, ok := FindClosestString(Standard, justInside, 440.0, DefaultStringTolerance)
	assert.True(t, ok)

	justOutside := 82.41 * math.Pow(2, 25.1/1200.0)
	_, ok = FindClosestString(Standard, justOutside, 440.0, DefaultStringTolerance)
	assert.False(t, ok)
}

func TestFindClosestStringChromaticMode(t *testing.T) {
	_, ok := FindClosestString(Chromatic, 82.41, 440.0, DefaultStringTolerance)
	assert.False(t, ok)

	_, ok = FindClosestString(Chromatic, 440.0, 440.0, DefaultStringTolerance)
	assert.False(t, ok)
}

func TestStringNameStandardTuning(t *testing.T) {
	want := []string{
		"6th String (E2)",
		"5th String (A2)",
		"4th String (D3)",
		"3rd String (G3)",
		"2nd String (B3)",
		"1st String (E4)",
	}
	for i, name := range want {
		assert.Equal(t, name, StringName(i, Standard, 440.0))
	}
}

func TestStringNameDropD(t *testing.T) {
	assert.Equal(t, "6th String (D2)", StringName(0, DropD, 440.0))
	assert.Equal(t, "1st String (E4)", StringName(5, DropD, 440.0))
}

func TestStringNameChromatic(t *testing.T) {
	assert.Equal(t, "6th String", StringName(0, Chromatic, 440.0))
	assert.Equal(t, "1st String", StringName(5, Chromatic, 440.0))
}

func TestStringNameInvalidIndices(t *testing.T) {
	assert.Equal(t, "Unknown String", StringName(-1, Standard, 440.0))
	assert.Equal(t, "Unknown String", StringName(6, Standard, 440.0))
	assert.Equal(t, "Unknown String", StringName(100, Standard, 440.0))
}

func TestParseMode(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Mode
	}{
		{"chromatic", Chromatic},
		{"standard", Standard},
		{"drop-d", DropD},
		{"drop-c", DropC},
		{"dadgad", DADGAD},
		{"open-g", OpenG},
		{"open-d", OpenD},
	} {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMode("nashville")
	assert.Error(t, err)
}
