package notes

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyToNoteKnownPitches(t *testing.T) {
	tests := []struct {
		frequency float64
		name      string
		octave    int
	}{
		{82.41, "E", 2},   // Low E string
		{110.00, "A", 2},  // A string
		{146.83, "D", 3},  // D string
		{196.00, "G", 3},  // G string
		{246.94, "B", 3},  // B string
		{329.63, "E", 4},  // High E string
		{440.00, "A", 4},  // Concert pitch
		{261.63, "C", 4},  // Middle C
		{16.35, "C", 0},   // Bottom of the representable range
		{4186.01, "C", 8}, // Top of a piano
	}

	for _, tt := range tests {
		note := FrequencyToNote(tt.frequency, StandardReferencePitch)
		assert.Equal(t, tt.name, note.Name, "%.2f Hz", tt.frequency)
		assert.Equal(t, tt.octave, note.Octave, "%.2f Hz", tt.frequency)
		assert.InDelta(t, 0.0, note.Cents, 0.5, "%.2f Hz", tt.frequency)
		assert.Equal(t, tt.frequency, note.Frequency)
	}
}

func TestFrequencyToNoteCentsSign(t *testing.T) {
	sharp := 440.0 * math.Pow(2, 10.0/1200.0)
	note := FrequencyToNote(sharp, StandardReferencePitch)
	assert.Equal(t, "A", note.Name)
	assert.InDelta(t, 10.0, note.Cents, 0.01)

	flat := 440.0 * math.Pow(2, -10.0/1200.0)
	note = FrequencyToNote(flat, StandardReferencePitch)
	assert.Equal(t, "A", note.Name)
	assert.InDelta(t, -10.0, note.Cents, 0.01)
}

func TestFrequencyToNoteNeverExceedsHalfSemitone(t *testing.T) {
	for f := 30.0; f < 2000; f *= 1.013 {
		note := FrequencyToNote(f, StandardReferencePitch)
		require.NotEmpty(t, note.Name, "%.2f Hz", f)
		assert.LessOrEqual(t, math.Abs(note.Cents), 50.001, "%.2f Hz", f)
	}
}

func TestFrequencyToNoteInvalidInput(t *testing.T) {
	assert.Equal(t, Note{}, FrequencyToNote(0, StandardReferencePitch))
	assert.Equal(t, Note{}, FrequencyToNote(-100, StandardReferencePitch))
	assert.Equal(t, Note{}, FrequencyToNote(440, 0))
}

func TestNoteToFrequencyRoundTrip(t *testing.T) {
	references := []float64{430.0, 440.0, 442.0, 450.0}

	for _, ref := range references {
		for octave := 0; octave <= 8; octave++ {
			for _, name := range []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"} {
				freq, err := NoteToFrequency(name, octave, ref)
				require.NoError(t, err)
				require.Positive(t, freq)

				note := FrequencyToNote(freq, ref)
				label := fmt.Sprintf("%s%d @ A4=%g", name, octave, ref)
				assert.Equal(t, name, note.Name, label)
				assert.Equal(t, octave, note.Octave, label)
				assert.InDelta(t, 0.0, note.Cents, 1e-6, label)
			}
		}
	}
}

func TestNoteToFrequencyReferenceScaling(t *testing.T) {
	at440, err := NoteToFrequency("E", 2, 440.0)
	require.NoError(t, err)
	at442, err := NoteToFrequency("E", 2, 442.0)
	require.NoError(t, err)

	assert.InDelta(t, at440*442.0/440.0, at442, 1e-9)
}

func TestNoteToFrequencyUnknownName(t *testing.T) {
	_, err := NoteToFrequency("Db", 3, 440.0)
	assert.Error(t, err)

	_, err = NoteToFrequency("H", 3, 440.0)
	assert.Error(t, err)
}

func TestFrequencyToCents(t *testing.T) {
	assert.InDelta(t, 1200.0, FrequencyToCents(880, 440), 1e-9)
	assert.InDelta(t, -1200.0, FrequencyToCents(220, 440), 1e-9)
	assert.InDelta(t, 0.0, FrequencyToCents(440, 440), 1e-9)

	// Antisymmetry
	assert.InDelta(t, -FrequencyToCents(445, 440), FrequencyToCents(440, 445), 1e-9)

	// Invalid input
	assert.Zero(t, FrequencyToCents(0, 440))
	assert.Zero(t, FrequencyToCents(440, -1))
}
