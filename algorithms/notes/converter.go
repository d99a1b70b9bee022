package notes

import (
	"fmt"
	"math"
)

// Note describes a frequency in equal-tempered terms: the nearest pitch
// class, its octave, and the signed deviation from that note in cents.
type Note struct {
	Name      string  `json:"name"`      // Pitch class, sharps only ("A", "C#")
	Octave    int     `json:"octave"`    // Scientific pitch notation octave
	Frequency float64 `json:"frequency"` // Input frequency (Hz)
	Cents     float64 `json:"cents"`     // Deviation from the nearest semitone, signed
}

// StandardReferencePitch is the conventional A4 frequency.
const StandardReferencePitch = 440.0

// noteNames indexed by pitch class, C = 0.
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// a4Index is the semitone index of A4 when C0 is index 0.
const a4Index = 57

// FrequencyToNote maps a frequency to the nearest equal-tempered note under
// the given reference pitch. A frequency exactly on a semitone yields
// Cents == 0; slightly sharp is positive, slightly flat negative, and the
// magnitude never exceeds 50 for the nearest note.
//
// A non-positive frequency (or reference pitch) is invalid input and returns
// the zero Note: empty name, zero cents. Callers that can receive raw
// detector output should check Name before display.
func FrequencyToNote(frequency, referencePitch float64) Note {
	if frequency <= 0 || referencePitch <= 0 {
		return Note{}
	}

	idx := int(math.Round(12*math.Log2(frequency/referencePitch))) + a4Index
	if idx < 0 {
		// Below C0; out of the representable range
		return Note{}
	}

	nearest := referencePitch * math.Pow(2, float64(idx-a4Index)/12.0)
	cents := 1200 * math.Log2(frequency/nearest)

	return Note{
		Name:      noteNames[idx%12],
		Octave:    idx / 12,
		Frequency: frequency,
		Cents:     cents,
	}
}

// NoteToFrequency returns the exact equal-tempered frequency of a note under
// the given reference pitch. Names use sharps ("C#", not "Db").
func NoteToFrequency(name string, octave int, referencePitch float64) (float64, error) {
	pc := -1
	for i, n := range noteNames {
		if n == name {
			pc = i
			break
		}
	}
	if pc < 0 {
		return 0, fmt.Errorf("unknown note name: %q", name)
	}
	if referencePitch <= 0 {
		return 0, fmt.Errorf("reference pitch must be positive, got %g", referencePitch)
	}

	idx := octave*12 + pc
	return referencePitch * math.Pow(2, float64(idx-a4Index)/12.0), nil
}

// FrequencyToCents returns the signed interval from f2 to f1 in cents.
// Antisymmetric: FrequencyToCents(a, b) == -FrequencyToCents(b, a).
// Returns 0 for non-positive inputs.
func FrequencyToCents(f1, f2 float64) float64 {
	if f1 <= 0 || f2 <= 0 {
		return 0
	}
	return 1200 * math.Log2(f1/f2)
}
