// Package tuning provides target frequencies for guitar tunings and maps a
// detected pitch onto the nearest string.
package tuning

import (
	"fmt"
	"math"

	"github.com/amesford/tunerkit/algorithms/notes"
)

// Mode selects a tuning preset.
type Mode int

const (
	Chromatic Mode = iota // No fixed targets; tune to the nearest note
	Standard              // E A D G B E
	DropD                 // D A D G B E
	DropC                 // C G C F A D
	DADGAD                // D A D G A D
	OpenG                 // D G D G B D
	OpenD                 // D A D F# A D
)

func (m Mode) String() string {
	if m < 0 || int(m) >= len(presetDefinitions) {
		return "unknown"
	}
	return presetDefinitions[m].name
}

// ParseMode maps a configuration string to a tuning Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "chromatic":
		return Chromatic, nil
	case "standard":
		return Standard, nil
	case "drop-d":
		return DropD, nil
	case "drop-c":
		return DropC, nil
	case "dadgad":
		return DADGAD, nil
	case "open-g":
		return OpenG, nil
	case "open-d":
		return OpenD, nil
	}
	return Chromatic, fmt.Errorf("unknown tuning mode: %q", s)
}

// DefaultStringTolerance is the widest deviation, in cents, at which a
// detected pitch is still attributed to a target string.
const DefaultStringTolerance = 25.0

// StringCount is the number of strings in every preset.
const StringCount = 6

// Preset holds the computed targets for one tuning. Strings are ordered low
// to high: index 0 is the 6th string (low E in standard), index 5 the 1st.
// Chromatic mode has zero frequencies and empty note names.
type Preset struct {
	Name        string               `json:"name"`
	Frequencies [StringCount]float64 `json:"frequencies"`
	NoteNames   [StringCount]string  `json:"note_names"`
}

type presetDefinition struct {
	name    string
	notes   [StringCount]string
	octaves [StringCount]int
}

var presetDefinitions = [7]presetDefinition{
	{name: "Chromatic"},
	{"Standard (EADGBE)", [6]string{"E", "A", "D", "G", "B", "E"}, [6]int{2, 2, 3, 3, 3, 4}},
	{"Drop D", [6]string{"D", "A", "D", "G", "B", "E"}, [6]int{2, 2, 3, 3, 3, 4}},
	{"Drop C", [6]string{"C", "G", "C", "F", "A", "D"}, [6]int{2, 2, 3, 3, 3, 4}},
	{"DADGAD", [6]string{"D", "A", "D", "G", "A", "D"}, [6]int{2, 2, 3, 3, 3, 4}},
	{"Open G", [6]string{"D", "G", "D", "G", "B", "D"}, [6]int{2, 2, 3, 3, 3, 4}},
	{"Open D", [6]string{"D", "A", "D", "F#", "A", "D"}, [6]int{2, 2, 3, 3, 3, 4}},
}

// PresetFor computes the preset for a mode at the given A4 reference pitch.
// Out-of-range modes fall back to Chromatic.
func PresetFor(mode Mode, referencePitch float64) Preset {
	if mode < 0 || int(mode) >= len(presetDefinitions) {
		mode = Chromatic
	}
	def := presetDefinitions[mode]

	preset := Preset{Name: def.name}
	for i := 0; i < StringCount; i++ {
		if def.notes[i] == "" {
			continue
		}
		freq, err := notes.NoteToFrequency(def.notes[i], def.octaves[i], referencePitch)
		if err != nil {
			continue
		}
		preset.Frequencies[i] = freq
		preset.NoteNames[i] = fmt.Sprintf("%s%d", def.notes[i], def.octaves[i])
	}
	return preset
}

// AllPresets returns every preset computed at the given reference pitch, in
// Mode order.
func AllPresets(referencePitch float64) []Preset {
	presets := make([]Preset, len(presetDefinitions))
	for i := range presetDefinitions {
		presets[i] = PresetFor(Mode(i), referencePitch)
	}
	return presets
}

// FindClosestString returns the index of the string whose target is nearest
// to the detected frequency, measured in cents, or (-1, false) when the
// mode is Chromatic or no string is within toleranceCents.
func FindClosestString(mode Mode, frequency, referencePitch, toleranceCents float64) (int, bool) {
	if mode == Chromatic || frequency <= 0 {
		return -1, false
	}

	preset := PresetFor(mode, referencePitch)

	closest := -1
	minCents := toleranceCents
	for i, target := range preset.Frequencies {
		if target <= 0 {
			continue
		}
		cents := math.Abs(notes.FrequencyToCents(frequency, target))
		if cents < minCents {
			minCents = cents
			closest = i
		}
	}
	if closest < 0 {
		return -1, false
	}
	return closest, true
}

// StringName formats a string index for display, e.g. "6th String (E2)".
// Index 0 is the 6th string, index 5 the 1st.
func StringName(stringIndex int, mode Mode, referencePitch float64) string {
	if stringIndex < 0 || stringIndex >= StringCount {
		return "Unknown String"
	}

	preset := PresetFor(mode, referencePitch)
	displayNumber := StringCount - stringIndex

	noteName := preset.NoteNames[stringIndex]
	if noteName == "" {
		return fmt.Sprintf("%d%s String", displayNumber, ordinalSuffix(displayNumber))
	}
	return fmt.Sprintf("%d%s String (%s)", displayNumber, ordinalSuffix(displayNumber), noteName)
}

func ordinalSuffix(n int) string {
	switch n {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
