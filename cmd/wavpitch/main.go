// Command wavpitch analyzes a WAV file offline: it frames the audio, runs
// the same detector chain the live tuner uses, cross-checks each frame with
// a harmonic product spectrum estimate, and prints a per-frame table plus a
// track summary. Useful for validating recordings and for tuning detector
// parameters against known material.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/unixpickle/wav"

	"github.com/amesford/tunerkit/algorithms/notes"
	"github.com/amesford/tunerkit/algorithms/pitch"
	"github.com/amesford/tunerkit/algorithms/spectral"
	"github.com/amesford/tunerkit/algorithms/stabilize"
	"github.com/amesford/tunerkit/logging"
)

func main() {
	var (
		frameSize = flag.Int("frame", 2048, "analysis frame size in samples")
		hopSize   = flag.Int("hop", 1024, "hop between frames in samples")
		stabName  = flag.String("stabilizer", "hybrid", "stabilizer: none, ema, median, hybrid")
		refPitch  = flag.Float64("ref", notes.StandardReferencePitch, "A4 reference pitch in Hz")
		quiet     = flag.Bool("q", false, "print only the track summary")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: wavpitch [flags] file.wav\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *frameSize, *hopSize, *stabName, *refPitch, *quiet); err != nil {
		logging.Error(err, "analysis failed")
		os.Exit(1)
	}
}

func run(path string, frameSize, hopSize int, stabName string, refPitch float64, quiet bool) error {
	if frameSize < 256 {
		return fmt.Errorf("frame size must be >= 256, got %d", frameSize)
	}
	if hopSize < 1 || hopSize > frameSize {
		return fmt.Errorf("hop size must be in [1, %d], got %d", frameSize, hopSize)
	}

	sound, err := wav.ReadSoundFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	samples := monoSamples(sound)
	sampleRate := float64(sound.SampleRate())
	logging.Info("loaded file", logging.Fields{
		"path":        path,
		"sample_rate": sampleRate,
		"samples":     len(samples),
	})

	detector, err := pitch.NewHybrid(pitch.DefaultHybridConfig())
	if err != nil {
		return err
	}
	hps, err := spectral.NewHPS(spectral.DefaultHPSConfig())
	if err != nil {
		return err
	}

	stabType, err := stabilize.ParseType(stabName)
	if err != nil {
		return err
	}
	filter, err := stabilize.New(stabType, stabilize.DefaultConfig())
	if err != nil {
		return err
	}

	if !quiet {
		fmt.Printf("%8s  %9s  %9s  %5s  %9s  %-5s  %7s\n",
			"time", "raw Hz", "smooth Hz", "conf", "hps Hz", "note", "cents")
	}

	var frequencies []float64
	for start := 0; start+frameSize <= len(samples); start += hopSize {
		frame := samples[start : start+frameSize]
		t := float64(start) / sampleRate

		raw, ok := detector.Detect(frame, sampleRate)
		if !ok {
			frequencies = append(frequencies, 0)
			if !quiet {
				fmt.Printf("%8.3f  %9s  %9s  %5s  %9s  %-5s  %7s\n",
					t, "-", "-", "-", "-", "-", "-")
			}
			continue
		}

		filter.Update(raw)
		smoothed := filter.Stabilized()
		frequencies = append(frequencies, smoothed.Frequency)

		if quiet {
			continue
		}

		hpsColumn := "-"
		if f0, ok := hps.EstimateF0(frame, sampleRate); ok {
			hpsColumn = fmt.Sprintf("%9.2f", f0)
		}

		note := notes.FrequencyToNote(smoothed.Frequency, refPitch)
		fmt.Printf("%8.3f  %9.2f  %9.2f  %5.2f  %9s  %s%-4d  %+7.1f\n",
			t, raw.Frequency, smoothed.Frequency, smoothed.Confidence,
			hpsColumn, note.Name, note.Octave, note.Cents)
	}

	printSummary(frequencies, refPitch)
	return nil
}

// monoSamples folds all channels down to one by averaging.
func monoSamples(sound wav.Sound) []float64 {
	raw := sound.Samples()
	channels := sound.Channels()
	if channels <= 1 {
		mono := make([]float64, len(raw))
		for i, s := range raw {
			mono[i] = float64(s)
		}
		return mono
	}

	frames := len(raw) / channels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(raw[i*channels+c])
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

func printSummary(frequencies []float64, refPitch float64) {
	stats := pitch.AnalyzeTrack(frequencies)

	fmt.Printf("\nframes:     %d (%.0f%% voiced)\n",
		len(frequencies), stats.VoicedRatio*100)
	if stats.MeanFrequency <= 0 {
		fmt.Println("no pitch detected")
		return
	}

	note := notes.FrequencyToNote(stats.MeanFrequency, refPitch)
	fmt.Printf("mean pitch: %.2f Hz (%s%d %+.1f cents)\n",
		stats.MeanFrequency, note.Name, note.Octave, note.Cents)
	fmt.Printf("std dev:    %.3f Hz\n", stats.StdDev)
	fmt.Printf("jitter:     %.3f Hz\n", stats.Jitter)
	fmt.Printf("stability:  %.3f\n", stats.Stability)

	if math.Abs(note.Cents) <= 3 {
		fmt.Println("in tune")
	}
}
