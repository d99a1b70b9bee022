// Command tuner is a terminal guitar tuner. It captures the default input
// device through portaudio, runs the pitch pipeline inside the audio
// callback, and refreshes a single status line with the detected note, the
// cent deviation, and the closest target string for the selected tuning.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/amesford/tunerkit/algorithms/notes"
	"github.com/amesford/tunerkit/algorithms/stabilize"
	"github.com/amesford/tunerkit/config"
	"github.com/amesford/tunerkit/feedback"
	"github.com/amesford/tunerkit/logging"
	"github.com/amesford/tunerkit/pipeline"
	"github.com/amesford/tunerkit/tuning"
)

const (
	displayInterval     = 100 * time.Millisecond
	confidenceThreshold = 0.7
)

func main() {
	var (
		configPath = flag.String("config", "", "config file path (default: platform config dir)")
		sampleRate = flag.Float64("rate", 0, "sample rate in Hz (overrides config)")
		bufferSize = flag.Int("buffer", 0, "frames per callback (overrides config)")
		stabName   = flag.String("stabilizer", "hybrid", "stabilizer: none, ema, median, hybrid")
		tuningName = flag.String("tuning", "", "tuning mode (overrides config): chromatic, standard, drop-d, drop-c, dadgad, open-g, open-d")
		refPitch   = flag.Float64("ref", 0, "A4 reference pitch in Hz (overrides config)")
		gain       = flag.Float64("gain", 0, "input gain (overrides config)")
		monitor    = flag.Bool("monitor", false, "play the input back through the default output")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		logging.GetGlobalLogger().SetLevel(logging.DebugLevel)
	}

	if err := run(*configPath, *sampleRate, *bufferSize, *stabName, *tuningName, *refPitch, *gain, *monitor); err != nil {
		logging.Error(err, "tuner failed")
		os.Exit(1)
	}
}

func run(configPath string, sampleRate float64, bufferSize int, stabName, tuningName string, refPitch, gain float64, monitor bool) error {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if sampleRate > 0 {
		cfg.Audio.SampleRate = int(sampleRate)
	}
	if bufferSize > 0 {
		cfg.Audio.BufferSize = bufferSize
	}
	if refPitch > 0 {
		cfg.Tuning.ReferencePitch = refPitch
	}
	if gain > 0 {
		cfg.Audio.InputGain = gain
	}
	if tuningName != "" {
		cfg.Tuning.Mode = tuningName
	}
	if monitor {
		cfg.Audio.EnableMonitoring = true
	}

	stabType, err := stabilize.ParseType(stabName)
	if err != nil {
		return err
	}
	mode, err := tuning.ParseMode(cfg.Tuning.Mode)
	if err != nil {
		return err
	}

	pipeConfig := pipeline.DefaultConfig()
	pipeConfig.SampleRate = float64(cfg.Audio.SampleRate)
	pipeConfig.BufferSize = cfg.Audio.BufferSize
	pipeConfig.Stabilizer = stabType
	pipeConfig.InputGain = cfg.Audio.InputGain

	pipe, err := pipeline.New(pipeConfig)
	if err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	var stream *portaudio.Stream
	if cfg.Audio.EnableMonitoring {
		// Duplex stream: the input callback feeds the pipeline and a ring
		// buffer, the output side plays the ring back at monitoring volume.
		mon := feedback.NewMonitor(cfg.Audio.BufferSize * 4)
		mon.SetVolume(cfg.Audio.MonitoringVolume)
		mon.SetEnabled(true)

		stream, err = portaudio.OpenDefaultStream(1, 1, pipeConfig.SampleRate, pipeConfig.BufferSize,
			func(in, out []float32) {
				pipe.ProcessInputBuffer(in)
				mon.Write(in)
				for i := range out {
					out[i] = 0
				}
				mon.MixInto(out)
			})
	} else {
		stream, err = portaudio.OpenDefaultStream(1, 0, pipeConfig.SampleRate, pipeConfig.BufferSize,
			func(in []float32) {
				pipe.ProcessInputBuffer(in)
			})
	}
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}
	defer stream.Stop()

	logging.Info("listening", logging.Fields{
		"tuning":    mode.String(),
		"reference": cfg.Tuning.ReferencePitch,
	})
	fmt.Printf("Tuning: %s  (A4 = %.1f Hz)  Ctrl-C to quit\n", mode, cfg.Tuning.ReferencePitch)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(displayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-interrupt:
			fmt.Println()
			return nil
		case <-ticker.C:
			if pipe.CheckBufferOverflow() {
				logging.Warn("input buffer overflow")
			}
			render(pipe, mode, cfg.Tuning.ReferencePitch, cfg.Tuning.Tolerance)
		}
	}
}

// render redraws the status line from the latest pipeline snapshot.
func render(pipe *pipeline.Pipeline, mode tuning.Mode, referencePitch, toleranceCents float64) {
	data := pipe.LatestPitch()
	if !data.Detected || data.Confidence < confidenceThreshold {
		fmt.Printf("\r%-70s", "listening...")
		return
	}

	note := notes.FrequencyToNote(data.Frequency, referencePitch)
	if note.Name == "" {
		fmt.Printf("\r%-70s", "listening...")
		return
	}

	marker := " "
	if math.Abs(note.Cents) <= toleranceCents {
		marker = "*"
	}

	line := fmt.Sprintf("%s %s%d  %+6.1f cents  %7.2f Hz  [%s]",
		marker, note.Name, note.Octave, note.Cents, data.Frequency, meter(note.Cents))

	if idx, ok := tuning.FindClosestString(mode, data.Frequency, referencePitch, tuning.DefaultStringTolerance); ok {
		line += "  " + tuning.StringName(idx, mode, referencePitch)
	}

	fmt.Printf("\r%-70s", line)
}

// meter draws a 21-cell flat/sharp indicator centered on zero cents.
func meter(cents float64) string {
	const cells = 21
	pos := int(math.Round(cents/50*float64(cells/2))) + cells/2
	if pos < 0 {
		pos = 0
	}
	if pos >= cells {
		pos = cells - 1
	}

	var b strings.Builder
	for i := 0; i < cells; i++ {
		switch {
		case i == pos:
			b.WriteByte('|')
		case i == cells/2:
			b.WriteByte('+')
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
