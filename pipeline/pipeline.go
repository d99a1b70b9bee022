// Package pipeline connects an audio input stream to the pitch detection
// chain under real-time constraints. ProcessInputBuffer is designed to run
// inside an audio driver callback: after construction it never allocates,
// never takes a lock, and never logs. Results cross to the UI goroutine
// through relaxed atomics.
package pipeline

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/amesford/tunerkit/algorithms/pitch"
	"github.com/amesford/tunerkit/algorithms/stabilize"
	"github.com/amesford/tunerkit/logging"
)

// Callback return codes, matching the contract of portaudio-style drivers.
const (
	Continue = 0 // Keep the stream running
	Stop     = 1 // Abort the stream
)

// scratchMultiplier oversizes the input scratch relative to the nominal
// buffer so a driver that delivers larger chunks than negotiated does not
// force an allocation mid-stream.
const scratchMultiplier = 4

// Config describes a pipeline instance. All fields are validated by New.
type Config struct {
	SampleRate   float64 `json:"sample_rate"`   // Stream sample rate (Hz)
	BufferSize   int     `json:"buffer_size"`   // Nominal frames per callback
	MinFrequency float64 `json:"min_frequency"` // Lowest reported pitch (Hz)
	MaxFrequency float64 `json:"max_frequency"` // Highest reported pitch (Hz)

	Stabilizer       stabilize.Type `json:"stabilizer"`
	EMAAlpha         float64        `json:"ema_alpha"`
	MedianWindowSize int            `json:"median_window_size"`

	InputGain float64 `json:"input_gain"` // Linear gain applied before detection
}

// DefaultConfig returns the settings the tuner ships with: 48 kHz, 2048
// sample frames, the guitar range, and hybrid stabilization.
func DefaultConfig() Config {
	return Config{
		SampleRate:       48000.0,
		BufferSize:       2048,
		MinFrequency:     80.0,
		MaxFrequency:     1200.0,
		Stabilizer:       stabilize.StabilizerHybrid,
		EMAAlpha:         0.3,
		MedianWindowSize: 5,
		InputGain:        1.0,
	}
}

// PitchData is the snapshot handed to readers. Detected false means the
// frequency and confidence fields are stale or zero and should not be shown.
type PitchData struct {
	Frequency  float64 `json:"frequency"`
	Confidence float64 `json:"confidence"`
	Detected   bool    `json:"detected"`
}

// Pipeline owns the detector and stabilizer state. Exactly one goroutine
// (the audio callback) calls ProcessInputBuffer; any number of goroutines
// may call the read-side methods concurrently.
type Pipeline struct {
	config   Config
	detector *pitch.HybridDetector
	filter   stabilize.Stabilizer

	scratch []float64

	// Published state. Float values travel as IEEE 754 bits in Uint64s so a
	// reader never observes a torn value.
	frequencyBits  atomic.Uint64
	confidenceBits atomic.Uint64
	inputLevelBits atomic.Uint64
	inputGainBits  atomic.Uint64
	detected       atomic.Bool
	overflowed     atomic.Bool
}

// New builds a pipeline, validating the configuration, sizing the scratch
// buffer, and running one warm-up detection so the detectors' internal
// buffers are allocated before the first real callback.
func New(config Config) (*Pipeline, error) {
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %g", config.SampleRate)
	}
	if config.BufferSize < 64 {
		return nil, fmt.Errorf("buffer size must be >= 64, got %d", config.BufferSize)
	}
	if config.MinFrequency <= 0 || config.MaxFrequency <= config.MinFrequency {
		return nil, fmt.Errorf("invalid frequency range [%g, %g]", config.MinFrequency, config.MaxFrequency)
	}
	if config.InputGain <= 0 {
		return nil, fmt.Errorf("input gain must be positive, got %g", config.InputGain)
	}

	detectorConfig := pitch.DefaultHybridConfig()
	detectorConfig.Yin.MinFrequency = config.MinFrequency
	detectorConfig.Yin.MaxFrequency = config.MaxFrequency
	detectorConfig.MPM.MinFrequency = config.MinFrequency
	detectorConfig.MPM.MaxFrequency = config.MaxFrequency

	detector, err := pitch.NewHybrid(detectorConfig)
	if err != nil {
		return nil, fmt.Errorf("detector: %w", err)
	}

	filter, err := stabilize.New(config.Stabilizer, stabilize.Config{
		Alpha:      config.EMAAlpha,
		WindowSize: config.MedianWindowSize,
	})
	if err != nil {
		return nil, fmt.Errorf("stabilizer: %w", err)
	}

	p := &Pipeline{
		config:   config,
		detector: detector,
		filter:   filter,
		scratch:  make([]float64, config.BufferSize*scratchMultiplier),
	}
	p.inputGainBits.Store(math.Float64bits(config.InputGain))

	// Warm-up: run one detection on a synthetic tone so both detectors size
	// their internal buffers now and the first audio callback is already
	// allocation-free. The tone must be voiced; a silent frame stops at the
	// primary detector's energy gate and leaves the secondary cold.
	warmup := p.scratch[:config.BufferSize]
	step := 2 * math.Pi * math.Sqrt(config.MinFrequency*config.MaxFrequency) / config.SampleRate
	for i := range warmup {
		warmup[i] = 0.5 * math.Sin(step*float64(i))
	}
	p.detector.Detect(warmup, config.SampleRate)
	p.filter.Reset()

	logging.Info("audio pipeline ready", logging.Fields{
		"sample_rate": config.SampleRate,
		"buffer_size": config.BufferSize,
		"stabilizer":  config.Stabilizer.String(),
	})

	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// ProcessInputBuffer consumes one callback's worth of samples and publishes
// the resulting pitch snapshot. It returns Continue on every path except an
// empty input, which signals a dead stream.
//
// Real-time safe: no allocation, no locks, no logging.
func (p *Pipeline) ProcessInputBuffer(input []float32) int {
	if len(input) == 0 {
		return Stop
	}

	n := len(input)
	if n > len(p.scratch) {
		// Driver handed us more than the scratch can hold. Latch the
		// overflow for the UI and process the most recent window.
		p.overflowed.Store(true)
		input = input[n-len(p.scratch):]
		n = len(p.scratch)
	}

	gain := math.Float64frombits(p.inputGainBits.Load())
	frame := p.scratch[:n]
	sumSquares := 0.0
	for i, s := range input {
		v := float64(s) * gain
		frame[i] = v
		sumSquares += v * v
	}
	p.inputLevelBits.Store(math.Float64bits(math.Sqrt(sumSquares / float64(n))))

	raw, ok := p.detector.Detect(frame, p.config.SampleRate)
	if ok && (math.IsNaN(raw.Frequency) || math.IsInf(raw.Frequency, 0)) {
		ok = false
	}
	if !ok {
		p.detected.Store(false)
		return Continue
	}

	p.filter.Update(raw)
	smoothed := p.filter.Stabilized()

	p.frequencyBits.Store(math.Float64bits(smoothed.Frequency))
	p.confidenceBits.Store(math.Float64bits(smoothed.Confidence))
	p.detected.Store(true)

	return Continue
}

// LatestPitch returns the most recently published snapshot. The three
// fields are read with independent relaxed loads; they may straddle a
// frame boundary, which is acceptable for display purposes.
func (p *Pipeline) LatestPitch() PitchData {
	return PitchData{
		Frequency:  math.Float64frombits(p.frequencyBits.Load()),
		Confidence: math.Float64frombits(p.confidenceBits.Load()),
		Detected:   p.detected.Load(),
	}
}

// InputLevel returns the RMS of the last processed buffer after gain.
func (p *Pipeline) InputLevel() float64 {
	return math.Float64frombits(p.inputLevelBits.Load())
}

// CheckBufferOverflow reports whether any buffer overflowed since the last
// call, clearing the latch.
func (p *Pipeline) CheckBufferOverflow() bool {
	return p.overflowed.Swap(false)
}

// SetInputGain updates the gain applied to incoming samples. Non-positive
// values are ignored.
func (p *Pipeline) SetInputGain(gain float64) {
	if gain <= 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		return
	}
	p.inputGainBits.Store(math.Float64bits(gain))
}

// InputGain returns the current input gain.
func (p *Pipeline) InputGain() float64 {
	return math.Float64frombits(p.inputGainBits.Load())
}

// ResetStabilizer clears the smoothing state, typically after the user
// switches strings or tuning modes. Call only while the stream is stopped;
// the stabilizer is owned by the callback goroutine.
func (p *Pipeline) ResetStabilizer() {
	p.filter.Reset()
}
