// Package config persists tuner settings as JSON under the user's
// configuration directory. Loading is forgiving: a missing file yields the
// defaults, and out-of-range values are clamped rather than rejected, so a
// hand-edited file never prevents startup.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/mdobak/go-xerrors"

	"github.com/amesford/tunerkit/algorithms/notes"
	"github.com/amesford/tunerkit/logging"
)

// Version is the config file format version written by Save.
const Version = 1

// Reference pitch bounds accepted from a config file (Hz).
const (
	MinReferencePitch = 430.0
	MaxReferencePitch = 450.0
)

// AudioConfig holds device and feedback settings.
type AudioConfig struct {
	DeviceID   int    `json:"device_id"`   // Input device, -1 means default
	DeviceName string `json:"device_name"` // Display name for matching
	SampleRate int    `json:"sample_rate"`
	BufferSize int    `json:"buffer_size"`

	EnableBeep      bool    `json:"enable_beep"`      // In-tune beep feedback
	BeepVolume      float64 `json:"beep_volume"`      // 0.0-1.0
	EnableReference bool    `json:"enable_reference"` // Reference tone playback
	ReferenceVolume float64 `json:"reference_volume"` // 0.0-1.0

	EnableMonitoring bool    `json:"enable_monitoring"` // Input pass-through to output
	MonitoringVolume float64 `json:"monitoring_volume"` // 0.0-1.0

	InputGain float64 `json:"input_gain"` // Linear, 1.0 = unity
}

// TuningConfig holds the tuning mode and pitch reference.
type TuningConfig struct {
	Mode           string  `json:"mode"`            // Parsed with tuning.ParseMode
	ReferencePitch float64 `json:"reference_pitch"` // A4 frequency (Hz)
	Tolerance      float64 `json:"tolerance"`       // In-tune tolerance (cents)
}

// Config is the root of the persisted settings.
type Config struct {
	Audio   AudioConfig  `json:"audio"`
	Tuning  TuningConfig `json:"tuning"`
	Version int          `json:"version"`
}

// Default returns the settings used on first run.
func Default() Config {
	return Config{
		Audio: AudioConfig{
			DeviceID:         -1,
			SampleRate:       48000,
			BufferSize:       2048,
			BeepVolume:       0.5,
			ReferenceVolume:  0.5,
			MonitoringVolume: 0.5,
			InputGain:        1.0,
		},
		Tuning: TuningConfig{
			Mode:           "chromatic",
			ReferencePitch: notes.StandardReferencePitch,
			Tolerance:      3.0,
		},
		Version: Version,
	}
}

// DefaultPath returns the platform config file location, e.g.
// ~/.config/tunerkit/config.json on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", xerrors.New("resolve user config dir", err)
	}
	return filepath.Join(dir, "tunerkit", "config.json"), nil
}

// Load reads the config file at path, falling back to Default when the file
// does not exist. Values outside their valid ranges are normalized.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("no config file, using defaults", logging.Fields{"path": path})
			return Default(), nil
		}
		return Default(), xerrors.New("read config file", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), xerrors.New("parse config file", err)
	}

	cfg.normalize()
	return cfg, nil
}

// Save writes the config as indented JSON, creating the parent directory if
// needed.
func (c Config) Save(path string) error {
	c.Version = Version

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return xerrors.New("encode config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return xerrors.New("create config dir", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return xerrors.New("write config file", err)
	}

	logging.Debug("config saved", logging.Fields{"path": path})
	return nil
}

// normalize clamps out-of-range values to safe ones instead of failing.
func (c *Config) normalize() {
	def := Default()

	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = def.Audio.SampleRate
	}
	if c.Audio.BufferSize < 64 {
		c.Audio.BufferSize = def.Audio.BufferSize
	}
	c.Audio.BeepVolume = clamp01(c.Audio.BeepVolume)
	c.Audio.ReferenceVolume = clamp01(c.Audio.ReferenceVolume)
	c.Audio.MonitoringVolume = clamp01(c.Audio.MonitoringVolume)
	if c.Audio.InputGain <= 0 {
		c.Audio.InputGain = def.Audio.InputGain
	}

	if c.Tuning.ReferencePitch < MinReferencePitch || c.Tuning.ReferencePitch > MaxReferencePitch {
		c.Tuning.ReferencePitch = def.Tuning.ReferencePitch
	}
	if c.Tuning.Tolerance <= 0 || c.Tuning.Tolerance > 50 {
		c.Tuning.Tolerance = def.Tuning.Tolerance
	}
	if c.Tuning.Mode == "" {
		c.Tuning.Mode = def.Tuning.Mode
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
