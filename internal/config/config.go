package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/0xlemi/spectronote/internal/display"
	"github.com/0xlemi/spectronote/internal/pitch"
	"github.com/0xlemi/spectronote/internal/spectrum"
)

// Capture sources
const (
	SourceDevice = "device"
	SourceTone   = "tone"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the application configuration
type Config struct {
	// Analysis
	WindowSize         int     `mapstructure:"windowSize"`
	DisplayBucketCount int     `mapstructure:"displayBucketCount"`
	InterestingRatio   int     `mapstructure:"interestingRatio"`
	BarScale           float64 `mapstructure:"barScale"`
	Engine             string  `mapstructure:"engine"`
	Notation           string  `mapstructure:"notation"`

	// Pipeline
	QueueDepth int `mapstructure:"queueDepth"`

	// Capture
	Source         string  `mapstructure:"source"`
	ToneHz         float64 `mapstructure:"toneHz"`
	ToneSampleRate int     `mapstructure:"toneSampleRate"`

	// Output
	TUI      bool   `mapstructure:"tui"`
	LogLevel string `mapstructure:"logLevel"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("windowSize", 4096)
	v.SetDefault("displayBucketCount", 64)
	v.SetDefault("interestingRatio", 32)
	v.SetDefault("barScale", 40.0)
	v.SetDefault("engine", string(spectrum.EngineDSP))
	v.SetDefault("notation", string(pitch.Solfege))

	v.SetDefault("queueDepth", 4)

	v.SetDefault("source", SourceDevice)
	v.SetDefault("toneHz", 440.0)
	v.SetDefault("toneSampleRate", 44100)

	v.SetDefault("tui", false)
	v.SetDefault("logLevel", "info")
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.WindowSize < 2 {
		return errors.Wrapf(ErrInvalid, "windowSize must be at least 2, got %d", c.WindowSize)
	}
	if c.DisplayBucketCount < 1 {
		return errors.Wrapf(ErrInvalid, "displayBucketCount must be positive, got %d", c.DisplayBucketCount)
	}
	if c.InterestingRatio < 2 {
		return errors.Wrapf(ErrInvalid, "interestingRatio must be at least 2, got %d", c.InterestingRatio)
	}
	if prefix := c.WindowSize / c.InterestingRatio; prefix < c.DisplayBucketCount {
		return errors.Wrapf(ErrInvalid, "%d inspected bins cannot fill %d display buckets", prefix, c.DisplayBucketCount)
	}
	if !(c.BarScale > 0) {
		return errors.Wrapf(ErrInvalid, "barScale must be positive, got %v", c.BarScale)
	}
	if c.QueueDepth < 1 {
		return errors.Wrapf(ErrInvalid, "queueDepth must be positive, got %d", c.QueueDepth)
	}

	switch spectrum.EngineName(c.Engine) {
	case spectrum.EngineDSP, spectrum.EngineGonum:
	default:
		return errors.Wrapf(ErrInvalid, "unknown engine %q", c.Engine)
	}

	switch pitch.Notation(c.Notation) {
	case pitch.Solfege, pitch.Letter:
	default:
		return errors.Wrapf(ErrInvalid, "unknown notation %q", c.Notation)
	}

	switch c.Source {
	case SourceDevice:
	case SourceTone:
		if !(c.ToneHz > 0) {
			return errors.Wrapf(ErrInvalid, "toneHz must be positive, got %v", c.ToneHz)
		}
		if c.ToneSampleRate < 1 {
			return errors.Wrapf(ErrInvalid, "toneSampleRate must be positive, got %d", c.ToneSampleRate)
		}
	default:
		return errors.Wrapf(ErrInvalid, "unknown source %q", c.Source)
	}

	return nil
}

// DisplayOptions returns the visualizer layout.
func (c *Config) DisplayOptions() display.Options {
	return display.Options{
		BucketCount:      c.DisplayBucketCount,
		InterestingRatio: c.InterestingRatio,
		BarScale:         c.BarScale,
	}
}
