package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 4096, cfg.WindowSize)
	assert.Equal(t, 64, cfg.DisplayBucketCount)
	assert.Equal(t, 32, cfg.InterestingRatio)
	assert.Equal(t, 40.0, cfg.BarScale)
	assert.Equal(t, 4, cfg.QueueDepth)
	assert.Equal(t, "dsp", cfg.Engine)
	assert.Equal(t, "solfege", cfg.Notation)
	assert.Equal(t, SourceDevice, cfg.Source)
	assert.False(t, cfg.TUI)
	assert.Equal(t, "info", cfg.LogLevel)

	opts := cfg.DisplayOptions()
	assert.Equal(t, 64, opts.BucketCount)
	assert.Equal(t, 32, opts.InterestingRatio)
}

func TestLoadYAML(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
windowSize: 8192
barScale: 60
notation: letter
engine: gonum
source: tone
toneHz: 329.6
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 8192, cfg.WindowSize)
	assert.Equal(t, 60.0, cfg.BarScale)
	assert.Equal(t, "letter", cfg.Notation)
	assert.Equal(t, "gonum", cfg.Engine)
	assert.Equal(t, SourceTone, cfg.Source)
	assert.InDelta(t, 329.6, cfg.ToneHz, 1e-9)
	// Untouched keys keep their defaults.
	assert.Equal(t, 64, cfg.DisplayBucketCount)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny window", func(c *Config) { c.WindowSize = 1 }},
		{"no buckets", func(c *Config) { c.DisplayBucketCount = 0 }},
		{"ratio too small", func(c *Config) { c.InterestingRatio = 1 }},
		{"prefix smaller than buckets", func(c *Config) { c.DisplayBucketCount = 256 }},
		{"zero scale", func(c *Config) { c.BarScale = 0 }},
		{"zero queue", func(c *Config) { c.QueueDepth = 0 }},
		{"bad engine", func(c *Config) { c.Engine = "fftw" }},
		{"bad notation", func(c *Config) { c.Notation = "numeric" }},
		{"bad source", func(c *Config) { c.Source = "file" }},
		{"bad tone", func(c *Config) { c.Source = SourceTone; c.ToneHz = -1 }},
		{"bad tone rate", func(c *Config) { c.Source = SourceTone; c.ToneSampleRate = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
