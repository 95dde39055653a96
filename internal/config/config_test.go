package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notefig/notefig/internal/blocks"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "temp_image_storage", cfg.Extract.OutputDir)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.Vision.Model)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"negative padding", func(c *Config) { c.Extract.PaddingPercent = -1 }},
		{"quality above 100", func(c *Config) { c.Extract.JPEGQuality = 101 }},
		{"negative max pixels", func(c *Config) { c.Extract.MaxPixels = -1 }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"zero timeout", func(c *Config) { c.Server.TimeoutSec = 0 }},
		{"negative workers", func(c *Config) { c.Batch.Workers = -2 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.OutputDir = "/tmp/figs"
	cfg.Extract.PaddingPercent = 8

	pcfg := cfg.ToPipelineConfig()
	assert.Equal(t, "/tmp/figs", pcfg.OutputDir)
	assert.InDelta(t, 8.0, pcfg.PaddingPercent, 1e-9)
	assert.Equal(t, cfg.Extract.MaxPixels, pcfg.MaxPixels)
}

func TestTablesMergeWithDefaults(t *testing.T) {
	cfg := DefaultConfig()
	tables := cfg.Tables()
	assert.Equal(t, blocks.DefaultTables().ChartsHeading, tables.ChartsHeading)

	cfg.Blocks.ChartsHeading = "Visuals"
	cfg.Blocks.ChartTerms = []string{"matrix"}
	tables = cfg.Tables()
	assert.Equal(t, "Visuals", tables.ChartsHeading)
	assert.Equal(t, []string{"matrix"}, tables.ChartTerms)
	// Unset fields keep defaults.
	assert.NotEmpty(t, tables.EmojiRules)
	assert.Equal(t, "📊", tables.ChartIcon)
}
