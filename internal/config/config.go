// Package config defines the notefig configuration model and its loader.
// Configuration is layered: defaults, then a YAML config file, then
// NOTEFIG_* environment variables, then command-line flags.
package config

import (
	"fmt"
	"time"

	"github.com/notefig/notefig/internal/blocks"
	"github.com/notefig/notefig/internal/pipeline"
	"github.com/notefig/notefig/internal/vision"
)

// Config represents the complete configuration for the notefig application.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Figure extraction settings
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract" json:"extract"`

	// Vision backend settings
	Vision vision.Config `mapstructure:"vision" yaml:"vision" json:"vision"`

	// Content block synthesis settings
	Blocks BlocksConfig `mapstructure:"blocks" yaml:"blocks" json:"blocks"`

	// HTTP server settings (serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing settings
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ExtractConfig contains figure extraction settings.
type ExtractConfig struct {
	OutputDir      string  `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	PaddingPercent float64 `mapstructure:"padding_percent" yaml:"padding_percent" json:"padding_percent"`
	JPEGQuality    int     `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
	MaxPixels      int64   `mapstructure:"max_pixels" yaml:"max_pixels" json:"max_pixels"`
}

// BlocksConfig overrides the synthesizer tables. Empty fields keep the
// built-in defaults.
type BlocksConfig struct {
	EmojiRules    []blocks.EmojiRule `mapstructure:"emoji_rules" yaml:"emoji_rules" json:"emoji_rules"`
	ChartTerms    []string           `mapstructure:"chart_terms" yaml:"chart_terms" json:"chart_terms"`
	TypeEmoji     map[string]string  `mapstructure:"type_emoji" yaml:"type_emoji" json:"type_emoji"`
	ChartsHeading string             `mapstructure:"charts_heading" yaml:"charts_heading" json:"charts_heading"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	pcfg := pipeline.DefaultConfig()
	return Config{
		LogLevel: "info",
		Extract: ExtractConfig{
			OutputDir:      pcfg.OutputDir,
			PaddingPercent: pcfg.PaddingPercent,
			JPEGQuality:    pcfg.JPEGQuality,
			MaxPixels:      pcfg.MaxPixels,
		},
		Vision: vision.DefaultConfig(),
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      120,
			ShutdownTimeout: 10,
		},
		Batch: BatchConfig{Workers: 0},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.Extract.PaddingPercent < 0 {
		return fmt.Errorf("invalid extract.padding_percent: %.2f (must be >= 0)", c.Extract.PaddingPercent)
	}
	if c.Extract.JPEGQuality < 0 || c.Extract.JPEGQuality > 100 {
		return fmt.Errorf("invalid extract.jpeg_quality: %d (must be between 0 and 100)", c.Extract.JPEGQuality)
	}
	if c.Extract.MaxPixels < 0 {
		return fmt.Errorf("invalid extract.max_pixels: %d (must be >= 0)", c.Extract.MaxPixels)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid server.max_upload_mb: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server.timeout_sec: %d (must be positive)", c.Server.TimeoutSec)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("invalid batch.workers: %d (must be >= 0)", c.Batch.Workers)
	}
	if c.Vision.Timeout < 0 {
		return fmt.Errorf("invalid vision.timeout: %s (must be >= 0)", c.Vision.Timeout)
	}
	return nil
}

// ToPipelineConfig converts extraction settings to a pipeline config.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		OutputDir:      c.Extract.OutputDir,
		PaddingPercent: c.Extract.PaddingPercent,
		JPEGQuality:    c.Extract.JPEGQuality,
		MaxPixels:      c.Extract.MaxPixels,
	}
}

// Tables merges the block overrides with the built-in defaults.
func (c *Config) Tables() blocks.Tables {
	t := blocks.DefaultTables()
	if len(c.Blocks.EmojiRules) > 0 {
		t.EmojiRules = c.Blocks.EmojiRules
	}
	if len(c.Blocks.ChartTerms) > 0 {
		t.ChartTerms = c.Blocks.ChartTerms
	}
	if len(c.Blocks.TypeEmoji) > 0 {
		t.TypeEmoji = c.Blocks.TypeEmoji
	}
	if c.Blocks.ChartsHeading != "" {
		t.ChartsHeading = c.Blocks.ChartsHeading
	}
	return t
}

// VisionTimeout returns the backend timeout, falling back to the default.
func (c *Config) VisionTimeout() time.Duration {
	if c.Vision.Timeout > 0 {
		return c.Vision.Timeout
	}
	return vision.DefaultConfig().Timeout
}
