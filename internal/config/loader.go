package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "notefig"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "NOTEFIG"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader. It uses the global viper
// instance so cobra flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables and defaults,
// then validates it.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// addConfigPaths registers the search locations for the config file.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "notefig"))
	}
	l.v.AddConfigPath("/etc/notefig")
}

// setupEnvironmentVariables enables NOTEFIG_* overrides, with dots replaced
// by underscores (e.g. NOTEFIG_SERVER_PORT).
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

// setDefaults registers defaults for every configuration key.
func (l *Loader) setDefaults() {
	def := DefaultConfig()

	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)

	l.v.SetDefault("extract.output_dir", def.Extract.OutputDir)
	l.v.SetDefault("extract.padding_percent", def.Extract.PaddingPercent)
	l.v.SetDefault("extract.jpeg_quality", def.Extract.JPEGQuality)
	l.v.SetDefault("extract.max_pixels", def.Extract.MaxPixels)

	l.v.SetDefault("vision.base_url", def.Vision.BaseURL)
	// Keys without non-zero defaults still need registering, otherwise
	// Unmarshal never sees their env-only values.
	l.v.SetDefault("vision.api_key", def.Vision.APIKey)
	l.v.SetDefault("vision.model", def.Vision.Model)
	l.v.SetDefault("vision.prompt", def.Vision.Prompt)
	l.v.SetDefault("vision.max_tokens", def.Vision.MaxTokens)
	l.v.SetDefault("vision.timeout", def.Vision.Timeout)

	l.v.SetDefault("server.host", def.Server.Host)
	l.v.SetDefault("server.port", def.Server.Port)
	l.v.SetDefault("server.cors_origin", def.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", def.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", def.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)

	l.v.SetDefault("batch.workers", def.Batch.Workers)
}

// WriteDefault writes the default configuration as YAML to path, refusing to
// overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	def := DefaultConfig()
	data, err := yaml.Marshal(&def)
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
