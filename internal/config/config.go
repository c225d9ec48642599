package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override configuration file values. The API key
// in particular should come from the environment (or a .env file) rather
// than the YAML file.
const (
	EnvTranscriptionEndpoint = "LISTENER_TRANSCRIPTION_ENDPOINT"
	EnvTranscriptionAPIKey   = "LISTENER_TRANSCRIPTION_API_KEY"
)

// Config represents the complete service configuration
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Capture       CaptureConfig       `yaml:"capture"`
	Buffer        BufferConfig        `yaml:"buffer"`
	Transcription TranscriptionConfig `yaml:"transcription"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// HTTPConfig contains HTTP API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
}

// CaptureConfig contains capture device parameters
type CaptureConfig struct {
	Device     string `yaml:"device"`      // substring of the device name; empty = default device
	SampleRate int    `yaml:"sample_rate"` // Hz, fixed per capture session
}

// BufferConfig contains rolling buffer parameters
type BufferConfig struct {
	RetentionSeconds     float64 `yaml:"retention_seconds"`      // memory ceiling, fixed
	DefaultExportSeconds float64 `yaml:"default_export_seconds"` // used when a request names no window
}

// TranscriptionConfig contains transcription API configuration
type TranscriptionConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
	Timeout  int    `yaml:"timeout"` // seconds
	Language string `yaml:"language"`
	Model    string `yaml:"model"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads the configuration file, applies environment overrides, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// applyEnvOverrides lets the environment win over the file for values that
// are deployment secrets or per-host settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvTranscriptionEndpoint); v != "" {
		c.Transcription.Endpoint = v
	}
	if v := os.Getenv(EnvTranscriptionAPIKey); v != "" {
		c.Transcription.APIKey = v
	}
}

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Buffer.Validate(); err != nil {
		return fmt.Errorf("buffer config: %w", err)
	}

	if err := c.Transcription.Validate(); err != nil {
		return fmt.Errorf("transcription config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates HTTP configuration
func (h *HTTPConfig) Validate() error {
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", h.Port)
	}

	if h.Address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	return nil
}

// Validate validates capture configuration
func (c *CaptureConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.SampleRate)
	}

	return nil
}

// Validate validates buffer configuration
func (b *BufferConfig) Validate() error {
	if b.RetentionSeconds <= 0 {
		return fmt.Errorf("retention_seconds must be positive, got %f", b.RetentionSeconds)
	}

	if b.DefaultExportSeconds <= 0 {
		return fmt.Errorf("default_export_seconds must be positive, got %f", b.DefaultExportSeconds)
	}

	if b.DefaultExportSeconds > b.RetentionSeconds {
		return fmt.Errorf("default_export_seconds (%f) must not exceed retention_seconds (%f)",
			b.DefaultExportSeconds, b.RetentionSeconds)
	}

	return nil
}

// Validate validates transcription configuration
func (t *TranscriptionConfig) Validate() error {
	if t.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	if t.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", t.Timeout)
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}

// GetTimeoutDuration returns the transcription timeout as a time.Duration
func (t *TranscriptionConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(t.Timeout) * time.Second
}
