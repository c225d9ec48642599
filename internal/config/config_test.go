package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Port:    8080,
			Address: "0.0.0.0",
		},
		Capture: CaptureConfig{
			Device:     "",
			SampleRate: 16000,
		},
		Buffer: BufferConfig{
			RetentionSeconds:     120,
			DefaultExportSeconds: 30,
		},
		Transcription: TranscriptionConfig{
			Endpoint: "https://api.example.com/transcribe",
			APIKey:   "test-key",
			Timeout:  30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "invalid http port",
			mutate:      func(c *Config) { c.HTTP.Port = 0 },
			expectError: true,
			errorMsg:    "port must be between",
		},
		{
			name:        "empty http address",
			mutate:      func(c *Config) { c.HTTP.Address = "" },
			expectError: true,
			errorMsg:    "address cannot be empty",
		},
		{
			name:        "zero sample rate",
			mutate:      func(c *Config) { c.Capture.SampleRate = 0 },
			expectError: true,
			errorMsg:    "sample_rate must be positive",
		},
		{
			name:        "negative sample rate",
			mutate:      func(c *Config) { c.Capture.SampleRate = -16000 },
			expectError: true,
			errorMsg:    "sample_rate must be positive",
		},
		{
			name:        "zero retention",
			mutate:      func(c *Config) { c.Buffer.RetentionSeconds = 0 },
			expectError: true,
			errorMsg:    "retention_seconds must be positive",
		},
		{
			name:        "zero default export",
			mutate:      func(c *Config) { c.Buffer.DefaultExportSeconds = 0 },
			expectError: true,
			errorMsg:    "default_export_seconds must be positive",
		},
		{
			name:        "export window longer than retention",
			mutate:      func(c *Config) { c.Buffer.DefaultExportSeconds = 500 },
			expectError: true,
			errorMsg:    "must not exceed retention_seconds",
		},
		{
			name:        "empty transcription endpoint",
			mutate:      func(c *Config) { c.Transcription.Endpoint = "" },
			expectError: true,
			errorMsg:    "endpoint cannot be empty",
		},
		{
			name:        "zero transcription timeout",
			mutate:      func(c *Config) { c.Transcription.Timeout = 0 },
			expectError: true,
			errorMsg:    "timeout must be at least",
		},
		{
			name:        "invalid log level",
			mutate:      func(c *Config) { c.Logging.Level = "trace" },
			expectError: true,
			errorMsg:    "level must be one of",
		},
		{
			name:        "invalid log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(&config)

			err := config.Validate()

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
		})
	}
}

func TestConfigLoad(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		name        string
		configYAML  string
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid file",
			configYAML: `
http:
  port: 8080
  address: "0.0.0.0"
capture:
  sample_rate: 16000
buffer:
  retention_seconds: 120
  default_export_seconds: 30
transcription:
  endpoint: "https://api.example.com/transcribe"
  api_key: "test-key"
  timeout: 30
logging:
  level: "info"
  format: "json"
  output: "stdout"
`,
			expectError: false,
		},
		{
			name:        "malformed yaml",
			configYAML:  "http: [not a mapping",
			expectError: true,
			errorMsg:    "failed to parse",
		},
		{
			name: "missing required fields",
			configYAML: `
http:
  port: 8080
  # missing address
`,
			expectError: true,
			errorMsg:    "address cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(tempDir, "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.configYAML), 0644); err != nil {
				t.Fatalf("Failed to create test config file: %v", err)
			}

			config, err := Load(configPath)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				} else if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error to contain '%s', got '%s'", tt.errorMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("Expected no error but got: %v", err)
				} else if config == nil {
					t.Errorf("Expected config to be loaded but got nil")
				}
			}
		})
	}
}

func TestConfigLoadNonexistentFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Errorf("Expected error for nonexistent file but got none")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected error about reading file, got: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	tempDir := t.TempDir()

	configYAML := `
http:
  port: 8080
  address: "0.0.0.0"
capture:
  sample_rate: 16000
buffer:
  retention_seconds: 120
  default_export_seconds: 30
transcription:
  endpoint: "https://file.example.com/transcribe"
  api_key: "file-key"
  timeout: 30
logging:
  level: "info"
  format: "json"
  output: "stdout"
`

	configPath := filepath.Join(tempDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	t.Setenv(EnvTranscriptionEndpoint, "https://env.example.com/transcribe")
	t.Setenv(EnvTranscriptionAPIKey, "env-key")

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Transcription.Endpoint != "https://env.example.com/transcribe" {
		t.Errorf("Expected endpoint from environment, got '%s'", config.Transcription.Endpoint)
	}

	if config.Transcription.APIKey != "env-key" {
		t.Errorf("Expected API key from environment, got '%s'", config.Transcription.APIKey)
	}
}

func TestDurationHelpers(t *testing.T) {
	transcription := TranscriptionConfig{
		Timeout: 30,
	}

	if transcription.GetTimeoutDuration() != 30*time.Second {
		t.Errorf("Expected 30 seconds, got %v", transcription.GetTimeoutDuration())
	}
}

func TestLoggingConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config LoggingConfig
		valid  bool
	}{
		{
			name: "valid json to stdout",
			config: LoggingConfig{
				Level:  "info",
				Format: "json",
				Output: "stdout",
			},
			valid: true,
		},
		{
			name: "valid text to stderr",
			config: LoggingConfig{
				Level:  "debug",
				Format: "text",
				Output: "stderr",
			},
			valid: true,
		},
		{
			name: "invalid log level",
			config: LoggingConfig{
				Level:  "trace",
				Format: "json",
				Output: "stdout",
			},
			valid: false,
		},
		{
			name: "invalid format",
			config: LoggingConfig{
				Level:  "info",
				Format: "xml",
				Output: "stdout",
			},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config but got error: %v", err)
			}
			if !tt.valid && err == nil {
				t.Errorf("Expected invalid config but got no error")
			}
		})
	}
}
