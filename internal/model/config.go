package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Brain    BrainConfig    `yaml:"brain"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig controls where local state lives
type DataConfig struct {
	// SQLitePath is the path to the local database file
	SQLitePath string `yaml:"sqlite_path"`

	// LegacyInferencesJSON is imported once at startup if present
	// (records with known ids are skipped)
	LegacyInferencesJSON string `yaml:"legacy_inferences_json"`
}

// BrainConfig controls the local model service used for inference generation
type BrainConfig struct {
	// Provider name: "ollama" (default) or "openai" for any
	// OpenAI-compatible local server (llama.cpp, LM Studio)
	Provider string `yaml:"provider"`

	// Model name (provider-specific)
	Model string `yaml:"model"`

	// BaseURL for the model service
	BaseURL string `yaml:"base_url"`

	// APIKey for OpenAI-compatible servers (unused by ollama)
	APIKey string `yaml:"api_key,omitempty"`

	// Timeout bounds a single generation request
	Timeout time.Duration `yaml:"timeout"`

	// ProbeTimeout bounds the liveness probe
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// ProbeTTL is how long a liveness probe result is trusted, so a
	// batch does one probe instead of one per item
	ProbeTTL time.Duration `yaml:"probe_ttl"`

	// RequestsPerSecond rate-limits live generation calls
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// PipelineConfig controls batch processing
type PipelineConfig struct {
	// BatchSize caps raw items processed per batch trigger
	BatchSize int `yaml:"batch_size"`

	// LintEnabled filters candidates through the quality gate before
	// they reach the triage queue. Off by default: the gate demands
	// falsifier metadata the generator does not attach on its own, so
	// enabling it is an explicit choice.
	LintEnabled bool `yaml:"lint_enabled"`
}

// ServerConfig controls the HTTP API
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level       string `yaml:"level"`       // debug, info, warn, error
	Development bool   `yaml:"development"` // human-readable console encoding
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dataDir := filepath.Join(home, ".selfatlas")

	return Config{
		Data: DataConfig{
			SQLitePath:           filepath.Join(dataDir, "selfatlas.sqlite3"),
			LegacyInferencesJSON: filepath.Join(dataDir, "inferences.json"),
		},
		Brain: BrainConfig{
			Provider:          "ollama",
			Model:             "llama3.2:3b",
			BaseURL:           "http://localhost:11434",
			Timeout:           30 * time.Second,
			ProbeTimeout:      2 * time.Second,
			ProbeTTL:          30 * time.Second,
			RequestsPerSecond: 4,
		},
		Pipeline: PipelineConfig{
			BatchSize:   25,
			LintEnabled: false,
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Development: false,
		},
	}
}
