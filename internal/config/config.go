// Package config defines service configuration structures and loading hooks.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers a YAML file and environment variables over those defaults.
//   - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/licmaster/internal/adapters/ingest"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of linkage workers per reconcile run.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the name-group queue feeding the workers.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize sets how many batch IDs are remembered for idempotency.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxPageLimit caps GET /master?limit.
	MaxPageLimit int `koanf:"max_page_limit"`

	// RequireLicenseDate drops records without a license date at ingest.
	RequireLicenseDate bool `koanf:"require_license_date"`

	// SQLitePath persists the master lists when set; otherwise they live in memory.
	SQLitePath string `koanf:"sqlite_path"`

	// OutputDir is where the reconcile CLI writes its CSV files.
	OutputDir string `koanf:"output_dir"`

	// ReconcileOnStart runs one reconcile over Sources when the server starts.
	ReconcileOnStart bool `koanf:"reconcile_on_start"`

	// Sources lists the registry exports read on every reconcile.
	Sources []ingest.Source `koanf:"sources"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		WorkerCount:        runtime.NumCPU(),
		QueueSize:          10_000,
		DedupeSize:         50_000,
		MaxPageLimit:       1000,
		RequireLicenseDate: true,
		OutputDir:          ".",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.DedupeSize < 1:
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	case c.MaxPageLimit < 1:
		return fmt.Errorf("%w: max_page_limit must be positive", ErrInvalidConfig)
	}
	for i, src := range c.Sources {
		if _, err := ingest.MappingFor(src.State); err != nil {
			return fmt.Errorf("%w: sources[%d]: %w", ErrInvalidConfig, i, err)
		}
		if src.Path == "" {
			return fmt.Errorf("%w: sources[%d]: path must not be empty", ErrInvalidConfig, i)
		}
		if _, err := ingest.FormatOf(src.Path, src.Format); err != nil {
			return fmt.Errorf("%w: sources[%d]: %w", ErrInvalidConfig, i, err)
		}
	}
	return nil
}
