// Package config loads runtime settings from the environment.
//
// Settings are not persisted. Each value comes from an environment variable
// with a built-in default, and command-line flags may override it.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ironsheep/image-effects-mcp/internal/logging"
)

// Environment variable names.
const (
	EnvLogLevel     = "IMAGE_FX_LOG_LEVEL"
	EnvWorkers      = "IMAGE_FX_WORKERS"
	EnvHistoryLimit = "IMAGE_FX_HISTORY_LIMIT"
)

// Defaults.
const (
	DefaultLogLevel     = "info"
	DefaultWorkers      = 0 // runtime.NumCPU
	DefaultHistoryLimit = 50
)

// Config holds the engine settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Workers is the number of goroutines that render row bands. 0 selects
	// one per CPU; 1 renders sequentially.
	Workers int

	// HistoryLimit caps the number of undo records kept. 0 keeps all.
	HistoryLimit int
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:     DefaultLogLevel,
		Workers:      DefaultWorkers,
		HistoryLimit: DefaultHistoryLimit,
	}
}

// FromEnv returns the defaults overridden by any environment variables that
// are set. Malformed values are reported, not ignored.
func FromEnv() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvWorkers); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", EnvWorkers, err)
		}
		cfg.Workers = n
	}
	if v, ok := lookup(EnvHistoryLimit); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", EnvHistoryLimit, err)
		}
		cfg.HistoryLimit = n
	}

	return cfg, cfg.Validate()
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history limit must be >= 0, got %d", c.HistoryLimit)
	}
	return nil
}
