// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All loading functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// ModelPath points to the maturity-model artifact (JSON).
	// Empty means the built-in model ships with the binary.
	ModelPath string `koanf:"model_path"`

	// StorePath points to the sqlite history database. Empty selects
	// the in-memory store (histories are lost on restart).
	StorePath string `koanf:"store_path"`

	// CacheTTL bounds staleness of cached history reads.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// GlobalTarget is the default maturity target level (1.0-5.0).
	GlobalTarget float64 `koanf:"global_target"`

	// FullyReachedThreshold is the level-average at or above which a
	// maturity level counts as fully reached.
	FullyReachedThreshold float64 `koanf:"fully_reached_threshold"`

	// MaxSimilar caps the number of neighbors returned by the
	// similarity endpoints.
	MaxSimilar int `koanf:"max_similar"`

	// HorizonYears sets how many years past the last observation the
	// forecast projects.
	HorizonYears int `koanf:"horizon_years"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":9080",
		ModelPath:             "",
		StorePath:             "",
		CacheTTL:              30 * time.Second,
		GlobalTarget:          3.0,
		FullyReachedThreshold: 0.99,
		MaxSimilar:            3,
		HorizonYears:          5,
	}
}
