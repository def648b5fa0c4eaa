package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if STUFE_CONFIG is set
//  3. env (prefix STUFE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("STUFE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: STUFE_ADDR, STUFE_GLOBAL_TARGET, ...
	// Map env keys like STUFE_GLOBAL_TARGET -> global_target (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("STUFE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "stufe_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.GlobalTarget < 1.0 || c.GlobalTarget > 5.0 {
		return fmt.Errorf("%w: global_target %v outside 1.0-5.0", ErrInvalidConfig, c.GlobalTarget)
	}
	if c.FullyReachedThreshold <= 0 || c.FullyReachedThreshold > 1 {
		return fmt.Errorf("%w: fully_reached_threshold %v outside (0,1]", ErrInvalidConfig, c.FullyReachedThreshold)
	}
	if c.MaxSimilar <= 0 {
		return fmt.Errorf("%w: max_similar must be positive", ErrInvalidConfig)
	}
	if c.HorizonYears <= 0 {
		return fmt.Errorf("%w: horizon_years must be positive", ErrInvalidConfig)
	}
	return nil
}
