package config

import (
	"errors"
)

// Sentinel error kinds for this package, checkable with errors.Is.
var (
	// ErrInvalidConfig marks configuration that parsed but failed
	// validation, e.g. a target level outside the 1-5 scale.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadConfig marks failures reading or decoding config sources.
	ErrLoadConfig = errors.New("load config failed")
)
