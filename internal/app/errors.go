package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrSessionNotFound  = errors.New("session not found")
	ErrUnknownDimension = errors.New("unknown dimension code")
	ErrInvalidTarget    = errors.New("invalid target level")
)
