package model

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrInvalidModel = errors.New("invalid model artifact")
	ErrLoadModel    = errors.New("load model artifact failed")
)
