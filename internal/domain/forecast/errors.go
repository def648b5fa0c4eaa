package forecast

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrInsufficientHistory = errors.New("insufficient history for forecast")
	ErrShapeMismatch       = errors.New("observation vectors differ in length")
)
