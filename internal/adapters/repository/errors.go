package repository

import "errors"

// Sentinel kinds for history store errors.
var (
	ErrNotFound  = errors.New("record not found")
	ErrBadRecord = errors.New("invalid history record")
)
