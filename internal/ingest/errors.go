package ingest

import "errors"

var (
	// ErrMissingColumn indicates a required header column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedTimestamp indicates a timestamp cell that does not
	// match the DD.MM.YYYY HH:MM contract.
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	// ErrMalformedScore indicates a score cell that is not a number
	// in the 1..5 range.
	ErrMalformedScore = errors.New("malformed score")
	// ErrEmptyInput indicates a table with no data rows.
	ErrEmptyInput = errors.New("empty input table")
)
