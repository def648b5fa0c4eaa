package competency

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrInvalidCatalog  = errors.New("invalid competency catalog")
	ErrUnknownCluster  = errors.New("unknown cluster")
	ErrEmptyCluster    = errors.New("cluster has no scores")
	ErrScoreOutOfRange = errors.New("raw score out of range")
)
