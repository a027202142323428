package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidRange marks a range request whose end precedes its start or
	// whose gaps make no forward progress.
	ErrInvalidRange = errors.New("invalid range")

	// ErrAnalyzer wraps failures of the morphological analyzer. These are
	// server-side errors and are never retried by the filter.
	ErrAnalyzer = errors.New("analyzer failure")
)

// IsClientError reports whether err was caused by caller input rather than
// by a failing collaborator.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrInvalidRange)
}
