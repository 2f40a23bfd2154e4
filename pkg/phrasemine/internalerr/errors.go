package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrFetch marks network failures, timeouts and non-2xx responses.
	ErrFetch = errors.New("fetch failed")
	// ErrEmptyDocument is returned when cleaned text is empty or whitespace-only.
	ErrEmptyDocument = errors.New("empty document")
	// ErrModelUnavailable is returned when a linguistic model cannot be loaded.
	ErrModelUnavailable = errors.New("linguistic model unavailable")
)
