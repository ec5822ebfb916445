package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrVersionConflict is returned by Save when the stored version no longer
	// matches the one the caller loaded.
	ErrVersionConflict = errors.New("booking was modified concurrently")
)
