package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when no analysis is stored under a key.
	ErrNotFound = errors.New("analysis not found")
)
