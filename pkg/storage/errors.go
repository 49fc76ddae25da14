package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a record does not exist or is outside
	// the client scope of the context.
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned when a record with the same ID or unique key
	// already exists.
	ErrConflict = errors.New("record already exists")
)
