package sqlitevec

import "errors"

var (
	// ErrCollectionNotFound is returned when a collection was never created.
	ErrCollectionNotFound = errors.New("sqlitevec: collection not found")

	// ErrEntryNotFound is returned by Collection.Get for unknown ids.
	ErrEntryNotFound = errors.New("sqlitevec: entry not found")

	// ErrDimensionMismatch indicates an embedding length differs from the collection's.
	ErrDimensionMismatch = errors.New("sqlitevec: embedding dimension mismatch")
)
