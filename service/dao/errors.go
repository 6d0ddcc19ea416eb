package dao

import "errors"

// Common, reusable DAO errors.  Using sentinel variables allows callers to
// reliably detect error conditions via errors.Is/As instead of brittle string
// comparisons.

var (
	// ErrNotFound is returned when the requested entity does not exist in the
	// underlying storage.
	ErrNotFound = errors.New("dao: not found")

	// ErrDuplicateID is returned when an entity with the same key is already
	// registered.
	ErrDuplicateID = errors.New("dao: duplicate id")

	// ErrNilEntity is returned when the caller attempts to register a nil
	// pointer.
	ErrNilEntity = errors.New("dao: nil entity")
)
