package store

import "errors"

var (
	// ErrNotFound is returned when an operation references an unknown id,
	// or when the pending queue is empty
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID is returned when an inference insert collides with
	// an existing row
	ErrDuplicateID = errors.New("duplicate id")
)
