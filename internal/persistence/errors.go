package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same identity already exists.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a row violates a CHECK or NOT NULL constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrConflict is returned when a confirmed booking would overlap another confirmed
	// booking for the same room and date. The store enforces this independently of callers.
	ErrConflict = errors.New("persistence: booking overlap")
	// ErrStaleState is returned when a guarded update finds the row in a different status
	// than the caller expected.
	ErrStaleState = errors.New("persistence: stale booking state")
)
