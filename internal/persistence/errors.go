package persistence

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("persistence: record not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation indicates the record failed a storage constraint.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)
