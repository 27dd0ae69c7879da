package repository

import "errors"

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a write would give two users the same email, ignoring case.
	ErrDuplicateEmail = errors.New("email already in use")
)
