package storage

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a record with the same key exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidLink is returned when a link would nest households.
	ErrInvalidLink = errors.New("invalid link")
)
