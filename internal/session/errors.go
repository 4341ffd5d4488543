package session

import "errors"

// Domain errors for the session package.
var (
	// ErrNotFound is returned when a session ID is unknown or has expired.
	ErrNotFound = errors.New("session: not found")

	// ErrKeyNotFound is returned when a state key has never been set.
	ErrKeyNotFound = errors.New("session: key not found")

	// ErrWrongType is returned when a state value has an unexpected type.
	ErrWrongType = errors.New("session: value has wrong type")
)
