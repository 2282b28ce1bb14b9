package domain

import "errors"

var (
	// ErrUnauthorized is returned when a credential is missing or unknown.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound covers absent resources and resources owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals a uniqueness violation such as a duplicate plate.
	ErrConflict = errors.New("conflict")
	// ErrUnprocessable is returned for transitions the current state forbids.
	ErrUnprocessable = errors.New("unprocessable state")
	// ErrValidation is returned for malformed input values.
	ErrValidation = errors.New("validation failed")
)
