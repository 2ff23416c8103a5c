package model

import "errors"

// Error taxonomy. Store and workflow code wraps these sentinels so the API
// layer can map them to response codes with errors.Is.
var (
	// ErrValidation is returned for missing or malformed required input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller lacks ownership or role.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when an operation is not legal for the
	// record's current status.
	ErrInvalidState = errors.New("invalid state")
)
