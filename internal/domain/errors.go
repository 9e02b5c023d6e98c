package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks input rejected before any network call.
	ErrValidation = errors.New("validation failed")
)
