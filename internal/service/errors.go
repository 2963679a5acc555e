package service

import "errors"

// Error taxonomy surfaced to callers. The web layer maps these onto HTTP
// statuses; none of them is ever retried internally, and deleting an
// already-deleted id reports ErrNotFound rather than succeeding quietly.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
