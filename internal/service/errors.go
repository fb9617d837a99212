package service

import "errors"

// Sentinel errors services return, wrapped with context via %w.
// Handlers map them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)
