package domain

import "errors"

// Sentinel errors shared across modules. Handlers translate these to HTTP
// status codes with errors.Is; everything else is a 500.
var (
	// ErrNotFound signals that a POD, project or user is absent from the
	// backing data. Never retried.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput signals an out-of-range request parameter. Rejected
	// before any computation starts.
	ErrInvalidInput = errors.New("invalid input")
)
