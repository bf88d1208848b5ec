package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedResponse indicates a remote service returned a response
	// missing its expected payload. This is a schema error, not a
	// transient fault: it is never retried and aborts the run.
	ErrMalformedResponse = errors.New("malformed service response")

	// ErrSyncInProgress indicates a sync run is already active.
	ErrSyncInProgress = errors.New("sync already in progress")
)
