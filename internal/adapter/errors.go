package adapter

import "errors"

// Sentinel errors mapped from store responses by mapHTTPError. Callers
// match them with errors.Is.
var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("tenant unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrTooManyRequests     = errors.New("rate limited")
	ErrInternalServerError = errors.New("store internal error")
	ErrBadGateway          = errors.New("bad gateway")

	// ErrCircuitOpen is returned without issuing a request while the host
	// circuit is cooling down after repeated transport failures.
	ErrCircuitOpen = errors.New("circuit open")
)
