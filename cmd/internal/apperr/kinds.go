// Package apperr is the error taxonomy shared by stores, services and HTTP handlers.
//
// Every expected failure carries one sentinel kind; Status maps kinds 1:1 to HTTP codes.
package apperr

import "errors"

// Sentinel error kinds (stable for errors.Is and for mapping to API status codes).
var (
	ErrValidation   = errors.New("validation")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not_found")
	ErrConflict     = errors.New("conflict")
	ErrStorage      = errors.New("storage")
)
