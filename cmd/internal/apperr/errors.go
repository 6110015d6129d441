package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// OpError is a typed operation error with a stable Op + Kind contract.
// Msg is shown to clients for 4xx kinds, so it must never carry internals.
type OpError struct {
	Op   string
	Kind error
	Msg  string
	Err  error
}

func (e OpError) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func Validation(op, msg string) error { return OpError{Op: op, Kind: ErrValidation, Msg: msg} }

func Unauthorized(op, msg string) error { return OpError{Op: op, Kind: ErrUnauthorized, Msg: msg} }

func Forbidden(op, msg string) error { return OpError{Op: op, Kind: ErrForbidden, Msg: msg} }

func NotFound(op, msg string) error { return OpError{Op: op, Kind: ErrNotFound, Msg: msg} }

func Conflict(op, msg string) error { return OpError{Op: op, Kind: ErrConflict, Msg: msg} }

// Storage wraps a collaborator failure. The cause is kept for logs only.
func Storage(op string, err error) error {
	return OpError{Op: op, Kind: ErrStorage, Err: err}
}

// Storagef is Storage with a formatted cause.
func Storagef(op, format string, args ...any) error {
	return Storage(op, fmt.Errorf(format, args...))
}

// WithMessage rewrites the client-facing message of an OpError and keeps
// everything else. Non-OpError values are returned unchanged.
func WithMessage(err error, msg string) error {
	var oe OpError
	if !errors.As(err, &oe) {
		return err
	}
	oe.Msg = msg
	return oe
}

// Status maps err to its HTTP status code. Unknown errors are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message is the client-facing text for err. 5xx errors never leak detail.
func Message(err error) string {
	if Status(err) >= http.StatusInternalServerError {
		return "Internal server error"
	}
	var oe OpError
	if errors.As(err, &oe) && oe.Msg != "" {
		return oe.Msg
	}
	return http.StatusText(Status(err))
}

// Op returns the operation name carried by err, or "" if none.
func Op(err error) string {
	var oe OpError
	if errors.As(err, &oe) {
		return oe.Op
	}
	return ""
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }
