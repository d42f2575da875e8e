// Package apperr defines the error taxonomy shared by services, repositories
// and handlers. Every business-rule violation is reported as an *Error with a
// machine-readable kind plus a human-readable message; the HTTP layer maps
// kinds to status codes. Infrastructure failures are wrapped as KindInternal
// so callers never have to inspect driver errors.
package apperr

import (
	"errors"
	"net/http"
)

// Kind is the stable machine-readable category of an error.
type Kind string

const (
	KindValidation     Kind = "VALIDATION_ERROR"
	KindNotFound       Kind = "NOT_FOUND"
	KindForbidden      Kind = "FORBIDDEN"
	KindAuthentication Kind = "AUTHENTICATION_ERROR"
	KindConflict       Kind = "CONFLICT"
	KindInternal       Kind = "INTERNAL_ERROR"
)

// Error carries a kind, a caller-facing message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error      { return &Error{Kind: KindForbidden, Message: msg} }
func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps an infrastructure failure. The message stays generic; the
// cause is preserved for logging.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the kind from err, or KindInternal for unknown errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf extracts the caller-facing message from err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// HTTPStatus maps an error kind to its transport status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
