// Package domainerrors defines the domain error taxonomy shared by services,
// stores, and transport. Services return coded errors; the HTTP layer
// translates them exactly once. Conventionally imported as dErrors.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of domain failure. Each code maps to a distinct
// required caller action (fix input, refresh the view, pick another target).
type Code string

const (
	// CodeNotFound means a referenced id does not exist.
	CodeNotFound Code = "not_found"
	// CodeValidation means malformed input or a dangling reference.
	CodeValidation Code = "validation_error"
	// CodeConflict means a state precondition was violated by a different
	// entity (business already owned, duplicate pending claim).
	CodeConflict Code = "conflict"
	// CodeAlreadyResolved means this specific request was already decided.
	// Distinct from CodeConflict so callers can refresh instead of retrying.
	CodeAlreadyResolved Code = "already_resolved"

	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeUnauthorized Code = "unauthorized"
	CodeForbidden    Code = "forbidden"
	CodeRateLimited  Code = "rate_limited"
	CodeTimeout      Code = "timeout"
	CodeInternal     Code = "internal"
)

// Error is a coded domain error. Construct via New or Wrap.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for call-site readability.
func Is(err error, code Code) bool { return HasCode(err, code) }

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code to an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation, CodeInvalidInput, CodeBadRequest:
		return http.StatusBadRequest
	case CodeConflict, CodeAlreadyResolved:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
