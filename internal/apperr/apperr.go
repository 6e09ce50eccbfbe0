// Package apperr defines the closed set of error kinds surfaced by the API.
// Every kind maps to exactly one HTTP status code.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error.
type Kind int

// Error kinds. Internal is the zero value so that an unclassified error
// never leaks as a client error.
const (
	Internal Kind = iota
	InvalidInput
	Unauthorized
	NotFound
	Conflict
	PayloadTooLarge
	TooManyRequests
	CorruptData
	StorageUnavailable
)

var kindNames = map[Kind]string{
	Internal:           "internal",
	InvalidInput:       "invalid_input",
	Unauthorized:       "unauthorized",
	NotFound:           "not_found",
	Conflict:           "conflict",
	PayloadTooLarge:    "payload_too_large",
	TooManyRequests:    "too_many_requests",
	CorruptData:        "corrupt_data",
	StorageUnavailable: "storage_unavailable",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// HTTPStatus returns the status code for the kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidInput:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case PayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case TooManyRequests:
		return http.StatusTooManyRequests
	case StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is an application error carrying a kind, a client-safe message and
// an optional internal cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the internal cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error around an internal cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or Internal if err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// MessageOf returns the client-safe message for err.
// Errors that are not *Error get a generic message so internals never leak.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "An internal error occurred"
}
