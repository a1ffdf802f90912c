// Package apperr defines the error taxonomy shared by all registry services.
//
// Every service-layer failure is classified as one of four kinds:
// validation (bad input), not-found (zero or ambiguous lookups), bad
// gateway (upstream vendor failure) or internal (everything else). Handlers
// translate the kind into the HTTP status carried by the response envelope.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a service failure.
type Kind int

const (
	// KindInternal is an unexpected failure caught at a function boundary.
	KindInternal Kind = iota

	// KindValidation is a bad input shape or value.
	KindValidation

	// KindNotFound is a lookup that resolved to zero or multiple records.
	KindNotFound

	// KindBadGateway is an upstream vendor failure.
	KindBadGateway
)

// Error is a classified service error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound creates a not-found error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// BadGateway creates a bad-gateway error wrapping the vendor failure.
func BadGateway(msg string, err error) *Error {
	return &Error{Kind: KindBadGateway, Message: msg, Err: err}
}

// Internal wraps an unexpected error.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status()
	}
	return http.StatusInternalServerError
}

// MessageOf returns the classified message for err, or a generic message
// for unclassified errors so raw internals never reach a client.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal Server Error"
}
