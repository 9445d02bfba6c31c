// Package apperror defines the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	InvalidInput  Kind = "INVALID_INPUT"
	UpstreamError Kind = "UPSTREAM_ERROR"
	AuthRequired  Kind = "AUTH_REQUIRED"
	NotFound      Kind = "NOT_FOUND"
	StoreError    Kind = "STORE_ERROR"
	Conflict      Kind = "CONFLICT"
)

// Error is a failure of a single operation. Details carries best-effort
// diagnostics (for example the upstream API error body).
type Error struct {
	Kind    Kind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Invalid(message string) *Error {
	return New(InvalidInput, message)
}

func Upstream(message string, details any, err error) *Error {
	return &Error{Kind: UpstreamError, Message: message, Details: details, Err: err}
}

func Unauthenticated(message string) *Error {
	return New(AuthRequired, message)
}

func Missing(message string) *Error {
	return New(NotFound, message)
}

func Store(message string, err error) *Error {
	return Wrap(StoreError, message, err)
}

// KindOf returns the kind of err, or StoreError for errors outside the taxonomy.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return StoreError
}

// Is reports whether err belongs to kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// Status maps a kind to the HTTP status code it is surfaced as.
func Status(kind Kind) int {
	switch kind {
	case InvalidInput:
		return http.StatusBadRequest
	case AuthRequired:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
