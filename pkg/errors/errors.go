// Package errors defines the typed error envelope returned by the API.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error pairs a stable machine-readable code with the HTTP status the API
// responds with. Err holds an optional underlying cause that is never
// serialized to clients.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds a standalone typed error.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap builds a typed error around an underlying cause.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Clone copies a typed error, optionally overriding its message. The
// predefined sentinels below must never be mutated in place.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// FromError normalises any error into an *Error. Unknown errors map to
// ErrInternal while keeping the cause available through Unwrap.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Generic failures.
var (
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Domain failures.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotAssistant       = New("NOT_ASSISTANT", http.StatusForbidden, "user must be an assistant")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)
