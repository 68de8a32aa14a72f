package xerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common reusable application errors
var (
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrInvalidInput     = errors.New("invalid input")
	ErrSessionExpired   = errors.New("session expired or invalid")
	ErrNotConfigured    = errors.New("not configured")
	ErrAuthNotAvailable = errors.New("auth not available")
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConfiguration
	KindProvider
	KindIO
	KindUnauthorized
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindProvider:
		return "provider"
	case KindIO:
		return "io"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error carries a Kind, a client-safe message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a categorized error.
func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation builds a 400-class error.
func Validation(message string) *Error {
	return New(KindValidation, message, ErrInvalidInput)
}

// Configuration builds an error for a missing required setting.
func Configuration(message string) *Error {
	return New(KindConfiguration, message, ErrNotConfigured)
}

// Provider wraps an external service failure.
func Provider(message string, err error) *Error {
	return New(KindProvider, message, err)
}

// IO wraps a file read or write failure.
func IO(message string, err error) *Error {
	return New(KindIO, message, err)
}

// KindOf returns the Kind of the first categorized error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrInvalidInput):
		return KindValidation
	case errors.Is(err, ErrNotConfigured):
		return KindConfiguration
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	}
	return KindUnknown
}

// MessageOf returns the client-safe message of a categorized error, or fallback.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return fallback
}

// HTTPStatus maps an error to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
