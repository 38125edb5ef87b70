package resock

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// ErrorNotConnected means an operation needed a live connection and
	// there was none. Never retried; nothing is queued.
	ErrorNotConnected

	// ErrorAlreadyConnected means Open was called while a transport exists.
	ErrorAlreadyConnected

	// ErrorClosed means the client was explicitly closed. Close is terminal.
	ErrorClosed

	// ErrorInvalidConfig means a configuration value failed validation.
	ErrorInvalidConfig

	// ErrorTransport wraps a failure reported by the underlying transport.
	ErrorTransport
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorNotConnected:
		return "not_connected"
	case ErrorAlreadyConnected:
		return "already_connected"
	case ErrorClosed:
		return "closed"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorTransport:
		return "transport_error"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// Error is a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is comparison by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with an Error.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Wrapped: err}
}

// IsNotConnected checks whether err is the invalid-state error returned when
// an operation required a live connection.
func IsNotConnected(err error) bool {
	var re *Error
	if !errors.As(err, &re) {
		return false
	}
	return re.Code == ErrorNotConnected
}
