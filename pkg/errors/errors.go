// Package errors provides structured error types for the counter service.
//
// Every failure that can reach a user carries a machine-readable [Code] so that
// the HTTP layer and the CLI can agree on how to report it:
//   - INVALID_INPUT: missing or malformed request fields, nothing was changed
//   - NOT_FOUND: the counter id is unknown
//   - IMAGE_PROCESSING: an uploaded background could not be decoded
//   - PERSISTENCE: the durable snapshot could not be written; the mutation was dropped
//   - RATE_LIMITED: the client exceeded its request budget
//   - INTERNAL_ERROR: anything else
//
// # Usage
//
//	err := errors.NotFound(id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    http.Error(w, errors.UserMessage(err), err.Code.HTTPStatus())
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePersistence, ioErr, "save snapshot")
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeImageProcessing Code = "IMAGE_PROCESSING"
	ErrCodePersistence     Code = "PERSISTENCE"
	ErrCodeRateLimited     Code = "RATE_LIMITED"
	ErrCodeInternal        Code = "INTERNAL_ERROR"
)

// HTTPStatus returns the response status for c. Client mistakes map to 4xx;
// persistence, internal and uncoded failures are 500.
func (c Code) HTTPStatus() int {
	switch c {
	case ErrCodeInvalidInput, ErrCodeImageProcessing:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a Code, a message fit for users, and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error around cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// NotFound reports an unknown counter id.
func NotFound(id string) *Error {
	return New(ErrCodeNotFound, "counter %q not found", id)
}

// Is reports whether err has the given code. The outermost *Error in the
// chain decides, so re-wrapping under a new code changes the answer.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error, without code or
// cause, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
