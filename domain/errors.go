package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeInvalid          ErrorCode = "INVALID"
	ErrCodeRepository       ErrorCode = "REPOSITORY"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal         ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
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

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound reports an absent task key.
func NotFound(format string, args ...interface{}) *Error {
	return NewError(ErrCodeNotFound, fmt.Sprintf(format, args...))
}

// ValidationFailure reports structural constraint violations of an inbound record.
func ValidationFailure(violations []string) *Error {
	msg := "Validation failed:"
	for _, v := range violations {
		msg += " " + v + ";"
	}
	return NewError(ErrCodeInvalid, msg)
}

// RepositoryFailure is a store-level error on a single operation.
type RepositoryFailure struct {
	Operation string
	Key       Key
	Message   string
	Err       error
}

func (e *RepositoryFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RepositoryFailure) Unwrap() error {
	return e.Err
}

// NewRepositoryFailure wraps a store error for operation on key.
func NewRepositoryFailure(operation string, key Key, message string, err error) *RepositoryFailure {
	return &RepositoryFailure{
		Operation: operation,
		Key:       key,
		Message:   message,
		Err:       err,
	}
}

var (
	ErrMethodNotAllowed = NewError(ErrCodeMethodNotAllowed, "Method not allowed")
	ErrMissingSortKey   = errors.New("deadline sort key is required")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	if code == ErrCodeRepository {
		var rErr *RepositoryFailure
		return errors.As(err, &rErr)
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// MessageOf returns the client-facing message of a classified error.
func MessageOf(err error) string {
	var rErr *RepositoryFailure
	if errors.As(err, &rErr) {
		return rErr.Message
	}
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Message
	}
	return err.Error()
}
