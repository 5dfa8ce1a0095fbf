package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrUnauthorized
	ErrStoreUnavailable
	ErrNotification
	ErrInternal
)

// Error constructors
func NewNotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func NewValidation(message string, err error) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
		Err:     err,
	}
}

func NewUnauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: message,
		Err:     err,
	}
}

// NewStoreUnavailable marks a registry or alert store failure. Unlike
// not-found, it aborts processing of the current message and is eligible
// for transport-level redelivery.
func NewStoreUnavailable(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrStoreUnavailable,
		Message: fmt.Sprintf("store unavailable during %s", operation),
		Err:     err,
	}
}

func NewNotification(recipient string, err error) *AppError {
	return &AppError{
		Code:    ErrNotification,
		Message: fmt.Sprintf("notification to %s failed", recipient),
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return IsCode(err, ErrValidation) }

// IsStoreUnavailable reports whether err is a store availability error.
func IsStoreUnavailable(err error) bool { return IsCode(err, ErrStoreUnavailable) }
