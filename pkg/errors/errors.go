// Package errors provides the unified error type and factory functions for
// the vademecum answer engine. Every layer (domain, application,
// infrastructure, interfaces) uses AppError as the single carrier for
// structured error information, enabling consistent HTTP responses, logging,
// and metric labels.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the single structured error type used throughout the service.
// It satisfies the standard error interface and supports Go 1.13+ wrapping so
// that errors.Is / errors.As / errors.Unwrap work across all layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeStoreUnavailable, "scroll query failed")
//	return errors.Wrap(err, errors.ErrCodeSerialization, "decode search hit")
type AppError struct {
	// Code is the typed error code identifying the failure category.
	Code ErrorCode

	// Message is the primary human-readable description.
	Message string

	// Detail carries supplementary context (query hints, record ids) that
	// aids debugging without leaking internals to end users.
	Detail string

	// Cause is the underlying error, enabling errors.Is / errors.As
	// traversal of the full chain.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithDetail returns a shallow copy of the receiver with Detail set.
// Safe to call on a nil pointer.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an AppError that wraps an existing error. If err is nil,
// Wrap returns nil so it can be used inline. When err is already an *AppError
// and code is CodeUnknown the original code is preserved, preventing loss of
// the original classification during cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *AppError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code. It is the idiomatic way to check specific failure modes:
//
//	if errors.IsCode(err, errors.ErrCodeStoreUnavailable) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError in err's chain,
// CodeUnknown when none is present, CodeOK for nil. Useful in middleware and
// logging layers that need a single code as a metric label.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// IsStoreUnavailable reports whether err marks a failed or timed-out
// document-store call. Callers are expected to degrade to an empty result.
func IsStoreUnavailable(err error) bool { return IsCode(err, ErrCodeStoreUnavailable) }

// IsNotFound reports whether err carries ErrCodeNotFound.
func IsNotFound(err error) bool { return IsCode(err, ErrCodeNotFound) }

// IsValidation reports whether err carries ErrCodeValidation.
func IsValidation(err error) bool { return IsCode(err, ErrCodeValidation) }

// IsUnauthorized reports whether err carries ErrCodeUnauthorized.
func IsUnauthorized(err error) bool { return IsCode(err, ErrCodeUnauthorized) }
