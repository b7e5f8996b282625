// Package errors provides structured error types for pinset.
//
// Errors carry a machine-readable [Code] alongside the human-readable
// message, so the CLI can pick exit behavior and the HTTP API can map
// failures to response bodies without string matching.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidPin, "malformed pin: %s", line)
//	if errors.Is(err, errors.ErrCodeInvalidPin) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidPin      Code = "INVALID_PIN"
	ErrCodeInvalidPackage  Code = "INVALID_PACKAGE"
	ErrCodeInvalidVersion  Code = "INVALID_VERSION"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"

	// Resource not found errors
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"
	ErrCodeReleaseNotFound Code = "RELEASE_NOT_FOUND"
	ErrCodeReportNotFound  Code = "REPORT_NOT_FOUND"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error with the given code around an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether any error in err's chain carries the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error. Returns the empty
// string when no [Error] is in the chain.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix for [Error]
// values, and err.Error() for anything else.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// RateLimitedError reports a throttled registry response.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
