// Package errors provides structured error types for canvasflow.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - SHAPE_MISMATCH / DANGLING_REFERENCE: layout and graph construction failures
//   - NOT_FOUND_*: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown export format: %s", name)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Typed layout errors carry their own code
//	err := &errors.ShapeMismatchError{Kind: "barChart", Field: "values", Reason: "length 2, want 3"}
//	errors.Is(err, errors.ErrCodeShapeMismatch) // true
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidID     Code = "INVALID_ID"

	// Layout and graph construction errors
	ErrCodeShapeMismatch     Code = "SHAPE_MISMATCH"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Resource limits
	ErrCodeSessionLimit Code = "SESSION_LIMIT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// ErrCycle is wrapped by a ShapeMismatchError when a description's edge list
// contains a directed cycle where none is allowed.
var ErrCycle = errors.New("graph contains a cycle")

// coder is implemented by every typed error in this package.
type coder interface {
	ErrorCode() Code
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the error's code.
func (e *Error) ErrorCode() Code { return e.Code }

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost coded error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	var c coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var sm *ShapeMismatchError
	if errors.As(err, &sm) {
		return sm.message()
	}
	return err.Error()
}

// ShapeMismatchError reports a malformed or incomplete visualization
// description. It is fatal to the one layout call that produced it and never
// touches existing scene state.
type ShapeMismatchError struct {
	Kind   string // Visualization kind being laid out (e.g. "flowChart")
	Field  string // Offending field path (e.g. "edges[2].target")
	Reason string // What is wrong with the field
	Cause  error  // Underlying error (optional, e.g. ErrCycle)
}

func (e *ShapeMismatchError) message() string {
	msg := fmt.Sprintf("%s: field %q", e.Kind, e.Field)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Error implements the error interface.
func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeShapeMismatch, e.message())
}

// Unwrap returns the underlying cause.
func (e *ShapeMismatchError) Unwrap() error { return e.Cause }

// ErrorCode returns ErrCodeShapeMismatch.
func (e *ShapeMismatchError) ErrorCode() Code { return ErrCodeShapeMismatch }

// ShapeMismatch is a shorthand constructor for ShapeMismatchError.
func ShapeMismatch(kind, field, format string, args ...any) *ShapeMismatchError {
	return &ShapeMismatchError{Kind: kind, Field: field, Reason: fmt.Sprintf(format, args...)}
}

// DanglingReferenceError reports a programmatic attempt to insert an edge
// whose endpoint is not present in the scene.
type DanglingReferenceError struct {
	EdgeID string // Edge being inserted
	NodeID string // Missing endpoint
}

// Error implements the error interface.
func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("%s: edge %q references missing node %q", ErrCodeDanglingReference, e.EdgeID, e.NodeID)
}

// ErrorCode returns ErrCodeDanglingReference.
func (e *DanglingReferenceError) ErrorCode() Code { return ErrCodeDanglingReference }
