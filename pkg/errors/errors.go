// Package errors provides structured error types for rigsnap.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the library
//   - Machine-readable codes so rejections can be shown without parsing text
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes mirror the failure taxonomy of the attachment engine:
//   - INCOMPATIBLE_SNAP_POINTS: the compatibility rules refused the pair
//   - MISSING_SNAP_POINT / MISSING_COMPONENT: stale ids in a snapshot
//   - SOLVER_ALIGNMENT_FAILURE: the solved transform did not align (malformed data)
//   - DEGENERATE_ROOM: a room with a non-positive extent
//   - INVALID_*: input validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMissingSnapPoint, "snap point %q not found", id)
//	if errors.Is(err, errors.ErrCodeMissingSnapPoint) {
//	    // clear the stale selection
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidCatalog, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Attachment outcomes
	ErrCodeIncompatible      Code = "INCOMPATIBLE_SNAP_POINTS"
	ErrCodeMissingSnapPoint  Code = "MISSING_SNAP_POINT"
	ErrCodeMissingComponent  Code = "MISSING_COMPONENT"
	ErrCodeSnapPointOccupied Code = "SNAP_POINT_OCCUPIED"
	ErrCodeSolverAlignment   Code = "SOLVER_ALIGNMENT_FAILURE"
	ErrCodeDegenerateRoom    Code = "DEGENERATE_ROOM"

	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidID      Code = "INVALID_ID"
	ErrCodeInvalidCatalog Code = "INVALID_CATALOGUE"
	ErrCodeInvalidScene   Code = "INVALID_SCENE"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeTemplateNotFound Code = "TEMPLATE_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
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
	return err.Error()
}

// IsRecoverable reports whether err is an expected interaction outcome that
// leaves all state untouched (an incompatible pair or a stale id). Solver
// alignment failures and internal errors are not recoverable.
func IsRecoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeIncompatible, ErrCodeMissingSnapPoint, ErrCodeMissingComponent,
		ErrCodeSnapPointOccupied, ErrCodeTemplateNotFound:
		return true
	}
	return false
}
