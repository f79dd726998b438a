// Package errors provides structured error types for boardview.
//
// Error codes classify failures so the CLI, the terminal viewer and the HTTP
// viewer can react the same way to the same condition:
//
//   - UNAVAILABLE: no board or image is loaded yet. Rendering is suppressed;
//     the user is not shown an error.
//   - PARTIAL_GEOMETRY: one or more board layers failed to parse. The board is
//     still usable with reduced fidelity.
//   - DECODE_FAILURE: a pick-and-place file could not be decoded or has no
//     usable header. Fatal to that load; no partial component list is kept.
//   - UNRESOLVED_DESIGNATOR: a selected designator has no position on the
//     current face. Skipped silently by the highlight engine.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFace, "unknown face %q", s)
//	if errors.Is(err, errors.ErrCodeInvalidFace) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDecodeFailure, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Core conditions
	ErrCodeUnavailable          Code = "UNAVAILABLE"
	ErrCodePartialGeometry      Code = "PARTIAL_GEOMETRY"
	ErrCodeDecodeFailure        Code = "DECODE_FAILURE"
	ErrCodeUnresolvedDesignator Code = "UNRESOLVED_DESIGNATOR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFace   Code = "INVALID_FACE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// IsUserFacing reports whether the error should be surfaced to the user.
// Unavailable and unresolved-designator conditions are expected states of
// the viewer, not failures.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	switch GetCode(err) {
	case ErrCodeUnavailable, ErrCodeUnresolvedDesignator:
		return false
	}
	return true
}
