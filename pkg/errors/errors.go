// Package errors provides structured error types for radials.
//
// Every failure the layout pipeline can raise carries a machine-readable
// [Code]. Hosts classify errors with [Is] or [GetCode] and display them with
// [Title] and [UserMessage], so a widget can report a failed update without
// knowing which stage produced it.
//
// # Error Codes
//
// The layout taxonomy has three codes that a host is expected to surface:
//   - MISSING_FIELDS: fewer category/metric fields than the layout requires
//   - NO_VALID_DATA: every row was dropped during normalization
//   - INVALID_CONFIGURATION: an option is out of range or inconsistent
//
// The remaining codes cover the CLI and HTTP surfaces (bad input files,
// unsupported output formats, render failures).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "minRadius %g exceeds maxRadius %g", min, max)
//	if errors.Is(err, errors.ErrCodeInvalidConfiguration) {
//	    // report to the host
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Layout pipeline errors
	ErrCodeMissingFields        Code = "MISSING_FIELDS"
	ErrCodeNoValidData          Code = "NO_VALID_DATA"
	ErrCodeInvalidConfiguration Code = "INVALID_CONFIGURATION"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Output errors
	ErrCodeRenderFailed Code = "RENDER_FAILED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var titles = map[Code]string{
	ErrCodeMissingFields:        "Missing Fields",
	ErrCodeNoValidData:          "No Valid Data",
	ErrCodeInvalidConfiguration: "Invalid Configuration",
	ErrCodeInvalidInput:         "Invalid Input",
	ErrCodeInvalidFormat:        "Invalid Format",
	ErrCodeInvalidPath:          "Invalid Path",
	ErrCodeFileNotFound:         "File Not Found",
	ErrCodeRenderFailed:         "Render Failed",
	ErrCodeUnsupported:          "Unsupported",
}

// Title returns the human-readable heading shown next to an error of the
// given code. Unknown codes get a generic heading.
func Title(code Code) string {
	if t, ok := titles[code]; ok {
		return t
	}
	return "Internal Error"
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
// Returns ErrCodeInternal for errors that carry no code, and empty string
// for nil.
func GetCode(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
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
