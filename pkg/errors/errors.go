// Package errors provides structured error types for scatter.
//
// Every error that crosses a package boundary toward the CLI or the HTTP API
// carries a machine-readable [Code]:
//   - INVALID_*: input validation failures
//   - *_NOT_FOUND: missing shapes or documents
//   - NO_METADATA / INVALID_METADATA: documents without recoverable state
//   - RASTERIZER_UNAVAILABLE / UNSUPPORTED / FETCH_FAILED: environment limitations
//
// # Usage
//
//	err := errors.New(errors.ErrCodeShapeNotFound, "no shape with id %q", id)
//	if errors.Is(err, errors.ErrCodeShapeNotFound) {
//	    // Handle missing shape
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidImage, origErr, "decode %s", name)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidPattern Code = "INVALID_PATTERN"
	ErrCodeInvalidColor   Code = "INVALID_COLOR"
	ErrCodeInvalidLayer   Code = "INVALID_LAYER"
	ErrCodeInvalidImage   Code = "INVALID_IMAGE"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Embedded state errors
	ErrCodeNoMetadata      Code = "NO_METADATA"
	ErrCodeInvalidMetadata Code = "INVALID_METADATA"

	// Resource not found errors
	ErrCodeShapeNotFound    Code = "SHAPE_NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"
	ErrCodeFileNotFound     Code = "FILE_NOT_FOUND"

	// Environment errors
	ErrCodeRasterizerUnavailable Code = "RASTERIZER_UNAVAILABLE"
	ErrCodeUnsupported           Code = "UNSUPPORTED"
	ErrCodeFetchFailed           Code = "FETCH_FAILED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// IsNotFound reports whether err names a missing shape, document or file.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeShapeNotFound, ErrCodeDocumentNotFound, ErrCodeFileNotFound:
		return true
	}
	return false
}

// IsInvalid reports whether err is caused by bad caller input.
func IsInvalid(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPattern,
		ErrCodeInvalidColor, ErrCodeInvalidLayer, ErrCodeInvalidImage,
		ErrCodeInvalidPath, ErrCodeNoMetadata, ErrCodeInvalidMetadata:
		return true
	}
	return false
}
