// Package errors provides structured error types for taxotree.
//
// Every error that crosses a package boundary carries a machine-readable
// [Code] next to its human-readable message. The code decides how a caller
// reacts:
//   - PARSE_ROW, NO_TAXONOMY: skip the row or query and keep going
//   - STORE_UNAVAILABLE, FETCH_FAILED, OUTPUT_FAILED: abort the run
//   - INVALID_*: reject the configuration before any work starts
//
// # Usage
//
//	err := errors.New(errors.ErrCodeParseRow, "line %d: no accession column", n)
//	if errors.Is(err, errors.ErrCodeParseRow) {
//	    // log and continue with the next row
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStoreUnavailable, origErr, "open %s", path)
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
	ErrCodeInvalidColumn Code = "INVALID_COLUMN"
	ErrCodeInvalidDelta  Code = "INVALID_DELTA"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Row and query level errors, recovered by the caller
	ErrCodeParseRow   Code = "PARSE_ROW"
	ErrCodeNoTaxonomy Code = "NO_TAXONOMY"

	// Tree structure errors
	ErrCodeDuplicateTaxon Code = "DUPLICATE_TAXON"

	// Resource errors, fatal for the run
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	ErrCodeFetchFailed      Code = "FETCH_FAILED"
	ErrCodeOutputFailed     Code = "OUTPUT_FAILED"

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
// For *Error types, returns the message followed by the cause, without the
// code prefix. For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// IsRecoverable reports whether err only affects a single row or query.
// Recoverable errors are logged and skipped; everything else aborts the run.
func IsRecoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeParseRow, ErrCodeNoTaxonomy, ErrCodeNotFound:
		return true
	}
	return false
}
