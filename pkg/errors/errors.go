// Package errors provides structured error types for critpath.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the engine
//   - Machine-readable error codes for programmatic handling
//   - Non-blocking warnings that accumulate alongside a successful run
//
// # Error Codes
//
// Codes follow the scheduling error taxonomy:
//   - INVALID_*: input-shape failures, rejected before graph construction
//   - GRAPH_CYCLE: dependency cycle, blocks all date computation
//   - DANGLING_REFERENCE: predecessor outside the project, task excluded
//   - CONSTRAINT_UNDERFLOW, TARGET_BEFORE_FINISH: non-blocking warnings
//   - PERSISTENCE_FAILURE: batch write failed, fatal and never retried
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "project id is required")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodePersistence, origErr, "batch update of %d tasks", n)
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
	ErrCodeInvalidInput Code = "INVALID_INPUT"
	ErrCodeInvalidTask  Code = "INVALID_TASK"
	ErrCodeInvalidDate  Code = "INVALID_DATE"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeProjectNotFound Code = "PROJECT_NOT_FOUND"
	ErrCodeTaskNotFound    Code = "TASK_NOT_FOUND"

	// Graph integrity
	ErrCodeGraphCycle        Code = "GRAPH_CYCLE"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"

	// Schedule warnings
	ErrCodeConstraintUnderflow Code = "CONSTRAINT_UNDERFLOW"
	ErrCodeTargetBeforeFinish  Code = "TARGET_BEFORE_FINISH"
	ErrCodeUnverifiedEdit      Code = "UNVERIFIED_EDIT"

	// Storage and coordination
	ErrCodePersistence Code = "PERSISTENCE_FAILURE"
	ErrCodeStorage     Code = "STORAGE_ERROR"
	ErrCodeLocked      Code = "LOCKED"
	ErrCodeTimeout     Code = "TIMEOUT"

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

// Warning is a non-blocking finding reported next to a successful result.
// TaskID is empty for project-level warnings.
type Warning struct {
	Code    Code   `json:"code"`
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message"`
}

// Warn creates a Warning with a formatted message.
func Warn(code Code, taskID, format string, args ...any) Warning {
	return Warning{Code: code, TaskID: taskID, Message: fmt.Sprintf(format, args...)}
}

// String renders the warning for logs and API responses.
func (w Warning) String() string {
	if w.TaskID != "" {
		return fmt.Sprintf("%s: task %s: %s", w.Code, w.TaskID, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Code, w.Message)
}

// Strings renders a list of warnings.
func Strings(ws []Warning) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
