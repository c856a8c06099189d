// Package domain defines the error taxonomy shared by the configuration engine.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents an engine error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "CH-SCHM-4000")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithDetailsf is WithDetails with fmt.Sprintf formatting.
func (e *DomainError) WithDetailsf(format string, args ...any) *DomainError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Error codes.
const (
	CodeSchema     = "CH-SCHM-4000"
	CodeValidation = "CH-VALD-4220"
	CodeRuntime    = "CH-RUNT-5000"
	CodeLoad       = "CH-LOAD-4040"
)

var (
	// ErrSchema indicates schema fragments could not be composed.
	ErrSchema = NewDomainError(CodeSchema, "schema error")

	// ErrValidation indicates the configuration does not match the schema.
	ErrValidation = NewDomainError(CodeValidation, "configuration validation failed")

	// ErrRuntime indicates misuse of the engine.
	ErrRuntime = NewDomainError(CodeRuntime, "runtime error")

	// ErrLoad indicates a configuration source could not be loaded.
	ErrLoad = NewDomainError(CodeLoad, "load error")
)
