package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("CH-TEST-1000", "test message"),
			expected: "[CH-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("CH-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[CH-TEST-1001] test message: extra info",
		},
		{
			name:     "formatted details",
			err:      ErrRuntime.WithDetailsf("Unknown dump mode '%s'", "foo"),
			expected: "[CH-RUNT-5000] runtime error: Unknown dump mode 'foo'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("CH-TEST-1000", "message 1")
	err2 := NewDomainError("CH-TEST-1000", "message 2")
	err3 := NewDomainError("CH-TEST-1001", "message 1")

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}

	// Derived errors keep matching their family sentinel.
	derived := ErrSchema.WithDetails("type mismatch")
	if !errors.Is(fmt.Errorf("compose: %w", derived), ErrSchema) {
		t.Error("derived schema error should match ErrSchema")
	}
	if errors.Is(derived, ErrValidation) {
		t.Error("schema error should not match ErrValidation")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("CH-TEST-1000", "wrapper").WithCause(cause)

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	errNoCause := NewDomainError("CH-TEST-1000", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("CH-TEST-1000", "original message")
	withDetails := original.WithDetails("additional details")

	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}
	if withDetails.Code != original.Code {
		t.Errorf("Code = %q, want %q", withDetails.Code, original.Code)
	}
}

func TestDomainError_WithCause(t *testing.T) {
	original := NewDomainError("CH-TEST-1000", "original message")
	cause := fmt.Errorf("root cause")
	withCause := original.Wrap(cause)

	if original.Cause != nil {
		t.Error("WithCause should not modify original error")
	}
	if withCause.Cause != cause {
		t.Errorf("Cause = %v, want %v", withCause.Cause, cause)
	}
	if !strings.Contains(withCause.Error(), original.Message) {
		t.Errorf("Error() = %q, should contain message", withCause.Error())
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrLoad, CodeLoad) {
		t.Error("IsDomainError should return true for matching code")
	}
	if IsDomainError(ErrLoad, CodeSchema) {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if !IsDomainError(ErrLoad, "") {
		t.Error("IsDomainError with empty code should match any DomainError")
	}
	if IsDomainError(fmt.Errorf("regular error"), CodeLoad) {
		t.Error("IsDomainError should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("wrapped: %w", ErrValidation)
	if !IsDomainError(wrapped, CodeValidation) {
		t.Error("IsDomainError should work with wrapped errors")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"schema", ErrSchema, CodeSchema},
		{"wrapped runtime", fmt.Errorf("wrapped: %w", ErrRuntime), CodeRuntime},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}
