package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, cause, "failed to render")

	if err.Code != ErrCodeInternal {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInternal)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInternal,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeInternal, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeInternal,
			expected: true,
		},
		{
			name:     "shape mismatch",
			err:      ShapeMismatch("barChart", "values", "length 2, want 3"),
			code:     ErrCodeShapeMismatch,
			expected: true,
		},
		{
			name:     "shape mismatch behind fmt wrap",
			err:      fmt.Errorf("layout: %w", ShapeMismatch("flowChart", "edges", "cycle")),
			code:     ErrCodeShapeMismatch,
			expected: true,
		},
		{
			name:     "dangling reference",
			err:      &DanglingReferenceError{EdgeID: "e", NodeID: "n"},
			code:     ErrCodeDanglingReference,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidID, "test"),
			expected: ErrCodeInvalidID,
		},
		{
			name:     "typed error",
			err:      &ShapeMismatchError{Kind: "mindMap", Field: "root"},
			expected: ErrCodeShapeMismatch,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "shape mismatch",
			err:      ShapeMismatch("barChart", "values", "length %d, want %d", 2, 3),
			expected: `barChart: field "values": length 2, want 3`,
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestShapeMismatchError(t *testing.T) {
	t.Run("message", func(t *testing.T) {
		err := &ShapeMismatchError{Kind: "flowChart", Field: "edges[2].target", Reason: `unknown node "x"`}
		expected := `SHAPE_MISMATCH: flowChart: field "edges[2].target": unknown node "x"`
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("without reason", func(t *testing.T) {
		err := &ShapeMismatchError{Kind: "mindMap", Field: "root"}
		expected := `SHAPE_MISMATCH: mindMap: field "root"`
		if err.Error() != expected {
			t.Errorf("Error() = %v, want %v", err.Error(), expected)
		}
	})

	t.Run("wraps cycle", func(t *testing.T) {
		err := &ShapeMismatchError{Kind: "flowChart", Field: "edges", Cause: ErrCycle}
		if !errors.Is(err, ErrCycle) {
			t.Error("errors.Is(err, ErrCycle) = false, want true")
		}
	})
}

func TestDanglingReferenceError(t *testing.T) {
	err := &DanglingReferenceError{EdgeID: "edge-1", NodeID: "node-9"}
	expected := `DANGLING_REFERENCE: edge "edge-1" references missing node "node-9"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
	if err.ErrorCode() != ErrCodeDanglingReference {
		t.Errorf("ErrorCode() = %v, want %v", err.ErrorCode(), ErrCodeDanglingReference)
	}
}
