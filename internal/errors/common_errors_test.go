package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "load error type", errType: ErrTypeLoad, expected: "LOAD"},
		{name: "parse error type", errType: ErrTypeParse, expected: "PARSE"},
		{name: "empty result error type", errType: ErrTypeEmptyResult, expected: "EMPTY_RESULT"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewAppError(ErrTypeValidation, "top must be positive", nil),
			expected: "[VALIDATION] top must be positive",
		},
		{
			name:     "with cause",
			err:      NewLoadError("failed to open source file", fmt.Errorf("no such file")),
			expected: "[LOAD] failed to open source file: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("failed to write report", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeLoad, Message: "bad row"}
	err.WithContext("row", 7).WithContext("column", "Quantity")

	require.NotNil(t, err.Context)
	assert.Equal(t, 7, err.Context["row"])
	assert.Equal(t, "Quantity", err.Context["column"])
}

func TestNewParseError(t *testing.T) {
	err := NewParseError(12, "31/31/2011", errors.New("month out of range"))

	assert.Equal(t, ErrTypeParse, err.Type)
	assert.Contains(t, err.Error(), `row 12: cannot parse "31/31/2011"`)
	assert.Equal(t, 12, err.Context["row"])
	assert.Equal(t, "31/31/2011", err.Context["value"])
}

func TestNewEmptyResultError(t *testing.T) {
	err := NewEmptyResultError(3)

	assert.Equal(t, ErrTypeEmptyResult, err.Type)
	assert.Equal(t, "[EMPTY_RESULT] no rows left after cleaning 3 input rows", err.Error())
	assert.Equal(t, 3, err.Context["input_rows"])
}

func TestIsType(t *testing.T) {
	load := NewLoadError("missing required columns: Country", nil)
	wrapped := fmt.Errorf("run failed: %w", load)

	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{name: "load error", err: load, check: IsLoadError, want: true},
		{name: "wrapped load error", err: wrapped, check: IsLoadError, want: true},
		{name: "load is not empty result", err: load, check: IsEmptyResult, want: false},
		{name: "empty result", err: NewEmptyResultError(0), check: IsEmptyResult, want: true},
		{name: "parse error", err: NewParseError(1, "x", nil), check: IsParseError, want: true},
		{name: "plain error", err: errors.New("boom"), check: IsLoadError, want: false},
		{name: "nil error", err: nil, check: IsParseError, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}

	assert.True(t, IsType(NewConfigError("bad config", nil), ErrTypeConfig))
	assert.True(t, IsType(NewAppValidationError("bad flag"), ErrTypeValidation))
}
