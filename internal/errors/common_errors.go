package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeLoad        ErrorType = "LOAD"
	ErrTypeParse       ErrorType = "PARSE"
	ErrTypeEmptyResult ErrorType = "EMPTY_RESULT"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeConfig      ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewLoadError creates an error for a source that cannot be read or lacks
// required columns. Load errors abort the pipeline.
func NewLoadError(message string, cause error) *AppError {
	return NewAppError(ErrTypeLoad, message, cause)
}

// NewParseError creates a row-level error for a value that cannot be parsed.
// The row and the offending value are kept as context.
func NewParseError(row int, value string, cause error) *AppError {
	return NewAppError(ErrTypeParse, fmt.Sprintf("row %d: cannot parse %q", row, value), cause).
		WithContext("row", row).
		WithContext("value", value)
}

// NewEmptyResultError reports that no rows survived cleaning.
func NewEmptyResultError(inputRows int) *AppError {
	return NewAppError(ErrTypeEmptyResult,
		fmt.Sprintf("no rows left after cleaning %d input rows", inputRows), nil).
		WithContext("input_rows", inputRows)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType reports whether err wraps an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsLoadError reports whether err is a LOAD error.
func IsLoadError(err error) bool { return IsType(err, ErrTypeLoad) }

// IsParseError reports whether err is a PARSE error.
func IsParseError(err error) bool { return IsType(err, ErrTypeParse) }

// IsEmptyResult reports whether err is an EMPTY_RESULT error.
func IsEmptyResult(err error) bool { return IsType(err, ErrTypeEmptyResult) }
