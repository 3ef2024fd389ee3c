package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrTypeInput covers missing, unreadable or unsupported input files.
	ErrTypeInput ErrorType = "INPUT"
	// ErrTypeSchema covers tables lacking a required logical column.
	ErrTypeSchema ErrorType = "SCHEMA"
	// ErrTypeValidation covers bad values: unknown unit hints, non-numeric
	// or negative durations, malformed requests.
	ErrTypeValidation ErrorType = "VALIDATION"
	// ErrTypeEmptyInput is raised when no station survives loading.
	ErrTypeEmptyInput ErrorType = "EMPTY_INPUT"
	ErrTypeRender     ErrorType = "RENDER"
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeStorage    ErrorType = "STORAGE"
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

// NewInputError creates an error for an input file that cannot be used
func NewInputError(message string, cause error) *AppError {
	return NewAppError(ErrTypeInput, message, cause)
}

// NewSchemaError creates an error naming the logical columns that could
// not be resolved.
func NewSchemaError(missing []string) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("missing required columns: %v", missing), nil).
		WithContext("missing_columns", missing)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewEmptyInputError creates an error for a run with no stations
func NewEmptyInputError(message string) *AppError {
	return NewAppError(ErrTypeEmptyInput, message, nil)
}

// NewRenderError creates a chart rendering error
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// TypeOf returns the ErrorType of the first AppError in err's chain, or
// the empty string when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// IsInputError reports whether err carries an INPUT AppError
func IsInputError(err error) bool { return TypeOf(err) == ErrTypeInput }

// IsSchemaError reports whether err carries a SCHEMA AppError
func IsSchemaError(err error) bool { return TypeOf(err) == ErrTypeSchema }

// IsValidationError reports whether err carries a VALIDATION AppError
func IsValidationError(err error) bool { return TypeOf(err) == ErrTypeValidation }

// IsEmptyInputError reports whether err carries an EMPTY_INPUT AppError
func IsEmptyInputError(err error) bool { return TypeOf(err) == ErrTypeEmptyInput }
