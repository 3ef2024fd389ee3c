package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewEmptyInputError("no stations found"),
			wantMessage: "[EMPTY_INPUT] no stations found",
		},
		{
			name:        "error with cause",
			appError:    NewInputError("cannot open workbook", fmt.Errorf("permission denied")),
			wantMessage: "[INPUT] cannot open workbook: permission denied",
		},
		{
			name:        "schema error lists columns",
			appError:    NewSchemaError([]string{"category"}),
			wantMessage: "[SCHEMA] missing required columns: [category]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("strconv.ParseFloat: invalid syntax")
	err := NewAppValidationError("row 3: invalid duration", cause)

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, cause, err.Unwrap())
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeValidation, Message: "bad row"}

	err.WithContext("row", 4).WithContext("value", "abc")

	require.NotNil(t, err.Context)
	assert.Equal(t, 4, err.Context["row"])
	assert.Equal(t, "abc", err.Context["value"])
}

func TestSchemaError_Context(t *testing.T) {
	err := NewSchemaError([]string{"time", "category"})

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Equal(t, []string{"time", "category"}, err.Context["missing_columns"])
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		input      bool
		schema     bool
		validation bool
		empty      bool
	}{
		{name: "input", err: NewInputError("missing", nil), input: true},
		{name: "schema", err: NewSchemaError([]string{"station"}), schema: true},
		{name: "validation", err: NewAppValidationError("unit", nil), validation: true},
		{name: "empty", err: NewEmptyInputError("none"), empty: true},
		{name: "wrapped schema", err: fmt.Errorf("load: %w", NewSchemaError([]string{"time"})), schema: true},
		{name: "plain error", err: errors.New("boom")},
		{name: "render", err: NewRenderError("png", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.input, IsInputError(tt.err))
			assert.Equal(t, tt.schema, IsSchemaError(tt.err))
			assert.Equal(t, tt.validation, IsValidationError(tt.err))
			assert.Equal(t, tt.empty, IsEmptyInputError(tt.err))
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrTypeConfig, TypeOf(NewConfigError("bad port", nil)))
	assert.Equal(t, ErrTypeStorage, TypeOf(fmt.Errorf("write: %w", NewStorageError("disk full", nil))))
	assert.Equal(t, ErrorType(""), TypeOf(errors.New("plain")))
	assert.Equal(t, ErrorType(""), TypeOf(nil))
}
