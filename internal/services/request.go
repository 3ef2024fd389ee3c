package services

import (
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"yamazumi/internal/dataprocessing"
	apperrors "yamazumi/internal/errors"
)

// AnalyzeRequest describes one analysis run. Exactly one of Path or Table
// is used; Table wins when both are set.
type AnalyzeRequest struct {
	Path  string                `json:"path" validate:"required_without=Table"`
	Table *dataprocessing.Table `json:"-"`
	Sheet string                `json:"sheet,omitempty"`
	// Unit is a unit hint such as "minutes" or "segundos"; empty infers it.
	Unit string `json:"unit,omitempty" validate:"omitempty,timeunit"`
	// TaktMinutes overrides the derived takt time. Zero and negative values
	// are accepted as given.
	TaktMinutes *float64 `json:"takt_minutes,omitempty" validate:"omitempty,finite"`
}

// source labels the run for metrics.
func (r AnalyzeRequest) source() string {
	if r.Table != nil {
		return "upload"
	}
	return "file"
}

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("timeunit", isTimeUnit)
	v.RegisterValidation("finite", isFinite)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// isTimeUnit validates unit hints (minutes/seconds in English or Portuguese)
func isTimeUnit(fl validator.FieldLevel) bool {
	return dataprocessing.IsValidUnitHint(fl.Field().String())
}

// isFinite rejects NaN and infinities
func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// validateRequest maps validator failures onto a VALIDATION AppError.
func validateRequest(v *validator.Validate, req AnalyzeRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewAppValidationError("invalid analyze request", err)
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "timeunit":
		msg = "unit must be minutes or seconds"
	case "finite":
		msg = "takt must be a finite number"
	case "required_without":
		msg = "an input path or table is required"
	default:
		msg = fe.Error()
	}
	return apperrors.NewAppValidationError(msg, nil).
		WithContext("field", fe.Field()).
		WithContext("rule", fe.Tag())
}
