package dataprocessing

import (
	"strings"

	apperrors "yamazumi/internal/errors"
	"yamazumi/pkg/contracts/domain"
)

// UnitResolution is the unit durations are read in and why it was chosen.
type UnitResolution struct {
	Unit   domain.TimeUnit
	Source domain.UnitSource
}

// Factor converts one raw unit to seconds.
func (u UnitResolution) Factor() float64 {
	return u.Unit.Factor()
}

// parseUnitHint maps a hint such as "minutes", "min", "segundos" to a unit.
func parseUnitHint(hint string) (domain.TimeUnit, bool) {
	h := strings.ToLower(strings.TrimSpace(hint))
	switch {
	case strings.HasPrefix(h, "min"):
		return domain.TimeUnitMinutes, true
	case strings.HasPrefix(h, "sec"), strings.HasPrefix(h, "seg"):
		return domain.TimeUnitSeconds, true
	default:
		return "", false
	}
}

// IsValidUnitHint reports whether hint is empty or names minutes or seconds.
func IsValidUnitHint(hint string) bool {
	if strings.TrimSpace(hint) == "" {
		return true
	}
	_, ok := parseUnitHint(hint)
	return ok
}

// ResolveUnit decides the unit of the time column. An explicit hint wins;
// otherwise a "(min" marker in the header means minutes; otherwise seconds.
func ResolveUnit(hint, timeHeader string) (UnitResolution, error) {
	if strings.TrimSpace(hint) != "" {
		unit, ok := parseUnitHint(hint)
		if !ok {
			return UnitResolution{}, apperrors.NewAppValidationError("unit must be minutes or seconds", nil).
				WithContext("unit", hint)
		}
		return UnitResolution{Unit: unit, Source: domain.UnitSourceHint}, nil
	}

	if strings.Contains(strings.ToLower(timeHeader), "(min") {
		return UnitResolution{Unit: domain.TimeUnitMinutes, Source: domain.UnitSourceHeader}, nil
	}

	return UnitResolution{Unit: domain.TimeUnitSeconds, Source: domain.UnitSourceDefault}, nil
}
