package domain

import (
	"time"
)

// TimeUnit is the unit raw durations were expressed in.
type TimeUnit string

const (
	TimeUnitSeconds TimeUnit = "seconds"
	TimeUnitMinutes TimeUnit = "minutes"
)

// Factor returns the multiplier converting the unit to seconds.
func (u TimeUnit) Factor() float64 {
	if u == TimeUnitMinutes {
		return 60
	}
	return 1
}

// UnitSource records which rule decided the time unit.
type UnitSource string

const (
	UnitSourceHint    UnitSource = "hint"
	UnitSourceHeader  UnitSource = "header"
	UnitSourceDefault UnitSource = "default"
)

// StationSummary is the per-station line of a report, relative to takt.
type StationSummary struct {
	Station      string  `json:"station"`
	TotalSeconds float64 `json:"total_seconds"`
	VARatio      float64 `json:"va_ratio"`
	DeltaSeconds float64 `json:"delta_seconds"`
	AboveTakt    bool    `json:"above_takt"`
}

// Report is the complete result of one analysis run.
type Report struct {
	ID          string             `json:"id"`
	Source      string             `json:"source"`
	Sheet       string             `json:"sheet,omitempty"`
	Unit        TimeUnit           `json:"unit"`
	UnitSource  UnitSource         `json:"unit_source"`
	Records     int                `json:"records"`
	Categories  []Category         `json:"categories"`
	Stations    []StationAggregate `json:"stations"`
	TaktSeconds float64            `json:"takt_seconds"`
	TaktGiven   bool               `json:"takt_given"`
	Bottleneck  Bottleneck         `json:"bottleneck"`
	Summary     []StationSummary   `json:"summary"`
	Lines       []string           `json:"lines"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// TaktMinutes returns the resolved takt time in minutes.
func (r *Report) TaktMinutes() float64 {
	return r.TaktSeconds / 60
}
