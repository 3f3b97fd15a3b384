package types

import (
	"fmt"
	"math"
	"time"
)

// SafetyStatus is the per-checkpoint and per-path safety classification.
type SafetyStatus string

const (
	StatusSafe      SafetyStatus = "safe"
	StatusMarginal  SafetyStatus = "marginal"
	StatusDangerous SafetyStatus = "dangerous"
)

// SafetyColor is the alert color derived from a status and a certification
// level. The monitor compares colors, not raw statuses, when deciding whether
// conditions have materially changed.
type SafetyColor string

const (
	ColorGreen  SafetyColor = "GREEN"
	ColorYellow SafetyColor = "YELLOW"
	ColorRed    SafetyColor = "RED"
)

// CertificationLevel is a pilot's training/certification rating.
type CertificationLevel string

const (
	LevelStudent    CertificationLevel = "student-pilot"
	LevelPrivate    CertificationLevel = "private-pilot"
	LevelCommercial CertificationLevel = "commercial-pilot"
	LevelInstrument CertificationLevel = "instrument-rated"
)

// Levels lists the canonical certification levels, most restrictive first.
var Levels = []CertificationLevel{LevelStudent, LevelPrivate, LevelCommercial, LevelInstrument}

// Restrictive reports whether the level is one of the two most restrictive
// ratings, which are not permitted to fly in marginal conditions.
func (l CertificationLevel) Restrictive() bool {
	return l == LevelStudent || l == LevelPrivate
}

// Minima holds the weather minimums for one certification level. A zero
// visibility or ceiling means "no floor" (instrument-capable).
type Minima struct {
	MinVisibilityMi float64 `json:"min_visibility_mi"`
	MinCeilingFt    int     `json:"min_ceiling_ft"`
	MaxWindKt       float64 `json:"max_wind_kt"`
}

// LevelMinima maps each certification level to its weather minimums.
// Static configuration, never mutated at runtime.
var LevelMinima = map[CertificationLevel]Minima{
	LevelStudent:    {MinVisibilityMi: 5, MinCeilingFt: 3000, MaxWindKt: 10},
	LevelPrivate:    {MinVisibilityMi: 4, MinCeilingFt: 2500, MaxWindKt: 15},
	LevelCommercial: {MinVisibilityMi: 3, MinCeilingFt: 1000, MaxWindKt: 20},
	LevelInstrument: {MinVisibilityMi: 0, MinCeilingFt: 0, MaxWindKt: 30},
}

// Location is immutable airport reference data.
type Location struct {
	Code string  `json:"code"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Waypoint is one point along a flight path. ETA is set once when ETAs are
// computed from the departure time; the rest is fixed at generation.
type Waypoint struct {
	Lat                 float64   `json:"lat"`
	Lon                 float64   `json:"lon"`
	AltitudeFt          int       `json:"altitude_ft"`
	DistanceFromStartNM float64   `json:"distance_from_start_nm"`
	ETA                 time.Time `json:"eta"`
}

// FlightPath is the generated route: ordered waypoints from departure (index 0)
// to arrival, plus summary figures.
type FlightPath struct {
	Waypoints        []Waypoint `json:"waypoints"`
	TotalDistanceNM  float64    `json:"total_distance_nm"`
	EstimatedMinutes float64    `json:"estimated_minutes"`
	CruiseAltitudeFt int        `json:"cruise_altitude_ft"`
}

// WeatherObservation is a validated weather sample at one point and time.
// Constructed only by the adapter at the weather-provider boundary; the core
// never mutates it.
type WeatherObservation struct {
	TemperatureF      float64   `json:"temperature_f"`
	CloudCoveragePct  int       `json:"cloud_coverage_pct"`
	CeilingFt         int       `json:"ceiling_ft"`
	VisibilityMi      float64   `json:"visibility_mi"`
	WindSpeedKt       float64   `json:"wind_speed_kt"`
	WindDirectionDeg  float64   `json:"wind_direction_deg"`
	ConditionCode     int       `json:"condition_code"`
	Description       string    `json:"description"`
	PrecipitationMmHr float64   `json:"precipitation_mm_hr"`
	ObservedAt        time.Time `json:"observed_at"`
}

// IncompleteWeatherError reports an observation missing a field the safety
// assessment depends on. Unknown weather is never treated as safe.
type IncompleteWeatherError struct {
	Field string
}

func (e *IncompleteWeatherError) Error() string {
	return fmt.Sprintf("incomplete weather observation: missing or invalid %s", e.Field)
}

// Validate checks that every field the safety assessment reads is present and
// numerically sane.
func (w *WeatherObservation) Validate() error {
	switch {
	case w == nil:
		return &IncompleteWeatherError{Field: "observation"}
	case math.IsNaN(w.VisibilityMi) || w.VisibilityMi < 0:
		return &IncompleteWeatherError{Field: "visibility"}
	case w.CeilingFt <= 0:
		return &IncompleteWeatherError{Field: "ceiling"}
	case math.IsNaN(w.WindSpeedKt) || w.WindSpeedKt < 0:
		return &IncompleteWeatherError{Field: "wind speed"}
	case math.IsNaN(w.TemperatureF):
		return &IncompleteWeatherError{Field: "temperature"}
	case w.ObservedAt.IsZero():
		return &IncompleteWeatherError{Field: "observation time"}
	}
	return nil
}

// Checkpoint is one waypoint's weather plus its safety evaluation.
// Immutable once created.
type Checkpoint struct {
	Lat     float64            `json:"lat"`
	Lon     float64            `json:"lon"`
	Time    time.Time          `json:"time"`
	Weather WeatherObservation `json:"weather"`
	Status  SafetyStatus       `json:"safety_status"`
	Score   float64            `json:"safety_score"`
	Reason  string             `json:"reason"`
}

// PathVerdict is the aggregate safety result for a whole path. It is always
// recomputed from checkpoints, never persisted on its own authority.
type PathVerdict struct {
	Status SafetyStatus `json:"status"`
	Score  float64      `json:"score"`
	Color  SafetyColor  `json:"color"`
}

// ScheduledFlight is the stored flight record the monitor re-evaluates.
// Persistence is owned by the store; the core reads it and proposes updates.
type ScheduledFlight struct {
	ID                string             `json:"id"`
	StudentName       string             `json:"student_name"`
	Departure         Location           `json:"departure"`
	Arrival           Location           `json:"arrival"`
	Level             CertificationLevel `json:"level"`
	ScheduledTime     time.Time          `json:"scheduled_time"`
	Status            string             `json:"status"`
	LastColor         SafetyColor        `json:"last_color"`
	NeedsRescheduling bool               `json:"needs_rescheduling"`
	Checkpoints       []Checkpoint       `json:"checkpoints,omitempty"`
	Verdict           *PathVerdict       `json:"verdict,omitempty"`
	WeatherCheckedAt  time.Time          `json:"weather_checked_at"`
}
