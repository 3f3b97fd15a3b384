package types

import (
	"errors"
	"math"
	"testing"
	"time"
)

func completeObservation() WeatherObservation {
	return WeatherObservation{
		TemperatureF:     55,
		CloudCoveragePct: 40,
		CeilingFt:        8000,
		VisibilityMi:     6,
		WindSpeedKt:      9,
		ConditionCode:    802,
		Description:      "scattered clouds",
		ObservedAt:       time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	}
}

func TestWeatherObservationValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*WeatherObservation)
		wantField string
	}{
		{"complete", func(o *WeatherObservation) {}, ""},
		{"negative visibility", func(o *WeatherObservation) { o.VisibilityMi = -1 }, "visibility"},
		{"NaN visibility", func(o *WeatherObservation) { o.VisibilityMi = math.NaN() }, "visibility"},
		{"zero ceiling", func(o *WeatherObservation) { o.CeilingFt = 0 }, "ceiling"},
		{"negative wind", func(o *WeatherObservation) { o.WindSpeedKt = -3 }, "wind speed"},
		{"NaN temperature", func(o *WeatherObservation) { o.TemperatureF = math.NaN() }, "temperature"},
		{"missing time", func(o *WeatherObservation) { o.ObservedAt = time.Time{} }, "observation time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := completeObservation()
			tt.mutate(&obs)

			err := obs.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			var incomplete *IncompleteWeatherError
			if !errors.As(err, &incomplete) {
				t.Fatalf("Validate() error = %v, want IncompleteWeatherError", err)
			}
			if incomplete.Field != tt.wantField {
				t.Errorf("Validate() field = %q, want %q", incomplete.Field, tt.wantField)
			}
		})
	}
}

func TestValidate_NilObservation(t *testing.T) {
	var obs *WeatherObservation
	if err := obs.Validate(); err == nil {
		t.Fatal("Validate() expected error for nil observation, got none")
	}
}

func TestCertificationLevelRestrictive(t *testing.T) {
	tests := []struct {
		level CertificationLevel
		want  bool
	}{
		{LevelStudent, true},
		{LevelPrivate, true},
		{LevelCommercial, false},
		{LevelInstrument, false},
	}

	for _, tt := range tests {
		if got := tt.level.Restrictive(); got != tt.want {
			t.Errorf("%s.Restrictive() = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestLevelMinimaCoversAllLevels(t *testing.T) {
	for _, level := range Levels {
		if _, ok := LevelMinima[level]; !ok {
			t.Errorf("LevelMinima missing entry for %s", level)
		}
	}

	// Only the instrument rating flies without visibility/ceiling floors.
	for level, m := range LevelMinima {
		hasFloors := m.MinVisibilityMi > 0 && m.MinCeilingFt > 0
		if level == LevelInstrument {
			if hasFloors {
				t.Errorf("instrument minima = %+v, want no visibility/ceiling floor", m)
			}
			continue
		}
		if !hasFloors {
			t.Errorf("%s minima = %+v, want positive visibility and ceiling floors", level, m)
		}
	}
}
