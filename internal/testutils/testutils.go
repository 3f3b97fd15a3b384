package testutils

import (
	"context"
	"fmt"
	"time"

	"github.com/MuradAles/Hermes/internal/types"
)

// ClearObservation returns VFR weather that scores 100 for every
// certification level.
func ClearObservation(at time.Time) *types.WeatherObservation {
	return &types.WeatherObservation{
		TemperatureF:     60,
		CloudCoveragePct: 10,
		CeilingFt:        25000,
		VisibilityMi:     10,
		WindSpeedKt:      5,
		ConditionCode:    800,
		Description:      "clear sky",
		ObservedAt:       at,
	}
}

// StormObservation returns an active thunderstorm, dangerous for every level.
func StormObservation(at time.Time) *types.WeatherObservation {
	return &types.WeatherObservation{
		TemperatureF:      65,
		CloudCoveragePct:  95,
		CeilingFt:         800,
		VisibilityMi:      2,
		WindSpeedKt:       25,
		ConditionCode:     211,
		Description:       "thunderstorm",
		PrecipitationMmHr: 8,
		ObservedAt:        at,
	}
}

// WaitForCondition waits for a condition to be true with timeout
func WaitForCondition(condition func() bool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for condition")
		case <-ticker.C:
			if condition() {
				return nil
			}
		}
	}
}
