package weather

import (
	"context"
	"time"

	"github.com/MuradAles/Hermes/internal/types"
)

// Provider looks up weather at a point in space and time. Implementations
// must return a fully validated observation or an error; the core never
// accepts partially populated weather data.
type Provider interface {
	GetWeather(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error)

func (f ProviderFunc) GetWeather(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
	return f(ctx, lat, lon, at)
}
