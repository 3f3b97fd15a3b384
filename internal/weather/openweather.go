package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/MuradAles/Hermes/internal/types"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// The free-tier forecast covers 5 days in 3-hour steps; anything beyond
	// that horizon falls back to current weather.
	forecastHorizon = 5 * 24 * time.Hour

	metersPerMile      = 1609.0
	defaultVisibilityM = 10000.0 // the forecast API sometimes omits visibility
)

// OpenWeather is a Provider backed by the OpenWeatherMap current-weather and
// 5-day forecast APIs. All responses pass through a validating conversion to
// WeatherObservation before they reach the core.
type OpenWeather struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewOpenWeather creates an OpenWeatherMap client.
func NewOpenWeather(apiKey string) *OpenWeather {
	return &OpenWeather{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
}

// NewOpenWeatherWithBaseURL creates a client against a custom endpoint
// (useful for testing).
func NewOpenWeatherWithBaseURL(apiKey, baseURL string) *OpenWeather {
	c := NewOpenWeather(apiKey)
	c.baseURL = baseURL
	return c
}

// payload mirrors the subset of the OpenWeatherMap response the engine reads.
type payload struct {
	Main *struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Clouds *struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility *float64 `json:"visibility"`
	Wind       *struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
	} `json:"wind"`
	Weather []struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"weather"`
	Rain *struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
	Snow *struct {
		OneHour float64 `json:"1h"`
	} `json:"snow"`
	Dt int64 `json:"dt"`
}

type forecastResponse struct {
	List []payload `json:"list"`
}

// GetWeather returns the observation for a location at a target time. Times
// inside the forecast horizon resolve to the closest forecast entry; times
// beyond it fall back to current weather.
func (c *OpenWeather) GetWeather(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
	if at.IsZero() || at.After(c.now().Add(forecastHorizon)) {
		return c.current(ctx, lat, lon)
	}
	return c.forecast(ctx, lat, lon, at)
}

func (c *OpenWeather) current(ctx context.Context, lat, lon float64) (*types.WeatherObservation, error) {
	var p payload
	if err := c.get(ctx, "/weather", lat, lon, &p); err != nil {
		return nil, err
	}
	return convert(&p)
}

func (c *OpenWeather) forecast(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
	var fr forecastResponse
	if err := c.get(ctx, "/forecast", lat, lon, &fr); err != nil {
		return nil, err
	}
	if len(fr.List) == 0 {
		// Empty forecast list: degrade to current-weather semantics.
		return c.current(ctx, lat, lon)
	}

	closest := &fr.List[0]
	minDiff := absDuration(time.Unix(closest.Dt, 0).Sub(at))
	for i := 1; i < len(fr.List); i++ {
		diff := absDuration(time.Unix(fr.List[i].Dt, 0).Sub(at))
		if diff < minDiff {
			minDiff = diff
			closest = &fr.List[i]
		}
	}
	return convert(closest)
}

func (c *OpenWeather) get(ctx context.Context, endpoint string, lat, lon float64, out interface{}) error {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", lat))
	q.Set("lon", fmt.Sprintf("%f", lon))
	q.Set("appid", c.apiKey)
	q.Set("units", "imperial")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}

// convert builds a validated WeatherObservation from a raw payload. Missing
// main/clouds/wind/weather blocks are an error, never defaulted: unknown
// conditions cannot be certified safe. Visibility alone may be absent and
// defaults to 10 km, matching the upstream forecast API's behavior.
func convert(p *payload) (*types.WeatherObservation, error) {
	switch {
	case p.Main == nil:
		return nil, &types.IncompleteWeatherError{Field: "main"}
	case p.Clouds == nil:
		return nil, &types.IncompleteWeatherError{Field: "clouds"}
	case p.Wind == nil:
		return nil, &types.IncompleteWeatherError{Field: "wind"}
	case len(p.Weather) == 0:
		return nil, &types.IncompleteWeatherError{Field: "weather"}
	}

	visibilityM := defaultVisibilityM
	if p.Visibility != nil {
		visibilityM = *p.Visibility
	}
	visibilityMi := visibilityM / metersPerMile

	precip := 0.0
	if p.Rain != nil {
		precip = p.Rain.OneHour
	} else if p.Snow != nil {
		precip = p.Snow.OneHour
	}

	observedAt := time.Unix(p.Dt, 0).UTC()
	if p.Dt == 0 {
		observedAt = time.Now().UTC()
	}

	obs := &types.WeatherObservation{
		TemperatureF:      p.Main.Temp,
		CloudCoveragePct:  p.Clouds.All,
		CeilingFt:         estimateCeilingFt(p.Clouds.All, p.Weather[0].ID, visibilityMi),
		VisibilityMi:      visibilityMi,
		WindSpeedKt:       p.Wind.Speed,
		WindDirectionDeg:  p.Wind.Deg,
		ConditionCode:     p.Weather[0].ID,
		Description:       p.Weather[0].Description,
		PrecipitationMmHr: precip,
		ObservedAt:        observedAt,
	}

	if err := obs.Validate(); err != nil {
		return nil, err
	}
	return obs, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
