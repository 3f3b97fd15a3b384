package eval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MuradAles/Hermes/internal/path"
	"github.com/MuradAles/Hermes/internal/safety"
	"github.com/MuradAles/Hermes/internal/testutils"
	"github.com/MuradAles/Hermes/internal/types"
	"github.com/MuradAles/Hermes/internal/weather"
)

var (
	kjfk = types.Location{Code: "KJFK", Name: "John F. Kennedy Intl", Lat: 40.6413, Lon: -73.7781}
	kbos = types.Location{Code: "KBOS", Name: "Boston Logan Intl", Lat: 42.3656, Lon: -71.0096}
)

func newEvaluator(p weather.Provider) *Evaluator {
	e := New(p, path.NewBuilder(path.DefaultConfig()), safety.NewAssessor(safety.DefaultPenalties()))
	e.SetLookupDelay(0)
	return e
}

func TestEvaluateRoute_AllClear(t *testing.T) {
	lookups := 0
	provider := weather.ProviderFunc(func(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
		lookups++
		return testutils.ClearObservation(at), nil
	})

	e := newEvaluator(provider)
	departure := time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC)

	got, err := e.EvaluateRoute(context.Background(), kjfk, kbos, types.LevelStudent, departure)
	if err != nil {
		t.Fatalf("EvaluateRoute() unexpected error: %v", err)
	}

	if len(got.Checkpoints) != len(got.Path.Waypoints) {
		t.Errorf("checkpoints = %d, want one per waypoint (%d)", len(got.Checkpoints), len(got.Path.Waypoints))
	}
	if lookups != len(got.Path.Waypoints) {
		t.Errorf("provider called %d times, want %d", lookups, len(got.Path.Waypoints))
	}
	if got.Verdict.Status != types.StatusSafe || got.Verdict.Color != types.ColorGreen {
		t.Errorf("Verdict = %+v, want safe/GREEN", got.Verdict)
	}
	if got.Verdict.Score != 100 {
		t.Errorf("Verdict.Score = %v, want 100", got.Verdict.Score)
	}
	if len(got.LookupErrors) != 0 {
		t.Errorf("LookupErrors = %v, want none", got.LookupErrors)
	}

	// Checkpoints keep waypoint coordinates and ETAs.
	first := got.Checkpoints[0]
	if first.Lat != kjfk.Lat || first.Lon != kjfk.Lon {
		t.Errorf("first checkpoint at (%v, %v), want departure coordinates", first.Lat, first.Lon)
	}
	if !first.Time.Equal(departure) {
		t.Errorf("first checkpoint time = %v, want departure time %v", first.Time, departure)
	}
}

func TestEvaluateRoute_StormMakesPathDangerous(t *testing.T) {
	call := 0
	provider := weather.ProviderFunc(func(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
		call++
		// One mid-route thunderstorm.
		if call == 2 {
			return testutils.StormObservation(at), nil
		}
		return testutils.ClearObservation(at), nil
	})

	e := newEvaluator(provider)
	got, err := e.EvaluateRoute(context.Background(), kjfk, kbos, types.LevelCommercial, time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EvaluateRoute() unexpected error: %v", err)
	}

	if got.Verdict.Status != types.StatusDangerous || got.Verdict.Score != 0 {
		t.Errorf("Verdict = %+v, want dangerous/0 when any checkpoint is dangerous", got.Verdict)
	}
	if got.Verdict.Color != types.ColorRed {
		t.Errorf("Verdict.Color = %v, want RED", got.Verdict.Color)
	}
}

func TestEvaluateRoute_FailedLookupsAreSkipped(t *testing.T) {
	call := 0
	provider := weather.ProviderFunc(func(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
		call++
		if call == 1 {
			return nil, errors.New("upstream timeout")
		}
		return testutils.ClearObservation(at), nil
	})

	e := newEvaluator(provider)
	got, err := e.EvaluateRoute(context.Background(), kjfk, kbos, types.LevelStudent, time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EvaluateRoute() unexpected error: %v", err)
	}

	if len(got.Checkpoints) != len(got.Path.Waypoints)-1 {
		t.Errorf("checkpoints = %d, want %d (failed waypoint skipped)", len(got.Checkpoints), len(got.Path.Waypoints)-1)
	}
	if len(got.LookupErrors) != 1 {
		t.Errorf("LookupErrors = %v, want exactly one", got.LookupErrors)
	}
	if got.Verdict.Status != types.StatusSafe {
		t.Errorf("Verdict.Status = %v, want safe from the surviving checkpoints", got.Verdict.Status)
	}
}

func TestEvaluateRoute_AllLookupsFail(t *testing.T) {
	provider := weather.ProviderFunc(func(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
		return nil, errors.New("upstream down")
	})

	e := newEvaluator(provider)
	got, err := e.EvaluateRoute(context.Background(), kjfk, kbos, types.LevelStudent, time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("EvaluateRoute() unexpected error: %v", err)
	}

	// Unknown weather is never treated as safe.
	if got.Verdict.Status != types.StatusDangerous || got.Verdict.Score != 0 {
		t.Errorf("Verdict = %+v, want dangerous/0 with no surviving checkpoints", got.Verdict)
	}
	if len(got.Checkpoints) != 0 {
		t.Errorf("Checkpoints = %v, want none", got.Checkpoints)
	}
}

func TestEvaluateRoute_InvalidRoute(t *testing.T) {
	provider := weather.ProviderFunc(func(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
		t.Fatal("provider must not be called for an invalid route")
		return nil, nil
	})

	e := newEvaluator(provider)
	_, err := e.EvaluateRoute(context.Background(), kjfk, kjfk, types.LevelStudent, time.Now())
	if !errors.Is(err, path.ErrInvalidRoute) {
		t.Errorf("EvaluateRoute() error = %v, want ErrInvalidRoute", err)
	}
}

func TestEvaluateRoute_ContextCancellation(t *testing.T) {
	provider := weather.ProviderFunc(func(ctx context.Context, lat, lon float64, at time.Time) (*types.WeatherObservation, error) {
		return testutils.ClearObservation(at), nil
	})

	e := New(provider, path.NewBuilder(path.DefaultConfig()), safety.NewAssessor(safety.DefaultPenalties()))
	e.SetLookupDelay(50 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EvaluateRoute(ctx, kjfk, kbos, types.LevelStudent, time.Date(2026, 4, 2, 14, 0, 0, 0, time.UTC))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("EvaluateRoute() error = %v, want context.Canceled", err)
	}
}
