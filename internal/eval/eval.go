package eval

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/MuradAles/Hermes/internal/path"
	"github.com/MuradAles/Hermes/internal/safety"
	"github.com/MuradAles/Hermes/internal/types"
	"github.com/MuradAles/Hermes/internal/weather"
)

// Pause between consecutive waypoint lookups, to stay friendly with
// upstream API rate limits.
const defaultLookupDelay = 200 * time.Millisecond

// Evaluation is the result of evaluating one route at one departure time.
type Evaluation struct {
	Path        *types.FlightPath
	Checkpoints []types.Checkpoint
	Verdict     types.PathVerdict
	// LookupErrors holds per-waypoint failures; the affected waypoints are
	// excluded from Checkpoints instead of failing the whole evaluation.
	LookupErrors []error
}

// Evaluator builds a flight path and scores the weather along it.
type Evaluator struct {
	provider weather.Provider
	builder  *path.Builder
	assessor *safety.Assessor
	delay    time.Duration
}

// New creates an Evaluator with the default waypoint lookup delay.
func New(provider weather.Provider, builder *path.Builder, assessor *safety.Assessor) *Evaluator {
	return &Evaluator{
		provider: provider,
		builder:  builder,
		assessor: assessor,
		delay:    defaultLookupDelay,
	}
}

// SetLookupDelay overrides the pause between waypoint lookups.
func (e *Evaluator) SetLookupDelay(d time.Duration) {
	e.delay = d
}

// EvaluateRoute builds the path from departure to arrival, looks up weather at
// every waypoint's ETA, scores each against the certification level, and
// aggregates the verdict. Waypoints whose lookup or assessment fails are
// skipped and collected; if nothing survives, the verdict is dangerous.
func (e *Evaluator) EvaluateRoute(ctx context.Context, departure, arrival types.Location, level types.CertificationLevel, departureTime time.Time) (*Evaluation, error) {
	fp, err := e.builder.Build(departure, arrival, departureTime)
	if err != nil {
		return nil, err
	}

	checkpoints := make([]types.Checkpoint, 0, len(fp.Waypoints))
	var lookupErrors []error

	for i, wp := range fp.Waypoints {
		if i > 0 && e.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.delay):
			}
		}

		obs, err := e.provider.GetWeather(ctx, wp.Lat, wp.Lon, wp.ETA)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Warning: weather lookup failed at waypoint %d (%.4f, %.4f): %v", i, wp.Lat, wp.Lon, err)
			lookupErrors = append(lookupErrors, fmt.Errorf("waypoint %d: %w", i, err))
			continue
		}

		assessment, err := e.assessor.Assess(*obs, level)
		if err != nil {
			log.Printf("Warning: assessment failed at waypoint %d: %v", i, err)
			lookupErrors = append(lookupErrors, fmt.Errorf("waypoint %d: %w", i, err))
			continue
		}

		checkpoints = append(checkpoints, types.Checkpoint{
			Lat:     wp.Lat,
			Lon:     wp.Lon,
			Time:    wp.ETA,
			Weather: *obs,
			Status:  assessment.Status,
			Score:   assessment.Score,
			Reason:  assessment.Reason,
		})
	}

	return &Evaluation{
		Path:         fp,
		Checkpoints:  checkpoints,
		Verdict:      safety.Aggregate(checkpoints, level),
		LookupErrors: lookupErrors,
	}, nil
}
