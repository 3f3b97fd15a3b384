package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/MuradAles/Hermes/internal/eval"
	"github.com/MuradAles/Hermes/internal/notify"
	"github.com/MuradAles/Hermes/internal/types"
)

// Flights checked per monitoring run, oldest departure first.
const defaultBatchLimit = 50

// FlightStore is the persistence the scheduler needs.
type FlightStore interface {
	ListActiveFutureFlights(limit int) ([]*types.ScheduledFlight, error)
	UpdateFlightWeatherState(id string, checkpoints []types.Checkpoint, verdict types.PathVerdict, needsRescheduling bool) error
	RecordAlertSent(id string, at time.Time) error
}

// AlertSender publishes safety alerts.
type AlertSender interface {
	PublishSafetyAlert(alert *notify.Alert) error
}

// AlertGate decides whether a flight may be alerted now.
type AlertGate interface {
	Allow(flightID string) (bool, error)
}

// Scheduler re-evaluates scheduled flights against current forecasts and
// raises alerts when conditions turn unsafe.
type Scheduler struct {
	store      FlightStore
	evaluator  *eval.Evaluator
	gate       AlertGate
	sender     AlertSender
	batchLimit int
	now        func() time.Time
}

// New creates a Scheduler with the default batch limit.
func New(store FlightStore, evaluator *eval.Evaluator, gate AlertGate, sender AlertSender) *Scheduler {
	return &Scheduler{
		store:      store,
		evaluator:  evaluator,
		gate:       gate,
		sender:     sender,
		batchLimit: defaultBatchLimit,
		now:        time.Now,
	}
}

// SetBatchLimit overrides how many flights one run checks.
func (s *Scheduler) SetBatchLimit(limit int) {
	if limit > 0 {
		s.batchLimit = limit
	}
}

// Run executes one monitoring pass: list active future flights, evaluate each
// concurrently, persist the outcome, and alert on unsafe conditions. A failure
// in one flight never disturbs the others; only a failed listing aborts.
func (s *Scheduler) Run(ctx context.Context) error {
	flights, err := s.store.ListActiveFutureFlights(s.batchLimit)
	if err != nil {
		return err
	}

	var wg sync.WaitGroup
	for _, flight := range flights {
		wg.Add(1)
		go func(f *types.ScheduledFlight) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Warning: panic while checking flight %s: %v", f.ID, r)
				}
			}()
			s.checkFlight(ctx, f)
		}(flight)
	}
	wg.Wait()

	return nil
}

// checkFlight evaluates one flight and handles persistence and alerting.
func (s *Scheduler) checkFlight(ctx context.Context, f *types.ScheduledFlight) {
	result, err := s.evaluator.EvaluateRoute(ctx, f.Departure, f.Arrival, f.Level, f.ScheduledTime)
	if err != nil {
		log.Printf("Warning: failed to evaluate flight %s (%s-%s): %v", f.ID, f.Departure.Code, f.Arrival.Code, err)
		return
	}

	verdict := result.Verdict
	unsafe := verdict.Color == types.ColorRed ||
		(verdict.Color == types.ColorYellow && f.Level.Restrictive())

	// An unsafe verdict marks the flight for rescheduling; a green one
	// clears any earlier mark.
	needsRescheduling := f.NeedsRescheduling
	if unsafe {
		needsRescheduling = true
	} else if verdict.Color == types.ColorGreen {
		needsRescheduling = false
	}

	// Persist before alerting so the stored state never lags a sent alert.
	if err := s.store.UpdateFlightWeatherState(f.ID, result.Checkpoints, verdict, needsRescheduling); err != nil {
		log.Printf("Warning: failed to persist weather state for flight %s: %v", f.ID, err)
		return
	}

	if f.LastColor != "" && f.LastColor != verdict.Color {
		log.Printf("Flight %s (%s-%s) changed %s -> %s", f.ID, f.Departure.Code, f.Arrival.Code, f.LastColor, verdict.Color)
	}

	if !unsafe {
		return
	}

	// The gate dedups: a still-unsafe flight is re-alerted only after the
	// cooldown expires.
	allowed, err := s.gate.Allow(f.ID)
	if err != nil {
		log.Printf("Warning: alert gate failed for flight %s: %v", f.ID, err)
		return
	}
	if !allowed {
		return
	}

	issues := make([]string, 0, len(result.Checkpoints))
	seen := make(map[string]bool)
	for _, cp := range result.Checkpoints {
		if cp.Reason == "" || cp.Reason == "Conditions acceptable" || seen[cp.Reason] {
			continue
		}
		seen[cp.Reason] = true
		issues = append(issues, cp.Reason)
	}

	sentAt := s.now()
	alert := &notify.Alert{
		FlightID:      f.ID,
		StudentName:   f.StudentName,
		Departure:     f.Departure.Code,
		Arrival:       f.Arrival.Code,
		ScheduledTime: f.ScheduledTime,
		Color:         verdict.Color,
		Status:        verdict.Status,
		Score:         verdict.Score,
		Issues:        issues,
		SentAt:        sentAt,
	}
	if err := s.sender.PublishSafetyAlert(alert); err != nil {
		log.Printf("Warning: failed to publish alert for flight %s: %v", f.ID, err)
		return
	}

	// Recorded only after a successful publish, so a failed send does not
	// consume the cooldown.
	if err := s.store.RecordAlertSent(f.ID, sentAt); err != nil {
		log.Printf("Warning: failed to record alert for flight %s: %v", f.ID, err)
	}
}
