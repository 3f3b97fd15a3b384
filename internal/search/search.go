package search

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/MuradAles/Hermes/internal/eval"
	"github.com/MuradAles/Hermes/internal/types"
)

const (
	// Candidate departures per day, at these local hours.
	searchDays    = 5
	maxCandidates = 20
)

var candidateHours = []int{6, 12, 18}

// Candidate is one evaluated departure slot.
type Candidate struct {
	ScheduledTime time.Time          `json:"scheduled_time"`
	Status        types.SafetyStatus `json:"status"`
	Score         float64            `json:"score"`
	WaypointCount int                `json:"waypoint_count"`
	TopIssues     []string           `json:"top_issues,omitempty"`
	Checkpoints   []types.Checkpoint `json:"checkpoints,omitempty"`
	Err           error              `json:"-"`
}

// Result is the outcome of a safe-window search.
type Result struct {
	Success       bool               `json:"success"`
	ScheduledTime *time.Time         `json:"scheduled_time,omitempty"`
	Checkpoints   []types.Checkpoint `json:"checkpoints,omitempty"`
	Attempts      int                `json:"attempts"`
	AllResults    []Candidate        `json:"all_results"`
	Reason        string             `json:"reason,omitempty"`
}

// statusErr marks candidates whose evaluation failed outright; they rank
// below dangerous slots.
const statusErr types.SafetyStatus = "error"

// Searcher scans upcoming departure slots for a safe window.
type Searcher struct {
	evaluator *eval.Evaluator
	now       func() time.Time
}

// New creates a Searcher.
func New(evaluator *eval.Evaluator) *Searcher {
	return &Searcher{evaluator: evaluator, now: time.Now}
}

// Find evaluates departure slots at 06:00, 12:00 and 18:00 over the next
// five days (starting from the preferred date, skipping slots already past)
// and returns the first chronologically safe one. When no slot is safe, the
// result carries every candidate ranked best-first. An error is returned only
// when the route itself is invalid.
func (s *Searcher) Find(ctx context.Context, departure, arrival types.Location, level types.CertificationLevel, from time.Time) (*Result, error) {
	now := s.now()
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	var slots []time.Time
	for d := 0; d < searchDays && len(slots) < maxCandidates; d++ {
		for _, h := range candidateHours {
			slot := day.AddDate(0, 0, d).Add(time.Duration(h) * time.Hour)
			if !slot.After(now) {
				continue
			}
			slots = append(slots, slot)
			if len(slots) == maxCandidates {
				break
			}
		}
	}
	if len(slots) == 0 {
		return &Result{Reason: "no future departure slots in the search window"}, nil
	}

	candidates := make([]Candidate, len(slots))
	var wg sync.WaitGroup
	for i, slot := range slots {
		wg.Add(1)
		go func(i int, slot time.Time) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Warning: panic evaluating slot %s: %v", slot, r)
					candidates[i] = Candidate{
						ScheduledTime: slot,
						Status:        statusErr,
						Err:           fmt.Errorf("panic: %v", r),
					}
				}
			}()
			candidates[i] = s.evaluateSlot(ctx, departure, arrival, level, slot)
		}(i, slot)
	}
	wg.Wait()

	// Route problems fail every slot identically; surface them as an error.
	if firstErr := candidates[0].Err; firstErr != nil {
		allFailed := true
		for _, c := range candidates {
			if c.Err == nil {
				allFailed = false
				break
			}
		}
		if allFailed {
			return nil, firstErr
		}
	}

	// First safe slot in chronological order wins.
	for _, c := range candidates {
		if c.Err == nil && c.Status == types.StatusSafe {
			t := c.ScheduledTime
			return &Result{
				Success:       true,
				ScheduledTime: &t,
				Checkpoints:   c.Checkpoints,
				Attempts:      len(candidates),
				AllResults:    rank(candidates),
			}, nil
		}
	}

	return &Result{
		Attempts:   len(candidates),
		AllResults: rank(candidates),
		Reason:     fmt.Sprintf("no safe departure window found in %d candidate slots", len(candidates)),
	}, nil
}

func (s *Searcher) evaluateSlot(ctx context.Context, departure, arrival types.Location, level types.CertificationLevel, slot time.Time) Candidate {
	result, err := s.evaluator.EvaluateRoute(ctx, departure, arrival, level, slot)
	if err != nil {
		return Candidate{ScheduledTime: slot, Status: statusErr, Err: err}
	}

	var issues []string
	seen := make(map[string]bool)
	for _, cp := range result.Checkpoints {
		if cp.Reason == "" || cp.Reason == "Conditions acceptable" || seen[cp.Reason] {
			continue
		}
		seen[cp.Reason] = true
		issues = append(issues, cp.Reason)
	}

	return Candidate{
		ScheduledTime: slot,
		Status:        result.Verdict.Status,
		Score:         result.Verdict.Score,
		WaypointCount: len(result.Path.Waypoints),
		TopIssues:     issues,
		Checkpoints:   result.Checkpoints,
	}
}

var statusRank = map[types.SafetyStatus]int{
	types.StatusSafe:      0,
	types.StatusMarginal:  1,
	types.StatusDangerous: 2,
	statusErr:             3,
}

// rank orders candidates best-first: by status, then score descending, then
// by time for stability.
func rank(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if statusRank[ranked[i].Status] != statusRank[ranked[j].Status] {
			return statusRank[ranked[i].Status] < statusRank[ranked[j].Status]
		}
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ScheduledTime.Before(ranked[j].ScheduledTime)
	})
	return ranked
}
