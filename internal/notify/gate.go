package notify

import (
	"fmt"
	"time"
)

// Alerts for the same flight are suppressed for this long after one is sent.
const defaultCooldown = 24 * time.Hour

// AlertLog is the persistence the gate consults. The store satisfies it.
type AlertLog interface {
	GetLastAlertTimestamp(flightID string) (time.Time, error)
}

// Gate rate-limits alerts per flight. It only reads the log; the caller
// records the send after it actually succeeds, so a failed publish does not
// burn the cooldown window.
type Gate struct {
	log      AlertLog
	cooldown time.Duration
	now      func() time.Time
}

// NewGate creates a gate with the default 24-hour cooldown.
func NewGate(log AlertLog) *Gate {
	return &Gate{
		log:      log,
		cooldown: defaultCooldown,
		now:      time.Now,
	}
}

// Allow reports whether an alert for the flight may be sent now.
func (g *Gate) Allow(flightID string) (bool, error) {
	last, err := g.log.GetLastAlertTimestamp(flightID)
	if err != nil {
		return false, fmt.Errorf("failed to look up last alert for flight %s: %w", flightID, err)
	}
	if last.IsZero() {
		return true, nil
	}
	return g.now().Sub(last) >= g.cooldown, nil
}
