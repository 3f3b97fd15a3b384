package safety

import (
	"fmt"
	"strings"

	"github.com/MuradAles/Hermes/internal/types"
)

// Thunderstorm condition codes (OpenWeatherMap group 2xx).
const (
	thunderstormCodeMin = 200
	thunderstormCodeMax = 300
)

const freezingPointF = 32.0

// Penalties holds the scoring deductions. The values are empirically chosen
// and kept overridable rather than derived.
type Penalties struct {
	IcingInstrument float64 // deduction for icing at the instrument-rated level
	VisibilityCap   float64 // max visibility deduction
	VisibilityPerMi float64 // deduction per mile of visibility deficit
	CeilingCap      float64 // max ceiling deduction
	CeilingPer100Ft float64 // deduction per 100 ft of ceiling deficit
	WindCap         float64 // max wind deduction
	WindPerKt       float64 // deduction per knot of wind excess
}

// DefaultPenalties returns the standard scoring deductions.
func DefaultPenalties() Penalties {
	return Penalties{
		IcingInstrument: 30,
		VisibilityCap:   30,
		VisibilityPerMi: 10,
		CeilingCap:      25,
		CeilingPer100Ft: 2,
		WindCap:         20,
		WindPerKt:       2,
	}
}

// Assessment is the result of scoring one observation against one level.
type Assessment struct {
	Status types.SafetyStatus
	Score  float64
	Reason string
}

// Assessor scores weather observations against certification minima.
type Assessor struct {
	penalties Penalties
	minima    map[types.CertificationLevel]types.Minima
}

// NewAssessor creates an Assessor with the given penalties and the canonical
// per-level minima.
func NewAssessor(p Penalties) *Assessor {
	return &Assessor{penalties: p, minima: types.LevelMinima}
}

// Assess scores one observation against one certification level's minima.
// It is a pure function of its inputs. Rules run in a fixed order: the
// thunderstorm and (for non-instrument levels) icing checks short-circuit to
// dangerous; the deficit checks accumulate deductions.
//
// An observation missing required fields fails loudly: unknown weather is
// never certified safe.
func (a *Assessor) Assess(obs types.WeatherObservation, level types.CertificationLevel) (Assessment, error) {
	if err := obs.Validate(); err != nil {
		return Assessment{}, err
	}

	minima, ok := a.minima[level]
	if !ok {
		return Assessment{}, fmt.Errorf("unknown certification level %q", level)
	}

	if obs.ConditionCode >= thunderstormCodeMin && obs.ConditionCode < thunderstormCodeMax {
		return Assessment{Status: types.StatusDangerous, Score: 0, Reason: "Thunderstorms present"}, nil
	}

	score := 100.0
	var issues []string

	if obs.TemperatureF <= freezingPointF && obs.PrecipitationMmHr > 0 {
		if level != types.LevelInstrument {
			return Assessment{Status: types.StatusDangerous, Score: 0, Reason: "Icing conditions detected"}, nil
		}
		score -= a.penalties.IcingInstrument
		issues = append(issues, "Icing conditions")
	}

	if minima.MinVisibilityMi > 0 && obs.VisibilityMi < minima.MinVisibilityMi {
		deficit := minima.MinVisibilityMi - obs.VisibilityMi
		issues = append(issues, fmt.Sprintf("Low visibility: %.1f mi (need %g mi)", obs.VisibilityMi, minima.MinVisibilityMi))
		score -= min(a.penalties.VisibilityCap, deficit*a.penalties.VisibilityPerMi)
	}

	if minima.MinCeilingFt > 0 && obs.CeilingFt < minima.MinCeilingFt {
		deficit := float64(minima.MinCeilingFt-obs.CeilingFt) / 100
		issues = append(issues, fmt.Sprintf("Low ceiling: %d ft (need %d ft)", obs.CeilingFt, minima.MinCeilingFt))
		score -= min(a.penalties.CeilingCap, deficit*a.penalties.CeilingPer100Ft)
	}

	if obs.WindSpeedKt > minima.MaxWindKt {
		excess := obs.WindSpeedKt - minima.MaxWindKt
		issues = append(issues, fmt.Sprintf("High winds: %.0f kt (max %g kt)", obs.WindSpeedKt, minima.MaxWindKt))
		score -= min(a.penalties.WindCap, excess*a.penalties.WindPerKt)
	}

	if score < 0 {
		score = 0
	}

	reason := "Conditions acceptable"
	if len(issues) > 0 {
		reason = strings.Join(issues, "; ")
	}

	return Assessment{Status: statusForScore(score), Score: score, Reason: reason}, nil
}

func statusForScore(score float64) types.SafetyStatus {
	switch {
	case score >= 80:
		return types.StatusSafe
	case score >= 50:
		return types.StatusMarginal
	default:
		return types.StatusDangerous
	}
}
