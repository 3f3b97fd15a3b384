package safety

import "github.com/MuradAles/Hermes/internal/types"

// marginalFraction is the share of marginal checkpoints above which the whole
// path is considered marginal.
const marginalFraction = 0.25

// Aggregate reduces a checkpoint list to one path verdict for the given
// certification level.
//
// An empty list is a hard failure and resolves to dangerous with score 0,
// never to "unknown". A single dangerous checkpoint makes the whole path
// dangerous, also with score 0: reporting an average there would imply
// partial safety.
func Aggregate(checkpoints []types.Checkpoint, level types.CertificationLevel) types.PathVerdict {
	status, score := overall(checkpoints)
	return types.PathVerdict{
		Status: status,
		Score:  score,
		Color:  ColorFor(status, level),
	}
}

func overall(checkpoints []types.Checkpoint) (types.SafetyStatus, float64) {
	if len(checkpoints) == 0 {
		return types.StatusDangerous, 0
	}

	marginal := 0
	sum := 0.0
	for _, cp := range checkpoints {
		if cp.Status == types.StatusDangerous {
			return types.StatusDangerous, 0
		}
		if cp.Status == types.StatusMarginal {
			marginal++
		}
		sum += cp.Score
	}

	avg := sum / float64(len(checkpoints))
	if float64(marginal)/float64(len(checkpoints)) > marginalFraction {
		return types.StatusMarginal, avg
	}
	return types.StatusSafe, avg
}

// ColorFor maps a path status to an alert color for a certification level.
// Dangerous is always RED and safe always GREEN; marginal maps to RED for the
// two most restrictive levels, which may only fly in GREEN conditions, and
// YELLOW otherwise.
func ColorFor(status types.SafetyStatus, level types.CertificationLevel) types.SafetyColor {
	switch status {
	case types.StatusDangerous:
		return types.ColorRed
	case types.StatusSafe:
		return types.ColorGreen
	default:
		if level.Restrictive() {
			return types.ColorRed
		}
		return types.ColorYellow
	}
}
