package weather

// estimateCeilingFt estimates the cloud ceiling in feet AGL from cloud
// coverage, the condition code, and visibility. The upstream API only reports
// cloud percentage, so this is a band estimate; a METAR/TAF source would
// replace it for operational use.
func estimateCeilingFt(cloudPct, conditionCode int, visibilityMi float64) int {
	switch {
	case cloudPct < 10: // clear
		return 25000
	case cloudPct < 30: // few
		return 12000
	case cloudPct < 60: // scattered
		return 8000
	case cloudPct < 80: // broken, lower with poor visibility
		if visibilityMi < 3 {
			return 1000
		}
		if visibilityMi < 5 {
			return 2000
		}
		return 4500
	}

	// Overcast: the weather type drives the estimate.
	switch {
	case conditionCode >= 200 && conditionCode < 300: // thunderstorm
		return 800
	case conditionCode >= 500 && conditionCode < 600: // rain
		return 1200
	case conditionCode >= 300 && conditionCode < 500: // drizzle
		return 2500
	case conditionCode >= 600 && conditionCode < 700: // snow
		return 2000
	case conditionCode >= 700 && conditionCode < 800: // fog, mist
		return 500
	}

	// High overcast: visibility as a proxy.
	switch {
	case visibilityMi < 1:
		return 500
	case visibilityMi < 3:
		return 1500
	case visibilityMi < 5:
		return 3000
	case visibilityMi < 8:
		return 5000
	}
	return 6000
}
