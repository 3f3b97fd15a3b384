package path

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/MuradAles/Hermes/internal/geo"
	"github.com/MuradAles/Hermes/internal/types"
)

// ErrInvalidRoute is returned when departure and arrival resolve to the same
// point. A zero-length route is a validation error, never a one-waypoint path.
var ErrInvalidRoute = errors.New("invalid route: departure and arrival are the same location")

// Config holds the tunable parameters of path generation. The defaults match
// a typical single-engine training aircraft.
type Config struct {
	SpacingNM       float64 // max distance between consecutive waypoints
	GroundSpeedKt   float64 // average cruise ground speed for ETAs
	ClimbFraction   float64 // fraction of the route spent climbing (and descending)
	MaxClimbNM      float64 // cap on climb/descent distance
	DepartureElevFt int     // field elevation assumed at departure
	ArrivalElevFt   int     // field elevation assumed at arrival
	PatternAGLFt    int     // pattern altitude above field elevation
	TerrainClearFt  int     // required clearance over estimated terrain
}

// DefaultConfig returns the standard path generation parameters.
func DefaultConfig() Config {
	return Config{
		SpacingNM:       50,
		GroundSpeedKt:   120,
		ClimbFraction:   0.15,
		MaxClimbNM:      50,
		DepartureElevFt: 700,
		ArrivalElevFt:   500,
		PatternAGLFt:    1000,
		TerrainClearFt:  2000,
	}
}

// Builder generates flight paths with waypoints, an altitude profile, and ETAs.
type Builder struct {
	cfg Config
}

// NewBuilder creates a Builder. Zero-valued config fields fall back to defaults.
func NewBuilder(cfg Config) *Builder {
	def := DefaultConfig()
	if cfg.SpacingNM <= 0 {
		cfg.SpacingNM = def.SpacingNM
	}
	if cfg.GroundSpeedKt <= 0 {
		cfg.GroundSpeedKt = def.GroundSpeedKt
	}
	if cfg.ClimbFraction <= 0 {
		cfg.ClimbFraction = def.ClimbFraction
	}
	if cfg.MaxClimbNM <= 0 {
		cfg.MaxClimbNM = def.MaxClimbNM
	}
	if cfg.DepartureElevFt <= 0 {
		cfg.DepartureElevFt = def.DepartureElevFt
	}
	if cfg.ArrivalElevFt <= 0 {
		cfg.ArrivalElevFt = def.ArrivalElevFt
	}
	if cfg.PatternAGLFt <= 0 {
		cfg.PatternAGLFt = def.PatternAGLFt
	}
	if cfg.TerrainClearFt <= 0 {
		cfg.TerrainClearFt = def.TerrainClearFt
	}
	return &Builder{cfg: cfg}
}

// Build generates the waypoint sequence for a route and assigns ETAs from the
// departure time. Waypoints are spaced at most cfg.SpacingNM apart and always
// include the departure and arrival points.
func (b *Builder) Build(departure, arrival types.Location, departureTime time.Time) (*types.FlightPath, error) {
	from := geo.Point{Lat: departure.Lat, Lon: departure.Lon}
	to := geo.Point{Lat: arrival.Lat, Lon: arrival.Lon}

	total := geo.DistanceNM(from, to)
	if total < 0.1 {
		return nil, fmt.Errorf("%w (%s -> %s)", ErrInvalidRoute, departure.Code, arrival.Code)
	}

	cruise := b.cruiseAltitude(from, to, total)

	count := int(math.Ceil(total/b.cfg.SpacingNM)) + 1
	if count < 2 {
		count = 2
	}

	waypoints := make([]types.Waypoint, 0, count)
	for i := 0; i < count; i++ {
		fraction := float64(i) / float64(count-1)
		dist := total * fraction
		pt := geo.Interpolate(from, to, fraction)

		waypoints = append(waypoints, types.Waypoint{
			Lat:                 pt.Lat,
			Lon:                 pt.Lon,
			AltitudeFt:          int(math.Round(b.waypointAltitude(dist, total, cruise))),
			DistanceFromStartNM: dist,
			ETA:                 departureTime.Add(time.Duration(dist / b.cfg.GroundSpeedKt * float64(time.Hour))),
		})
	}

	return &types.FlightPath{
		Waypoints:        waypoints,
		TotalDistanceNM:  total,
		EstimatedMinutes: total / b.cfg.GroundSpeedKt * 60,
		CruiseAltitudeFt: cruise,
	}, nil
}

// cruiseAltitude picks a cruise altitude from distance bands, applies the VFR
// hemispheric convention (eastbound odd thousands + 500, westbound even
// thousands + 500), and raises it when estimated terrain demands clearance.
func (b *Builder) cruiseAltitude(from, to geo.Point, totalNM float64) int {
	bearing := geo.BearingDeg(from, to)
	eastbound := bearing < 180

	var base int
	switch {
	case totalNM < 100:
		base = 3500
	case totalNM < 300:
		base = 5500
	case totalNM < 600:
		base = 7500
	default:
		base = 9500
	}

	if !eastbound {
		base += 1000
	}

	mid := geo.Interpolate(from, to, 0.5)
	minSafe := estimateTerrainFt(mid.Lat, mid.Lon) + b.cfg.TerrainClearFt
	if base < minSafe {
		levels := []int{3500, 5500, 7500, 9500, 11500}
		if !eastbound {
			levels = []int{4500, 6500, 8500, 10500, 12500}
		}
		raised := base + 2000
		for _, alt := range levels {
			if alt >= minSafe {
				raised = alt
				break
			}
		}
		base = raised
	}

	return base
}

// waypointAltitude produces the 3-phase climb/cruise/descent profile. The
// climb and descent each cover ClimbFraction of the route, capped at
// MaxClimbNM, anchored at pattern altitude over the field elevations.
func (b *Builder) waypointAltitude(distFromStart, totalNM float64, cruiseFt int) float64 {
	climbNM := math.Min(b.cfg.MaxClimbNM, totalNM*b.cfg.ClimbFraction)
	descentNM := climbNM

	takeoffAlt := float64(b.cfg.DepartureElevFt + b.cfg.PatternAGLFt)
	landingAlt := float64(b.cfg.ArrivalElevFt + b.cfg.PatternAGLFt)
	cruise := float64(cruiseFt)

	if distFromStart <= climbNM {
		return takeoffAlt + (cruise-takeoffAlt)*(distFromStart/climbNM)
	}

	remaining := totalNM - distFromStart
	if remaining <= descentNM {
		return landingAlt + (cruise-landingAlt)*(remaining/descentNM)
	}

	return cruise
}

// estimateTerrainFt is a coarse regional terrain model for the continental US.
// Each region returns the middle of its elevation band so path generation is
// reproducible; a production deployment would query a terrain service.
func estimateTerrainFt(lat, lon float64) int {
	switch {
	case lat >= 37 && lat <= 49 && lon >= -115 && lon <= -102:
		return 6500 // Rocky Mountains
	case lat >= 33 && lat <= 44 && lon >= -84 && lon <= -75:
		return 2250 // Appalachians
	case lat >= 31 && lat <= 37 && lon >= -115 && lon <= -102:
		return 4000 // Desert Southwest
	case lat >= 35 && lat <= 49 && lon >= -104 && lon <= -94:
		return 1500 // Great Plains
	default:
		return 450 // coastal and lowland
	}
}
