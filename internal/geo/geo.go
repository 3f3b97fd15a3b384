package geo

import "math"

// EarthRadiusNM is the mean Earth radius in nautical miles.
const EarthRadiusNM = 3440.065

// Point is a position on the Earth's surface in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func toDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

// DistanceNM returns the great-circle distance between a and b in nautical
// miles, using the haversine formula.
func DistanceNM(a, b Point) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	dPhi := phi2 - phi1
	dLambda := toRadians(b.Lon - a.Lon)

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusNM * c
}

// BearingDeg returns the initial great-circle bearing from a to b,
// normalized to [0, 360).
func BearingDeg(a, b Point) float64 {
	phi1 := toRadians(a.Lat)
	phi2 := toRadians(b.Lat)
	dLambda := toRadians(b.Lon - a.Lon)

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	theta := math.Atan2(y, x)

	return math.Mod(toDegrees(theta)+360.0, 360.0)
}

// Interpolate returns the point at the given fraction along the great-circle
// arc from a to b. fraction 0 yields a, 1 yields b. Identical or antipodal
// endpoints degenerate to the start point rather than dividing by sin(0).
func Interpolate(a, b Point, fraction float64) Point {
	phi1 := toRadians(a.Lat)
	lambda1 := toRadians(a.Lon)
	phi2 := toRadians(b.Lat)
	lambda2 := toRadians(b.Lon)

	delta := 2 * math.Asin(math.Sqrt(
		math.Sin((phi2-phi1)/2)*math.Sin((phi2-phi1)/2)+
			math.Cos(phi1)*math.Cos(phi2)*math.Sin((lambda2-lambda1)/2)*math.Sin((lambda2-lambda1)/2)))

	sinDelta := math.Sin(delta)
	if sinDelta == 0 {
		return a
	}

	fa := math.Sin((1-fraction)*delta) / sinDelta
	fb := math.Sin(fraction*delta) / sinDelta
	x := fa*math.Cos(phi1)*math.Cos(lambda1) + fb*math.Cos(phi2)*math.Cos(lambda2)
	y := fa*math.Cos(phi1)*math.Sin(lambda1) + fb*math.Cos(phi2)*math.Sin(lambda2)
	z := fa*math.Sin(phi1) + fb*math.Sin(phi2)

	return Point{
		Lat: toDegrees(math.Atan2(z, math.Sqrt(x*x+y*y))),
		Lon: toDegrees(math.Atan2(y, x)),
	}
}
