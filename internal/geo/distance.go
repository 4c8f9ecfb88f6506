// Package geo provides the great-circle distance primitive used by the
// geofence check.
package geo

import "math"

// earthRadiusMeters is the spherical Earth model radius.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the haversine great-circle distance in meters
// between two coordinates. Pure and deterministic; NaN inputs propagate
// NaN, callers must guard.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
