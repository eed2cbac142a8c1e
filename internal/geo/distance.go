// Package geo computes great-circle distances on a spherical Earth.
package geo

import (
	"math"

	"github.com/checkpointhr/attendcli/internal/models"
)

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6371000.0

// Distance returns the haversine distance between a and b in meters.
// Inputs are not validated; NaN coordinates yield NaN.
func Distance(a, b models.GeoPoint) float64 {
	phi1 := toRad(a.Latitude)
	phi2 := toRad(b.Latitude)
	deltaPhi := toRad(b.Latitude - a.Latitude)
	deltaLambda := toRad(b.Longitude - a.Longitude)

	h := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*
			math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)

	// rounding can push h a hair outside [0, 1] for antipodal points
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
