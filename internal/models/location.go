package models

import "fmt"

// GeoPoint is a WGS-84 coordinate in decimal degrees.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" validate:"lat"`
	Longitude float64 `json:"longitude" validate:"lng"`
}

// NewGeoPoint returns a GeoPoint for the given coordinates.
func NewGeoPoint(lat, lng float64) GeoPoint {
	return GeoPoint{Latitude: lat, Longitude: lng}
}

// Valid reports whether the latitude is within [-90, 90] and the
// longitude within [-180, 180]. NaN is never valid.
func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f, %.6f", p.Latitude, p.Longitude)
}
