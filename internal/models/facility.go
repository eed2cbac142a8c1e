package models

// Facility is a registered site with a circular geofence.
type Facility struct {
	ID            int64   `json:"id" validate:"gt=0"`
	Name          string  `json:"name" validate:"required"`
	Address       string  `json:"address"`
	Latitude      float64 `json:"latitude" validate:"lat"`
	Longitude     float64 `json:"longitude" validate:"lng"`
	AllowedRadius float64 `json:"allowDistance" validate:"radius"` // meters
	Active        bool    `json:"active"`
}

// Location returns the facility center.
func (f Facility) Location() GeoPoint {
	return GeoPoint{Latitude: f.Latitude, Longitude: f.Longitude}
}

// ProximityResult classifies one facility against a user position.
type ProximityResult struct {
	Facility       Facility `json:"facility"`
	DistanceMeters float64  `json:"distanceMeters"`
	InRange        bool     `json:"inRange"`
}
