package models

import "time"

// AttendanceType tells whether the backend booked a record as an
// arrival or a departure.
type AttendanceType string

const (
	AttendanceCheckIn  AttendanceType = "CHECK_IN"
	AttendanceCheckOut AttendanceType = "CHECK_OUT"
)

// AttendanceRequest is the payload for recording attendance.
type AttendanceRequest struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	FacilityID int64   `json:"facilityId"`
}

// AttendanceRecord is the record created by the backend.
type AttendanceRecord struct {
	ID         int64          `json:"id"`
	FacilityID int64          `json:"facilityId"`
	Type       AttendanceType `json:"type"`
	RecordedAt time.Time      `json:"recordedAt"`
}
