// Package checkin decides whether a scanned facility may be checked in
// to from the current position, and submits authorized check-ins.
package checkin

import (
	"github.com/checkpointhr/attendcli/internal/models"
)

// Verdict is the outcome of a check-in decision.
type Verdict string

const (
	Authorize Verdict = "AUTHORIZE"
	Deny      Verdict = "DENY"
)

// Reason explains a verdict.
type Reason string

const (
	ReasonWithinRange         Reason = "WITHIN_RANGE"
	ReasonOutOfRange          Reason = "OUT_OF_RANGE"
	ReasonNoFacilities        Reason = "NO_FACILITIES"
	ReasonLocationUnavailable Reason = "LOCATION_UNAVAILABLE"
	ReasonFacilityNotFound    Reason = "FACILITY_NOT_FOUND"
	ReasonMalformedPayload    Reason = "MALFORMED_PAYLOAD"
)

// Decision is the gate's answer for one attempt. Facility and
// DistanceMeters are set only when a distance was computed.
type Decision struct {
	Verdict        Verdict
	Reason         Reason
	Facility       *models.Facility
	DistanceMeters *float64

	// Position is the fix the decision was made from, if any.
	Position *models.GeoPoint
	// Cause is the underlying error for LOCATION_UNAVAILABLE and scan denials.
	Cause error
	// AttemptID links the decision to its journal entry.
	AttemptID string
}

// Authorized reports whether the decision allows submission.
func (d Decision) Authorized() bool {
	return d.Verdict == Authorize
}

func deny(reason Reason, cause error) Decision {
	return Decision{Verdict: Deny, Reason: reason, Cause: cause}
}
