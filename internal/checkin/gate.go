package checkin

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/checkpointhr/attendcli/internal/facility"
	"github.com/checkpointhr/attendcli/internal/location"
	"github.com/checkpointhr/attendcli/internal/models"
)

// Gate applies the check-in policy. It performs no I/O.
type Gate struct{}

// NewGate returns a Gate.
func NewGate() *Gate {
	return &Gate{}
}

// Decide checks the scanned facility against the position in fix.
// Preconditions are checked in order: a failed or invalid fix denies with
// LOCATION_UNAVAILABLE, then an empty facility list with NO_FACILITIES.
func (g *Gate) Decide(fix location.Fix, scanned models.Facility, facilities []models.Facility) Decision {
	if d, ok := g.preconditions(fix, facilities); !ok {
		return d
	}

	candidates := lo.UniqBy(append(append([]models.Facility{}, facilities...), scanned), func(f models.Facility) int64 {
		return f.ID
	})
	results := facility.Evaluate(fix.Point, candidates)

	result, ok := lo.Find(results, func(r models.ProximityResult) bool {
		return r.Facility.ID == scanned.ID
	})
	if !ok {
		// unreachable: scanned is always a candidate
		return deny(ReasonFacilityNotFound, fmt.Errorf("%w: id %d", facility.ErrFacilityNotFound, scanned.ID))
	}

	point := fix.Point
	f := result.Facility
	distance := result.DistanceMeters
	d := Decision{
		Verdict:        Authorize,
		Reason:         ReasonWithinRange,
		Facility:       &f,
		DistanceMeters: &distance,
		Position:       &point,
	}
	if !result.InRange {
		d.Verdict = Deny
		d.Reason = ReasonOutOfRange
	}

	return d
}

// DecideScan resolves raw scanned text against facilities and then
// decides as Decide does. The location and facility preconditions are
// checked before the payload is looked at.
func (g *Gate) DecideScan(fix location.Fix, raw string, facilities []models.Facility) Decision {
	if d, ok := g.preconditions(fix, facilities); !ok {
		return d
	}

	// inactive facilities cannot be checked in to, so they do not match
	scanned, err := facility.Match(raw, facility.Active(facilities))
	if err != nil {
		point := fix.Point
		reason := ReasonMalformedPayload
		if errors.Is(err, facility.ErrFacilityNotFound) {
			reason = ReasonFacilityNotFound
		}
		d := deny(reason, err)
		d.Position = &point
		return d
	}

	return g.Decide(fix, scanned, facilities)
}

func (g *Gate) preconditions(fix location.Fix, facilities []models.Facility) (Decision, bool) {
	if !fix.OK() {
		return deny(ReasonLocationUnavailable, fix.Err), false
	}
	if !fix.Point.Valid() {
		return deny(ReasonLocationUnavailable, fmt.Errorf("%w: invalid point %s", location.ErrUnavailable, fix.Point)), false
	}
	if len(facilities) == 0 {
		point := fix.Point
		d := deny(ReasonNoFacilities, nil)
		d.Position = &point
		return d, false
	}
	return Decision{}, true
}
