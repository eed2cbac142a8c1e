// Package facility classifies facilities against a user position and
// resolves scanned facility QR payloads.
package facility

import (
	"github.com/samber/lo"

	"github.com/checkpointhr/attendcli/internal/geo"
	"github.com/checkpointhr/attendcli/internal/models"
)

// Evaluate returns one ProximityResult per facility, in input order.
// A facility is in range when the distance is at most its allowed radius.
func Evaluate(user models.GeoPoint, facilities []models.Facility) []models.ProximityResult {
	return lo.Map(facilities, func(f models.Facility, _ int) models.ProximityResult {
		d := geo.Distance(user, f.Location())
		return models.ProximityResult{
			Facility:       f,
			DistanceMeters: d,
			InRange:        d <= f.AllowedRadius,
		}
	})
}

// BestMatch picks the closest in-range result. Equal distances are broken
// by the smaller facility id. The second return is false when nothing is
// in range.
func BestMatch(results []models.ProximityResult) (models.ProximityResult, bool) {
	inRange := lo.Filter(results, func(r models.ProximityResult, _ int) bool {
		return r.InRange
	})
	if len(inRange) == 0 {
		return models.ProximityResult{}, false
	}

	best := lo.MinBy(inRange, func(a, b models.ProximityResult) bool {
		if a.DistanceMeters != b.DistanceMeters {
			return a.DistanceMeters < b.DistanceMeters
		}
		return a.Facility.ID < b.Facility.ID
	})
	return best, true
}

// Active returns the facilities that are marked active, preserving order.
func Active(facilities []models.Facility) []models.Facility {
	return lo.Filter(facilities, func(f models.Facility, _ int) bool {
		return f.Active
	})
}
