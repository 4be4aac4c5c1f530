// Package zone resolves which delivery zone, if any, covers a drop-off
// coordinate. Resolution is deterministic: among active zones containing the
// point the highest priority wins, and equal priorities fall back to id order.
package zone

import (
	"github.com/pranzo/pricing-api/internal/geo"
)

// Zone is a delivery area owned by an organization.
type Zone struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Polygon  geo.Polygon `json:"polygon"`
	Priority int         `json:"priority"`
	Active   bool        `json:"active"`
	// Fee is the fixed delivery fee for this zone in minor units, when the
	// organization prices by zone. Nil means the zone carries no own price
	// and fee resolution falls through to the configured mode.
	Fee *int64 `json:"fee,omitempty"`
}

// Resolve returns the zone covering p, or nil when no active zone contains
// the point. Overlaps are broken by priority, then by ascending id so that
// repeated calls over the same snapshot always pick the same zone.
func Resolve(p geo.Point, zones []Zone) *Zone {
	var best *Zone
	for i := range zones {
		z := &zones[i]
		if !z.Active {
			continue
		}
		if len(z.Polygon) < 3 {
			continue
		}
		if !geo.PointInPolygon(p, z.Polygon) {
			continue
		}
		if best == nil {
			best = z
			continue
		}
		if z.Priority > best.Priority || (z.Priority == best.Priority && z.ID < best.ID) {
			best = z
		}
	}
	return best
}
