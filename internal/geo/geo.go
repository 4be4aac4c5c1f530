package geo

import "math"

// onEdgeTolerance is the longitude tolerance used to treat a point as lying
// exactly on a polygon edge.
const onEdgeTolerance = 1e-9

// earthRadiusMeters is the mean Earth radius used for great-circle distances.
const earthRadiusMeters = 6371000.0

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Polygon is an ordered ring of vertices. Closing the ring explicitly
// (repeating the first vertex) is allowed but not required.
type Polygon []Point

// PointInPolygon reports whether p lies inside or on the boundary of poly,
// using ray casting with an inclusive boundary. Polygons with fewer than
// three vertices contain nothing.
func PointInPolygon(p Point, poly Polygon) bool {
	n := len(poly)
	if n < 3 {
		return false
	}

	crossings := 0
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]

		if a.Lat == p.Lat && a.Lng == p.Lng {
			return true
		}
		// Horizontal edges cannot produce a valid crossing; they are only
		// interesting when the point sits on them.
		if a.Lat == b.Lat {
			if p.Lat == a.Lat && between(p.Lng, a.Lng, b.Lng) {
				return true
			}
			continue
		}
		if (a.Lat > p.Lat) == (b.Lat > p.Lat) {
			continue
		}

		// Longitude where the edge crosses the point's latitude.
		t := (p.Lat - a.Lat) / (b.Lat - a.Lat)
		lng := a.Lng + t*(b.Lng-a.Lng)
		if math.Abs(lng-p.Lng) <= onEdgeTolerance {
			return true
		}
		if lng > p.Lng {
			crossings++
		}
	}
	return crossings%2 == 1
}

// Centroid returns the arithmetic mean of the polygon's vertices. It is the
// zero point for an empty polygon.
func Centroid(poly Polygon) Point {
	if len(poly) == 0 {
		return Point{}
	}
	var lat, lng float64
	for _, v := range poly {
		lat += v.Lat
		lng += v.Lng
	}
	n := float64(len(poly))
	return Point{Lat: lat / n, Lng: lng / n}
}

// Area returns the absolute shoelace area of the polygon in squared
// coordinate units. Used for diagnostics and ordering only.
func Area(poly Polygon) float64 {
	n := len(poly)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		sum += a.Lng*b.Lat - b.Lng*a.Lat
	}
	return math.Abs(sum) / 2
}

// IsClockwise reports whether the ring winds clockwise, judged by the sign of
// the signed-area accumulator sum((lng2-lng1)*(lat1+lat2)).
func IsClockwise(poly Polygon) bool {
	n := len(poly)
	if n < 3 {
		return false
	}
	var sum float64
	for i := 0; i < n; i++ {
		a := poly[i]
		b := poly[(i+1)%n]
		sum += (b.Lng - a.Lng) * (a.Lat + b.Lat)
	}
	return sum > 0
}

// Simplify drops interior vertices whose neighbours are near-collinear, i.e.
// the cross-product magnitude of the vectors to both neighbours is at most
// tolerance. The first and last vertices are always retained. Polygons of
// three or fewer vertices are returned unchanged.
func Simplify(poly Polygon, tolerance float64) Polygon {
	if len(poly) <= 3 {
		return poly
	}
	out := make(Polygon, 0, len(poly))
	out = append(out, poly[0])
	for i := 1; i < len(poly)-1; i++ {
		prev := out[len(out)-1]
		cur := poly[i]
		next := poly[i+1]
		cross := (cur.Lng-prev.Lng)*(next.Lat-prev.Lat) - (cur.Lat-prev.Lat)*(next.Lng-prev.Lng)
		if math.Abs(cross) <= tolerance {
			continue
		}
		out = append(out, cur)
	}
	out = append(out, poly[len(poly)-1])
	return out
}

// HaversineMeters returns the great-circle distance between two coordinates.
func HaversineMeters(p1, p2 Point) float64 {
	lat1 := radians(p1.Lat)
	lat2 := radians(p2.Lat)
	dLat := radians(p2.Lat - p1.Lat)
	dLng := radians(p2.Lng - p1.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)
	a := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func between(v, bound1, bound2 float64) bool {
	lo, hi := bound1, bound2
	if lo > hi {
		lo, hi = hi, lo
	}
	return v >= lo-onEdgeTolerance && v <= hi+onEdgeTolerance
}
