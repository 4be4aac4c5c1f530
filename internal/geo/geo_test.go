package geo_test

import (
	"math"
	"testing"

	"github.com/pranzo/pricing-api/internal/geo"
)

var square = geo.Polygon{
	{Lat: 0, Lng: 0},
	{Lat: 0, Lng: 2},
	{Lat: 2, Lng: 2},
	{Lat: 2, Lng: 0},
}

func TestPointInPolygon(t *testing.T) {
	cases := []struct {
		name string
		p    geo.Point
		want bool
	}{
		{"inside", geo.Point{Lat: 1, Lng: 1}, true},
		{"outside", geo.Point{Lat: 3, Lng: 3}, false},
		{"on vertex", geo.Point{Lat: 0, Lng: 0}, true},
		{"on vertical edge midpoint", geo.Point{Lat: 1, Lng: 0}, true},
		{"on horizontal edge midpoint", geo.Point{Lat: 0, Lng: 1}, true},
		{"just outside edge", geo.Point{Lat: 1, Lng: -0.001}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := geo.PointInPolygon(tc.p, square); got != tc.want {
				t.Fatalf("PointInPolygon(%v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestPointInPolygonDegenerate(t *testing.T) {
	if geo.PointInPolygon(geo.Point{}, nil) {
		t.Fatal("empty polygon must contain nothing")
	}
	line := geo.Polygon{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}
	if geo.PointInPolygon(geo.Point{Lat: 0.5, Lng: 0.5}, line) {
		t.Fatal("two-vertex polygon must contain nothing")
	}
}

func TestPointInConcavePolygon(t *testing.T) {
	// U-shape: the notch between the prongs is outside.
	u := geo.Polygon{
		{Lat: 0, Lng: 0},
		{Lat: 3, Lng: 0},
		{Lat: 3, Lng: 1},
		{Lat: 1, Lng: 1},
		{Lat: 1, Lng: 2},
		{Lat: 3, Lng: 2},
		{Lat: 3, Lng: 3},
		{Lat: 0, Lng: 3},
	}
	if !geo.PointInPolygon(geo.Point{Lat: 0.5, Lng: 1.5}, u) {
		t.Fatal("base of the U should be inside")
	}
	if geo.PointInPolygon(geo.Point{Lat: 2, Lng: 1.5}, u) {
		t.Fatal("notch should be outside")
	}
}

func TestCentroid(t *testing.T) {
	c := geo.Centroid(square)
	if c.Lat != 1 || c.Lng != 1 {
		t.Fatalf("centroid = %+v, want (1,1)", c)
	}
	if c := geo.Centroid(nil); c != (geo.Point{}) {
		t.Fatalf("empty centroid = %+v, want origin", c)
	}
	single := geo.Polygon{{Lat: 4, Lng: 5}}
	if c := geo.Centroid(single); c.Lat != 4 || c.Lng != 5 {
		t.Fatalf("single vertex centroid = %+v", c)
	}
}

func TestArea(t *testing.T) {
	if a := geo.Area(square); a != 4 {
		t.Fatalf("area = %v, want 4", a)
	}
	if a := geo.Area(geo.Polygon{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}}); a != 0 {
		t.Fatalf("degenerate area = %v, want 0", a)
	}
}

func TestIsClockwise(t *testing.T) {
	// square above winds counter-clockwise in (lat,lng) axes
	if geo.IsClockwise(square) {
		t.Fatal("square should not be clockwise")
	}
	reversed := geo.Polygon{
		{Lat: 2, Lng: 0},
		{Lat: 2, Lng: 2},
		{Lat: 0, Lng: 2},
		{Lat: 0, Lng: 0},
	}
	if !geo.IsClockwise(reversed) {
		t.Fatal("reversed square should be clockwise")
	}
}

func TestSimplify(t *testing.T) {
	redundant := geo.Polygon{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1}, // collinear with neighbours
		{Lat: 0, Lng: 2},
		{Lat: 2, Lng: 2},
		{Lat: 2, Lng: 0},
	}
	got := geo.Simplify(redundant, 1e-9)
	if len(got) != 4 {
		t.Fatalf("simplified to %d vertices, want 4: %+v", len(got), got)
	}
	if got[0] != redundant[0] || got[len(got)-1] != redundant[len(redundant)-1] {
		t.Fatal("first and last vertices must be retained")
	}

	tri := geo.Polygon{{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 0}}
	if out := geo.Simplify(tri, 10); len(out) != 3 {
		t.Fatalf("triangles must never shrink, got %d vertices", len(out))
	}
}

func TestHaversineMeters(t *testing.T) {
	if d := geo.HaversineMeters(geo.Point{Lat: 44.49, Lng: 11.34}, geo.Point{Lat: 44.49, Lng: 11.34}); d != 0 {
		t.Fatalf("zero distance expected, got %v", d)
	}
	// One degree of latitude on the mean-radius sphere.
	d := geo.HaversineMeters(geo.Point{Lat: 0, Lng: 0}, geo.Point{Lat: 1, Lng: 0})
	want := 6371000.0 * math.Pi / 180
	if math.Abs(d-want) > 1 {
		t.Fatalf("one degree latitude = %v m, want about %v", d, want)
	}
	// Symmetry.
	a := geo.Point{Lat: 44.4949, Lng: 11.3426}
	b := geo.Point{Lat: 44.4056, Lng: 8.9463}
	if math.Abs(geo.HaversineMeters(a, b)-geo.HaversineMeters(b, a)) > 1e-9 {
		t.Fatal("distance must be symmetric")
	}
}
