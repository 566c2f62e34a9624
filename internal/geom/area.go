package geom

import (
	"math"
	"math/rand"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Area is the quadrilateral mission area given by four ground corners in
// winding order. Only X and Z of the corners are meaningful.
type Area struct {
	A Vec3 `yaml:"a"`
	B Vec3 `yaml:"b"`
	C Vec3 `yaml:"c"`
	D Vec3 `yaml:"d"`
}

func toPoint(v Vec3) orb.Point { return orb.Point{v.X, v.Z} }

// Polygon returns the area as a closed planar polygon (X,Z).
func (a Area) Polygon() orb.Polygon {
	return orb.Polygon{orb.Ring{toPoint(a.A), toPoint(a.B), toPoint(a.C), toPoint(a.D), toPoint(a.A)}}
}

// Center is the mean of the four corners.
func (a Area) Center() Vec3 {
	return a.A.Add(a.B).Add(a.C).Add(a.D).Scale(0.25)
}

// Contains reports whether p lies inside the area, ignoring altitude.
func (a Area) Contains(p Vec3) bool {
	return planar.PolygonContains(a.Polygon(), toPoint(p))
}

// Size returns the planar surface of the area.
func (a Area) Size() float64 {
	return math.Abs(planar.Area(a.Polygon()))
}

func triangleArea(a, b, c Vec3) float64 {
	return math.Abs(planar.Area(orb.Ring{toPoint(a), toPoint(b), toPoint(c), toPoint(a)}))
}

// RandomPoint picks a uniformly distributed ground point inside a convex
// area. The quad is split into ABC and ACD, one is chosen by surface, then
// sampled with reflected barycentric coordinates.
func (a Area) RandomPoint(rng *rand.Rand) Vec3 {
	abc := triangleArea(a.A, a.B, a.C)
	acd := triangleArea(a.A, a.C, a.D)
	total := abc + acd
	if total == 0 {
		return a.A.Flat()
	}
	if rng.Float64() < abc/total {
		return randomInTriangle(rng, a.A, a.B, a.C).Flat()
	}
	return randomInTriangle(rng, a.A, a.C, a.D).Flat()
}

func randomInTriangle(rng *rand.Rand, a, b, c Vec3) Vec3 {
	u := rng.Float64()
	v := rng.Float64()
	if u+v > 1 {
		u = 1 - u
		v = 1 - v
	}
	return a.Add(b.Sub(a).Scale(u)).Add(c.Sub(a).Scale(v))
}

// RingPoints returns n points evenly spaced on a horizontal circle of the
// given radius around center. Angles are measured clockwise from +Z, so
// n=3 yields the 0/120/240 degree triangle.
func RingPoints(center Vec3, radius float64, n int) []Vec3 {
	pts := make([]Vec3, 0, n)
	for i := 0; i < n; i++ {
		angle := Deg2Rad(360 * float64(i) / float64(n))
		pts = append(pts, Vec3{
			X: center.X + math.Sin(angle)*radius,
			Y: center.Y,
			Z: center.Z + math.Cos(angle)*radius,
		})
	}
	return pts
}
