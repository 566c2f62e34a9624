package world

import (
	"math"

	"dronesearch-sim/internal/geom"
)

// Cylinder is a vertical obstacle standing on Base.Y.
type Cylinder struct {
	Base   geom.Vec3 `yaml:"base"`
	Radius float64   `yaml:"radius"`
	Height float64   `yaml:"height"`
}

func (c Cylinder) top() float64 { return c.Base.Y + c.Height }

// footprintContains reports whether the ground projection of p lies inside c.
func (c Cylinder) footprintContains(p geom.Vec3) bool {
	return geom.HorizontalDistance(p, c.Base) < c.Radius
}

// blocks reports whether the segment from→to passes through the cylinder
// below its top.
func (c Cylinder) blocks(from, to geom.Vec3) bool {
	dx := to.X - from.X
	dz := to.Z - from.Z
	fx := from.X - c.Base.X
	fz := from.Z - c.Base.Z
	a := dx*dx + dz*dz
	b := 2 * (fx*dx + fz*dz)
	cc := fx*fx + fz*fz - c.Radius*c.Radius
	if a == 0 {
		if cc >= 0 {
			return false
		}
		return math.Min(from.Y, to.Y) < c.top()
	}
	disc := b*b - 4*a*cc
	if disc < 0 {
		return false
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	if t1 < 0 || t0 > 1 {
		return false
	}
	t0 = math.Max(t0, 0)
	t1 = math.Min(t1, 1)
	y0 := from.Y + (to.Y-from.Y)*t0
	y1 := from.Y + (to.Y-from.Y)*t1
	return math.Min(y0, y1) < c.top() && math.Max(y0, y1) > c.Base.Y
}

// Sightline tests visibility against the terrain and a set of obstacles.
type Sightline struct {
	Terrain   HeightSampler
	Obstacles []Cylinder
	// Step is the terrain sampling interval along the ray in metres.
	Step float64
}

// LineOfSight implements VisibilityTester. The last two percent of the
// segment are not checked against terrain so targets standing on the ground
// are not hidden by the ground they stand on.
func (s Sightline) LineOfSight(from, to geom.Vec3) bool {
	for _, c := range s.Obstacles {
		if c.blocks(from, to) {
			return false
		}
	}
	if s.Terrain == nil {
		return true
	}
	step := s.Step
	if step <= 0 {
		step = 1
	}
	length := geom.Distance(from, to)
	if length == 0 {
		return true
	}
	n := int(length / step)
	for i := 1; i < n; i++ {
		t := float64(i) / float64(n)
		if t > 0.98 {
			break
		}
		p := from.Add(to.Sub(from).Scale(t))
		if p.Y < s.Terrain.SampleHeight(p.X, p.Z) {
			return false
		}
	}
	return true
}
