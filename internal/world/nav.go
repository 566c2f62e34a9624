package world

import (
	"math"

	"dronesearch-sim/internal/geom"
)

// NavAgent follows a straight line over the terrain at constant speed.
type NavAgent struct {
	terrain     HeightSampler
	pos         geom.Vec3
	dest        geom.Vec3
	hasDest     bool
	pending     bool
	enabled     bool
	speed       float64
	stoppingDst float64
}

// NewNavAgent places an agent on the ground at start.
func NewNavAgent(terrain HeightSampler, start geom.Vec3, speed, stoppingDistance float64) *NavAgent {
	a := &NavAgent{terrain: terrain, speed: speed, stoppingDst: stoppingDistance, enabled: true}
	a.pos = a.ground(start)
	return a
}

func (a *NavAgent) ground(p geom.Vec3) geom.Vec3 {
	if a.terrain != nil {
		p.Y = a.terrain.SampleHeight(p.X, p.Z)
	}
	return p
}

// SetDestination plans a new path. The path is pending until the next
// Advance.
func (a *NavAgent) SetDestination(dest geom.Vec3) {
	a.dest = a.ground(dest)
	a.hasDest = true
	a.pending = true
}

func (a *NavAgent) PathPending() bool { return a.pending }

func (a *NavAgent) RemainingDistance() float64 {
	if !a.hasDest {
		return 0
	}
	return geom.HorizontalDistance(a.pos, a.dest)
}

func (a *NavAgent) StoppingDistance() float64 { return a.stoppingDst }

func (a *NavAgent) Position() geom.Vec3 { return a.pos }

func (a *NavAgent) SetEnabled(enabled bool) { a.enabled = enabled }

func (a *NavAgent) Enabled() bool { return a.enabled }

// Advance moves the agent dt seconds along its path.
func (a *NavAgent) Advance(dt float64) {
	if !a.enabled || !a.hasDest {
		return
	}
	if a.pending {
		a.pending = false
		return
	}
	remaining := a.RemainingDistance()
	if remaining <= a.stoppingDst {
		return
	}
	step := math.Min(a.speed*dt, remaining)
	dir := a.dest.Sub(a.pos).Flat().Normalize()
	a.pos = a.ground(a.pos.Add(dir.Scale(step)))
}

// Walkable is a rectangular walkable region with obstacle footprints cut out.
type Walkable struct {
	Min       geom.Vec3
	Max       geom.Vec3
	Terrain   HeightSampler
	Obstacles []Cylinder
	// Clearance keeps snapped points this far outside obstacle footprints.
	Clearance float64
}

// SamplePosition implements NavMesh. It returns the nearest walkable point
// to p when that point lies within maxDistance of p horizontally.
func (w Walkable) SamplePosition(p geom.Vec3, maxDistance float64) (geom.Vec3, bool) {
	q := w.clamp(p)
	for _, c := range w.Obstacles {
		if !c.footprintContains(q) {
			continue
		}
		dir := q.Sub(c.Base).Flat().Normalize()
		if dir == (geom.Vec3{}) {
			dir = geom.Vec3{Z: 1}
		}
		q = w.clamp(c.Base.Flat().Add(dir.Scale(c.Radius + w.Clearance)))
	}
	for _, c := range w.Obstacles {
		if c.footprintContains(q) {
			return geom.Vec3{}, false
		}
	}
	if geom.HorizontalDistance(p, q) > maxDistance {
		return geom.Vec3{}, false
	}
	if w.Terrain != nil {
		q.Y = w.Terrain.SampleHeight(q.X, q.Z)
	} else {
		q.Y = 0
	}
	return q, true
}

func (w Walkable) clamp(p geom.Vec3) geom.Vec3 {
	return geom.Vec3{
		X: math.Max(w.Min.X, math.Min(w.Max.X, p.X)),
		Z: math.Max(w.Min.Z, math.Min(w.Max.Z, p.Z)),
	}
}
