// Package world provides the deterministic environment services the flight,
// scan and coordinator logic depend on: terrain height, line of sight,
// path following and walkable-point lookup.
package world

import "dronesearch-sim/internal/geom"

// HeightSampler returns the ground height at a horizontal position.
type HeightSampler interface {
	SampleHeight(x, z float64) float64
}

// VisibilityTester reports whether the straight segment between two points
// is unobstructed.
type VisibilityTester interface {
	LineOfSight(from, to geom.Vec3) bool
}

// PathPlanner moves one drone along the ground plane toward a destination.
// Altitude above ground is owned by the caller.
type PathPlanner interface {
	SetDestination(dest geom.Vec3)
	PathPending() bool
	RemainingDistance() float64
	StoppingDistance() float64
	Position() geom.Vec3
	SetEnabled(enabled bool)
	Enabled() bool
	Advance(dt float64)
}

// NavMesh snaps arbitrary points onto walkable ground.
type NavMesh interface {
	SamplePosition(p geom.Vec3, maxDistance float64) (geom.Vec3, bool)
}
