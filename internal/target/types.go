package target

import "dronesearch-sim/internal/geom"

// DefaultHeight is the bounding height used for people without one.
const DefaultHeight = 1.8

// Person is one candidate target spawned in the mission area.
type Person struct {
	ID          string    `json:"id"`
	Position    geom.Vec3 `json:"position"`
	Height      float64   `json:"height"`
	Description string    `json:"description"`
}

// Center returns the middle of the person's bounding box.
func (p Person) Center() geom.Vec3 {
	return p.Position.Add(geom.Vec3{Y: p.Height / 2})
}

// Template describes a person to spawn.
type Template struct {
	Description string  `yaml:"description"`
	Height      float64 `yaml:"height"`
}
