package scan

import (
	"math"

	"dronesearch-sim/internal/geom"
)

// Camera is the gimbal camera under a drone.
type Camera struct {
	Position   geom.Vec3 `json:"position"`
	Forward    geom.Vec3 `json:"forward"`
	FOV        float64   `json:"fov"`
	DefaultFOV float64   `json:"default_fov"`
}

// LookAt points the camera at p.
func (c *Camera) LookAt(p geom.Vec3) {
	c.Forward = p.Sub(c.Position).Normalize()
}

// Reset restores the default field of view.
func (c *Camera) Reset() { c.FOV = c.DefaultFOV }

// FramingFOV returns the vertical field of view in degrees that frames an
// object of the given height at the given distance edge to edge.
func FramingFOV(height, distance float64) float64 {
	return geom.Rad2Deg(2 * math.Atan(height/(2*distance)))
}
