package mission

import (
	"math"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/world"
)

const (
	// SearchRadiusFactor widens the circle through the first corner.
	SearchRadiusFactor = 1.1
	MinScanAltitude    = 20.0
	MaxScanAltitude    = 150.0
)

// Plan is where the drones go and how high they fly.
type Plan struct {
	Center         geom.Vec3   `json:"center"`
	SearchRadius   float64     `json:"search_radius"`
	ScanAltitude   float64     `json:"scan_altitude"`
	CruiseAltitude float64     `json:"cruise_altitude"`
	Formation      []geom.Vec3 `json:"formation"`
}

// PlanMission spreads n drones on a circle around the area so the whole
// area fits in a camera with the given vertical field of view.
func PlanMission(area geom.Area, cameraFOV, cruiseAltitude float64, n int, terrain world.HeightSampler) Plan {
	center := area.Center()
	radius := geom.Distance(center, area.A) * SearchRadiusFactor
	ring := geom.RingPoints(center, radius, n)
	for i := range ring {
		ring[i].Y = terrain.SampleHeight(ring[i].X, ring[i].Z)
	}
	return Plan{
		Center:         center,
		SearchRadius:   radius,
		ScanAltitude:   ScanAltitude(radius, cameraFOV),
		CruiseAltitude: cruiseAltitude,
		Formation:      ring,
	}
}

// ScanAltitude is the height above ground at which a circle of radius fits
// the half field of view, clamped to a sane band.
func ScanAltitude(radius, fov float64) float64 {
	alt := radius / math.Tan(geom.Deg2Rad(fov)/2)
	return math.Min(math.Max(alt, MinScanAltitude), MaxScanAltitude)
}
