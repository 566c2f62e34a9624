package telemetry

import (
	"time"

	"dronesearch-sim/internal/geom"
)

// DroneSample is what the simulator knows about a drone at a tick.
type DroneSample struct {
	ID       string
	State    string
	Phase    string
	TargetID string
	Position geom.Vec3
	Altitude float64
}

// Generator stamps rows with the mission ID and the current time.
type Generator struct {
	MissionID string
	Now       func() time.Time
}

// NewGenerator creates a row generator for a mission.
func NewGenerator(missionID string) *Generator {
	return &Generator{MissionID: missionID, Now: time.Now}
}

func (g *Generator) now() time.Time {
	if g.Now == nil {
		return time.Now().UTC()
	}
	return g.Now().UTC()
}

// Telemetry builds the row for one drone sample.
func (g *Generator) Telemetry(s DroneSample) TelemetryRow {
	return TelemetryRow{
		MissionID: g.MissionID,
		DroneID:   s.ID,
		State:     s.State,
		Phase:     s.Phase,
		TargetID:  s.TargetID,
		X:         s.Position.X,
		Y:         s.Position.Y,
		Z:         s.Position.Z,
		Altitude:  s.Altitude,
		Timestamp: g.now(),
	}
}

// Report builds a report row.
func (g *Generator) Report(droneID, targetID string, confidence, fov, distance float64, capturePath string) ReportRow {
	return ReportRow{
		MissionID:   g.MissionID,
		DroneID:     droneID,
		TargetID:    targetID,
		Confidence:  confidence,
		FOV:         fov,
		DistanceM:   distance,
		CapturePath: capturePath,
		Timestamp:   g.now(),
	}
}

// Event builds an event row of the given type.
func (g *Generator) Event(eventType, droneID, targetID string) EventRow {
	return EventRow{
		MissionID: g.MissionID,
		EventType: eventType,
		DroneID:   droneID,
		TargetID:  targetID,
		Timestamp: g.now(),
	}
}

// Transition builds a state change event.
func (g *Generator) Transition(droneID, from, to string) EventRow {
	e := g.Event(EventStateChange, droneID, "")
	e.From = from
	e.To = to
	return e
}

// Decision builds a decision row.
func (g *Generator) Decision(status, reason, targetID string, score float64, responder string, distance float64, spot geom.Vec3) DecisionRow {
	return DecisionRow{
		MissionID:         g.MissionID,
		Status:            status,
		Reason:            reason,
		TargetID:          targetID,
		Score:             score,
		Responder:         responder,
		ResponderDistance: distance,
		LandX:             spot.X,
		LandY:             spot.Y,
		LandZ:             spot.Z,
		Timestamp:         g.now(),
	}
}
