// Row types emitted by the simulator
package telemetry

import (
	"os"
	"time"
)

// TelemetryRow is one drone's state at one tick.
type TelemetryRow struct {
	MissionID string    `json:"mission_id"`          // TAG
	DroneID   string    `json:"drone_id"`            // TAG
	State     string    `json:"state"`               // FIELD
	Phase     string    `json:"phase,omitempty"`     // FIELD
	TargetID  string    `json:"target_id,omitempty"` // FIELD
	X         float64   `json:"x"`                   // FIELD
	Y         float64   `json:"y"`                   // FIELD
	Z         float64   `json:"z"`                   // FIELD
	Altitude  float64   `json:"altitude"`            // FIELD
	Timestamp time.Time `json:"ts"`                  // TIME INDEX
}

// ReportRow is a confidence a drone submitted for a target.
type ReportRow struct {
	MissionID   string    `json:"mission_id"`
	DroneID     string    `json:"drone_id"`
	TargetID    string    `json:"target_id"`
	Confidence  float64   `json:"confidence"`
	FOV         float64   `json:"fov"`
	DistanceM   float64   `json:"distance_m"`
	CapturePath string    `json:"capture_path,omitempty"`
	Timestamp   time.Time `json:"ts"`
}

// DecisionRow is the coordinator's conclusion.
type DecisionRow struct {
	MissionID         string    `json:"mission_id"`
	Status            string    `json:"status"`
	Reason            string    `json:"reason,omitempty"`
	TargetID          string    `json:"target_id,omitempty"`
	Score             float64   `json:"score"`
	Responder         string    `json:"responder,omitempty"`
	ResponderDistance float64   `json:"responder_distance"`
	LandX             float64   `json:"land_x"`
	LandY             float64   `json:"land_y"`
	LandZ             float64   `json:"land_z"`
	Timestamp         time.Time `json:"ts"`
}

func tableName(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

// Table names used when writing to GreptimeDB. Each can be overridden
// through the environment.
var (
	TelemetryTableName = tableName("GREPTIMEDB_TABLE", "drone_telemetry")
	ReportTableName    = tableName("REPORT_TABLE", "scan_reports")
	EventTableName     = tableName("EVENT_TABLE", "mission_events")
	DecisionTableName  = tableName("DECISION_TABLE", "mission_decisions")
	StateTableName     = tableName("STATE_TABLE", "simulation_state")
)

func (TelemetryRow) TableName() string { return TelemetryTableName }

func (ReportRow) TableName() string { return ReportTableName }

func (DecisionRow) TableName() string { return DecisionTableName }
