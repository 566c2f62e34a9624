package telemetry

import "time"

const (
	EventMissionPlanned = "mission_planned"
	EventStateChange    = "state_change"
	EventScanPhase      = "scan_phase"
	EventScanError      = "scan_error"
	EventScanFinished   = "scan_finished"
	EventDecision       = "decision"
)

// EventRow records something that happened during the mission.
type EventRow struct {
	MissionID string    `json:"mission_id"`
	EventType string    `json:"event_type"`
	DroneID   string    `json:"drone_id,omitempty"`
	TargetID  string    `json:"target_id,omitempty"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"ts"`
}

func (EventRow) TableName() string { return EventTableName }
