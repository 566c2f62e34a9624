package telemetry

import "time"

// SimulationStateRow captures per-tick progress of the mission.
type SimulationStateRow struct {
	MissionID      string    `json:"mission_id"`
	Tick           int64     `json:"tick"`
	ElapsedS       float64   `json:"elapsed_s"`
	DronesScanning int       `json:"drones_scanning"`
	DronesFinished int       `json:"drones_finished"`
	Reports        int       `json:"reports"`
	Decided        bool      `json:"decided"`
	Timestamp      time.Time `json:"ts"`
}

func (SimulationStateRow) TableName() string { return StateTableName }
