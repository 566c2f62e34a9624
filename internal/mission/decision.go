package mission

import (
	"time"

	"dronesearch-sim/internal/geom"
)

// Status is the outcome of a mission analysis.
type Status string

const (
	StatusNoResults     Status = "no_results"
	StatusNoLandingSpot Status = "no_landing_spot"
	StatusFailed        Status = "failed"
	StatusLanding       Status = "landing"
)

// Score is a target's summed confidence.
type Score struct {
	TargetID string  `json:"target_id"`
	Total    float64 `json:"total"`
	Reports  int     `json:"reports"`
}

// Decision is what the coordinator concluded.
type Decision struct {
	MissionID         string    `json:"mission_id"`
	Status            Status    `json:"status"`
	Reason            string    `json:"reason,omitempty"`
	Scores            []Score   `json:"scores,omitempty"`
	TargetID          string    `json:"target_id,omitempty"`
	Score             float64   `json:"score"`
	Responder         string    `json:"responder,omitempty"`
	ResponderDistance float64   `json:"responder_distance"`
	Approach          geom.Vec3 `json:"approach"`
	LandingSpot       geom.Vec3 `json:"landing_spot"`
	DecidedAt         time.Time `json:"decided_at"`
}
