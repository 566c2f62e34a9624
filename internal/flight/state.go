package flight

import "fmt"

// State is a drone's flight phase.
type State int

const (
	Idle State = iota
	Ascending
	Cruising
	Positioning
	Scanning
	Landing
	Landed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ascending:
		return "ascending"
	case Cruising:
		return "cruising"
	case Positioning:
		return "positioning"
	case Scanning:
		return "scanning"
	case Landing:
		return "landing"
	case Landed:
		return "landed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText lets states appear by name in JSON rows.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Transition records a state change produced by a tick.
type Transition struct {
	Drone string
	From  State
	To    State
}
