package scan

import "fmt"

// Phase is a step of the scan cycle.
type Phase int

const (
	Settle Phase = iota
	Aim
	Capture
	Analyze
	Restore
	Done
)

func (p Phase) String() string {
	switch p {
	case Settle:
		return "settle"
	case Aim:
		return "aim"
	case Capture:
		return "capture"
	case Analyze:
		return "analyze"
	case Restore:
		return "restore"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText lets phases appear by name in JSON rows.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
