package recognition

import (
	"context"
	"strings"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/scan"
)

// Oracle scores frames from the ground truth carried in the frame. A
// person whose description matches the mission scores Match, everyone
// else scores Miss. Both are scaled down with distance when Falloff is set.
type Oracle struct {
	Description string
	Match       float64
	Miss        float64
	// Falloff is the distance in metres at which the score halves.
	Falloff float64
}

// NewOracle returns an oracle with the default scores.
func NewOracle(description string, falloff float64) *Oracle {
	return &Oracle{Description: description, Match: 0.9, Miss: 0.2, Falloff: falloff}
}

// Analyze implements scan.Recognizer.
func (o *Oracle) Analyze(ctx context.Context, f scan.Frame) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	score := o.Miss
	if strings.EqualFold(strings.TrimSpace(f.Target.Description), strings.TrimSpace(o.Description)) {
		score = o.Match
	}
	return score * o.framing(geom.Distance(f.Camera.Position, f.Target.Center())), nil
}

func (o *Oracle) framing(distance float64) float64 {
	if o.Falloff <= 0 {
		return 1
	}
	return 1 / (1 + distance/o.Falloff)
}
