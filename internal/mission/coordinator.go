// Package mission aggregates scan reports into a landing decision and
// plans where the search drones fly.
package mission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/logging"
	"dronesearch-sim/internal/target"
	"dronesearch-sim/internal/world"
)

var (
	// ErrNoReports ends a mission in which no drone reported anything.
	ErrNoReports = errors.New("no scan reports")
	// ErrNoLandingSpot means a candidate was chosen but nowhere near it
	// is navigable.
	ErrNoLandingSpot = errors.New("no valid landing spot")
	// ErrNoResponder means a candidate was chosen but no drone can go.
	ErrNoResponder = errors.New("no drone available to respond")
	// ErrUnknownTarget means the best scored target was never spawned.
	ErrUnknownTarget = errors.New("unknown target")
)

// Lander is a drone the coordinator can command.
type Lander interface {
	Position() geom.Vec3
	LandAtTarget(spot geom.Vec3)
}

// DecisionHandler receives the outcome of the analysis.
type DecisionHandler func(Decision)

// Settings tune the landing decision.
type Settings struct {
	TotalDrones   int
	LandingOffset float64
	LandingRadius float64
}

// Report is one drone's confidence for one target.
type Report struct {
	DroneID    string  `json:"drone_id"`
	TargetID   string  `json:"target_id"`
	Confidence float64 `json:"confidence"`
}

// Coordinator collects reports from every drone and decides once all of
// them finished scanning.
type Coordinator struct {
	mu       sync.Mutex
	log      *slog.Logger
	settings Settings
	nav      world.NavMesh
	now      func() time.Time

	missionID string
	drones    map[string]Lander
	targets   map[string]target.Person
	reports   map[string]map[string]float64
	finished  map[string]struct{}
	decision  *Decision
	handlers  []DecisionHandler
}

// NewCoordinator returns a coordinator for the given mission. The logger
// is taken from ctx.
func NewCoordinator(ctx context.Context, missionID string, settings Settings, nav world.NavMesh) *Coordinator {
	return &Coordinator{
		log:       logging.FromContext(ctx).With("mission_id", missionID),
		settings:  settings,
		nav:       nav,
		now:       time.Now,
		missionID: missionID,
		drones:    make(map[string]Lander),
		targets:   make(map[string]target.Person),
		reports:   make(map[string]map[string]float64),
		finished:  make(map[string]struct{}),
	}
}

func (c *Coordinator) MissionID() string { return c.missionID }

// RegisterDrone makes a drone eligible to respond.
func (c *Coordinator) RegisterDrone(name string, d Lander) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drones[name] = d
}

// RegisterTargets records where the spawned people are.
func (c *Coordinator) RegisterTargets(people []target.Person) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range people {
		c.targets[p.ID] = p
	}
}

// OnDecision adds a handler called after the analysis ran.
func (c *Coordinator) OnDecision(h DecisionHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

// SubmitReport stores a drone's confidence for a target. A later report
// for the same pair replaces the earlier one.
func (c *Coordinator) SubmitReport(droneID, targetID string, confidence float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byDrone, ok := c.reports[targetID]
	if !ok {
		byDrone = make(map[string]float64)
		c.reports[targetID] = byDrone
	}
	byDrone[droneID] = confidence
	c.log.Info("report received", "drone_id", droneID, "target_id", targetID, "confidence", confidence)
}

// MarkDroneFinished records that a drone completed its scan. The analysis
// runs when the last expected drone finishes.
func (c *Coordinator) MarkDroneFinished(droneID string) {
	c.mu.Lock()
	if _, ok := c.finished[droneID]; ok {
		c.mu.Unlock()
		return
	}
	c.finished[droneID] = struct{}{}
	ready := len(c.finished) == c.settings.TotalDrones
	c.log.Info("drone finished scanning", "drone_id", droneID, "finished", len(c.finished), "total", c.settings.TotalDrones)
	c.mu.Unlock()

	if ready {
		c.AnalyzeReports()
	}
}

// Reports returns a copy of all reports, ordered by target then drone.
func (c *Coordinator) Reports() []Report {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Report
	for tid, byDrone := range c.reports {
		for did, conf := range byDrone {
			out = append(out, Report{DroneID: did, TargetID: tid, Confidence: conf})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TargetID != out[j].TargetID {
			return out[i].TargetID < out[j].TargetID
		}
		return out[i].DroneID < out[j].DroneID
	})
	return out
}

// Finished reports how many drones completed their scan.
func (c *Coordinator) Finished() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.finished)
}

// Decision returns the last decision, if the analysis ran.
func (c *Coordinator) Decision() (Decision, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.decision == nil {
		return Decision{}, false
	}
	return *c.decision, true
}

// AnalyzeReports ranks the targets by summed confidence, picks the closest
// drone to the winner and commands it to land beside it. The decision is
// also passed to every registered handler.
func (c *Coordinator) AnalyzeReports() (Decision, error) {
	c.mu.Lock()
	d, lander, err := c.decide()
	c.decision = &d
	handlers := append([]DecisionHandler(nil), c.handlers...)
	c.mu.Unlock()

	switch {
	case errors.Is(err, ErrNoReports):
		c.log.Info("mission finished without results")
	case err != nil:
		c.log.Error("mission decision not executed", "target_id", d.TargetID, "error", err)
	default:
		c.log.Info("mission decision", "target_id", d.TargetID, "score", d.Score, "responder", d.Responder, "landing_spot", d.LandingSpot)
		lander.LandAtTarget(d.LandingSpot)
	}
	for _, h := range handlers {
		h(d)
	}
	return d, err
}

func (c *Coordinator) decide() (Decision, Lander, error) {
	d := Decision{MissionID: c.missionID, DecidedAt: c.now()}
	if len(c.reports) == 0 {
		d.Status = StatusNoResults
		return d, nil, ErrNoReports
	}

	d.Scores = RankTargets(c.reports)
	best := d.Scores[0]
	d.TargetID = best.TargetID
	d.Score = best.Total

	person, ok := c.targets[best.TargetID]
	if !ok {
		d.Status = StatusFailed
		d.Reason = ErrUnknownTarget.Error()
		return d, nil, fmt.Errorf("%w: %s", ErrUnknownTarget, best.TargetID)
	}

	name, ok := closestDrone(c.drones, person.Position)
	if !ok {
		d.Status = StatusFailed
		d.Reason = ErrNoResponder.Error()
		return d, nil, ErrNoResponder
	}
	lander := c.drones[name]
	d.Responder = name
	d.ResponderDistance = geom.Distance(lander.Position(), person.Position)

	approach := LandingPoint(person.Position, lander.Position(), c.settings.LandingOffset)
	d.Approach = approach
	spot, ok := c.nav.SamplePosition(approach, c.settings.LandingRadius)
	if !ok {
		d.Status = StatusNoLandingSpot
		d.Reason = ErrNoLandingSpot.Error()
		return d, nil, fmt.Errorf("%w within %.1fm of %s", ErrNoLandingSpot, c.settings.LandingRadius, person.ID)
	}
	d.Status = StatusLanding
	d.LandingSpot = spot
	return d, lander, nil
}

// RankTargets sums confidences per target and orders them best first.
// Equal totals are ordered by target ID.
func RankTargets(reports map[string]map[string]float64) []Score {
	scores := lo.MapToSlice(reports, func(tid string, byDrone map[string]float64) Score {
		return Score{TargetID: tid, Total: lo.Sum(lo.Values(byDrone)), Reports: len(byDrone)}
	})
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Total != scores[j].Total {
			return scores[i].Total > scores[j].Total
		}
		return scores[i].TargetID < scores[j].TargetID
	})
	return scores
}

// closestDrone picks the drone nearest to p. Equal distances go to the
// lowest name.
func closestDrone(drones map[string]Lander, p geom.Vec3) (string, bool) {
	if len(drones) == 0 {
		return "", false
	}
	names := lo.Keys(drones)
	sort.Strings(names)
	return lo.MinBy(names, func(a, b string) bool {
		return geom.Distance(drones[a].Position(), p) < geom.Distance(drones[b].Position(), p)
	}), true
}

// LandingPoint is the spot offset metres from q, on the ground-plane ray
// from q toward p. When p is straight above q the spot lies along +Z.
func LandingPoint(q, p geom.Vec3, offset float64) geom.Vec3 {
	dir := p.Sub(q).Flat().Normalize()
	if dir == (geom.Vec3{}) {
		dir = geom.Vec3{Z: 1}
	}
	return q.Add(dir.Scale(offset))
}
