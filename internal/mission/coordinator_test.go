package mission

import (
	"context"
	"errors"
	"math"
	"testing"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/target"
	"dronesearch-sim/internal/world"
)

type fakeLander struct {
	pos    geom.Vec3
	landed []geom.Vec3
}

func (f *fakeLander) Position() geom.Vec3         { return f.pos }
func (f *fakeLander) LandAtTarget(spot geom.Vec3) { f.landed = append(f.landed, spot) }

// passNav accepts every point as walkable.
type passNav struct{ calls int }

func (n *passNav) SamplePosition(p geom.Vec3, _ float64) (geom.Vec3, bool) {
	n.calls++
	return p, true
}

type blockedNav struct{}

func (blockedNav) SamplePosition(geom.Vec3, float64) (geom.Vec3, bool) { return geom.Vec3{}, false }

func newTestCoordinator(total int, nav world.NavMesh) *Coordinator {
	return NewCoordinator(context.Background(), "m-1", Settings{TotalDrones: total, LandingOffset: 5, LandingRadius: 10}, nav)
}

func TestSubmitReportLastWriteWins(t *testing.T) {
	c := newTestCoordinator(1, &passNav{})
	c.SubmitReport("d1", "T1", 0.2)
	c.SubmitReport("d1", "T1", 0.7)
	c.SubmitReport("d1", "T1", 1.4)
	reps := c.Reports()
	if len(reps) != 1 || reps[0].Confidence != 1.4 {
		t.Fatalf("expected only the last unclamped value, got %+v", reps)
	}
}

func TestAnalyzeWithoutReports(t *testing.T) {
	c := newTestCoordinator(1, &passNav{})
	var got []Decision
	c.OnDecision(func(d Decision) { got = append(got, d) })
	d, err := c.AnalyzeReports()
	if !errors.Is(err, ErrNoReports) {
		t.Fatalf("expected ErrNoReports, got %v", err)
	}
	if d.Status != StatusNoResults || d.TargetID != "" {
		t.Fatalf("expected no candidate, got %+v", d)
	}
	if len(got) != 1 {
		t.Fatalf("handler should see the no-results decision")
	}
}

func TestAnalyzeSumsConfidences(t *testing.T) {
	c := newTestCoordinator(2, &passNav{})
	c.RegisterTargets([]target.Person{
		{ID: "T1", Position: geom.Vec3{X: 0, Z: 0}},
		{ID: "T2", Position: geom.Vec3{X: 50, Z: 0}},
	})
	d1 := &fakeLander{pos: geom.Vec3{X: 30, Y: 40}}
	d2 := &fakeLander{pos: geom.Vec3{X: -20, Y: 40}}
	c.RegisterDrone("d1", d1)
	c.RegisterDrone("d2", d2)
	c.SubmitReport("d1", "T1", 0.6)
	c.SubmitReport("d2", "T1", 0.3)
	c.SubmitReport("d1", "T2", 0.5)

	d, err := c.AnalyzeReports()
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(d.Scores) != 2 || d.Scores[0].TargetID != "T1" || math.Abs(d.Scores[0].Total-0.9) > 1e-9 || d.Scores[1].Total != 0.5 {
		t.Fatalf("unexpected scores %+v", d.Scores)
	}
	if d.TargetID != "T1" || d.Status != StatusLanding {
		t.Fatalf("expected T1 landing, got %+v", d)
	}
	if d.Responder != "d2" {
		t.Fatalf("expected the closer drone d2, got %s", d.Responder)
	}
	want := geom.Vec3{X: -5}
	if len(d2.landed) != 1 || d2.landed[0] != want || len(d1.landed) != 0 {
		t.Fatalf("expected d2 to land at %v, got d1=%v d2=%v", want, d1.landed, d2.landed)
	}
}

func TestTieBreaks(t *testing.T) {
	scores := RankTargets(map[string]map[string]float64{
		"Person_3": {"a": 0.5},
		"Person_1": {"b": 0.25, "c": 0.25},
		"Person_2": {"a": 0.1},
	})
	if scores[0].TargetID != "Person_1" || scores[1].TargetID != "Person_3" || scores[2].TargetID != "Person_2" {
		t.Fatalf("unexpected ranking %+v", scores)
	}

	drones := map[string]Lander{
		"Drone_C": &fakeLander{pos: geom.Vec3{X: 10}},
		"Drone_A": &fakeLander{pos: geom.Vec3{X: -10}},
		"Drone_B": &fakeLander{pos: geom.Vec3{Z: 10}},
	}
	if name, _ := closestDrone(drones, geom.Vec3{}); name != "Drone_A" {
		t.Fatalf("equal distances should pick the lowest name, got %s", name)
	}
}

func TestMarkDroneFinishedTriggersOnce(t *testing.T) {
	c := newTestCoordinator(2, &passNav{})
	runs := 0
	c.OnDecision(func(Decision) { runs++ })

	c.MarkDroneFinished("d1")
	c.MarkDroneFinished("d1")
	c.MarkDroneFinished("d1")
	if runs != 0 {
		t.Fatalf("analysis ran before every drone finished")
	}
	if _, ok := c.Decision(); ok {
		t.Fatalf("no decision expected yet")
	}
	c.MarkDroneFinished("d2")
	c.MarkDroneFinished("d2")
	c.MarkDroneFinished("d1")
	if runs != 1 {
		t.Fatalf("expected exactly one analysis, got %d", runs)
	}
	if c.Finished() != 2 {
		t.Fatalf("expected 2 finished drones, got %d", c.Finished())
	}
}

func TestZeroDronesNeverAnalyzes(t *testing.T) {
	c := newTestCoordinator(0, &passNav{})
	runs := 0
	c.OnDecision(func(Decision) { runs++ })
	c.MarkDroneFinished("stray")
	if runs != 0 {
		t.Fatalf("analysis must not fire with zero expected drones")
	}
}

func TestNoLandingSpot(t *testing.T) {
	c := newTestCoordinator(1, blockedNav{})
	c.RegisterTargets([]target.Person{{ID: "T1"}})
	l := &fakeLander{pos: geom.Vec3{X: 3, Y: 30}}
	c.RegisterDrone("d1", l)
	c.SubmitReport("d1", "T1", 0.8)
	d, err := c.AnalyzeReports()
	if !errors.Is(err, ErrNoLandingSpot) {
		t.Fatalf("expected ErrNoLandingSpot, got %v", err)
	}
	if d.Status != StatusNoLandingSpot || d.TargetID != "T1" || d.Responder != "d1" {
		t.Fatalf("decision should be reached but unexecuted, got %+v", d)
	}
	if len(l.landed) != 0 {
		t.Fatalf("drone must not be commanded")
	}
}

func TestUnknownTargetAndNoResponder(t *testing.T) {
	c := newTestCoordinator(1, &passNav{})
	c.SubmitReport("d1", "ghost", 0.8)
	if _, err := c.AnalyzeReports(); !errors.Is(err, ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
	c.RegisterTargets([]target.Person{{ID: "ghost"}})
	if _, err := c.AnalyzeReports(); !errors.Is(err, ErrNoResponder) {
		t.Fatalf("expected ErrNoResponder, got %v", err)
	}
}

func TestLandingPointOnRay(t *testing.T) {
	q := geom.Vec3{X: 10, Y: 2, Z: 10}
	p := geom.Vec3{X: 13, Y: 60, Z: 14}
	got := LandingPoint(q, p, 5)
	want := geom.Vec3{X: 13, Y: 2, Z: 14}
	if geom.Distance(got, want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got.Y != q.Y {
		t.Fatalf("vertical displacement must be zero")
	}
	if above := LandingPoint(q, geom.Vec3{X: 10, Y: 50, Z: 10}, 5); above != (geom.Vec3{X: 10, Y: 2, Z: 15}) {
		t.Fatalf("drone straight above should land along +Z, got %v", above)
	}
}
