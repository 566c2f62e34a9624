package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/flight"
	"dronesearch-sim/internal/mission"
	"dronesearch-sim/internal/scan"
	"dronesearch-sim/internal/telemetry"
)

func loadTestConfig(t *testing.T) *config.SimulationConfig {
	t.Helper()
	cfg, err := config.Load("../config/testdata/mission.yaml", "")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func fixedClock() func() time.Time {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return ts }
}

func TestSimulatorRunsMissionToDecision(t *testing.T) {
	cfg := loadTestConfig(t)
	w := &recordingWriter{}
	s := NewSimulator(cfg, w, Options{Step: time.Second, Now: fixedClock()})

	ticks, err := s.RunFor(context.Background(), 5000)
	if err != nil {
		t.Fatalf("RunFor: %v", err)
	}
	if !s.Done() {
		t.Fatalf("mission not finished after %d ticks: %+v", ticks, s.Status())
	}

	d, ok := s.Decision()
	if !ok {
		t.Fatal("no decision")
	}
	if d.Status != mission.StatusLanding {
		t.Fatalf("expected a landing decision, got %+v", d)
	}
	if d.Scores[0].TargetID != d.TargetID {
		t.Fatalf("decision target %s is not the best ranked %s", d.TargetID, d.Scores[0].TargetID)
	}
	for _, st := range s.Drones() {
		if st.ID == d.Responder && st.State != flight.Landed {
			t.Fatalf("responder %s is %s", st.ID, st.State)
		}
		if st.ID != d.Responder && st.State != flight.Scanning {
			t.Fatalf("drone %s should stay scanning, is %s", st.ID, st.State)
		}
	}

	if w.events[0].EventType != telemetry.EventMissionPlanned {
		t.Fatalf("first event is %q", w.events[0].EventType)
	}
	if len(w.reports) != len(s.Reports()) || len(w.reports) == 0 {
		t.Fatalf("wrote %d reports, coordinator has %d", len(w.reports), len(s.Reports()))
	}
	if len(w.decisions) != 1 || w.decisions[0].Responder != d.Responder {
		t.Fatalf("unexpected decision rows %+v", w.decisions)
	}
	if int64(len(w.states)) != s.Status().Tick || int64(ticks) != s.Status().Tick {
		t.Fatalf("expected one state row per tick, got %d rows for %d ticks", len(w.states), ticks)
	}
	if len(w.rows) != ticks*len(cfg.Drones) {
		t.Fatalf("expected %d telemetry rows, got %d", ticks*len(cfg.Drones), len(w.rows))
	}
	for _, r := range w.rows {
		if r.MissionID != "test-mission" || !r.Timestamp.Equal(fixedClock()()) {
			t.Fatalf("row not stamped: %+v", r)
		}
	}
}

type failingRecognizer struct{}

func (failingRecognizer) Analyze(context.Context, scan.Frame) (float64, error) {
	return 0, errors.New("recognition service unavailable")
}

func TestSimulatorWithoutReportsFinishesWithNoResults(t *testing.T) {
	cfg := loadTestConfig(t)
	w := &recordingWriter{}
	s := NewSimulator(cfg, w, Options{Step: time.Second, Recognizer: failingRecognizer{}})
	if _, err := s.RunFor(context.Background(), 5000); err != nil {
		t.Fatalf("RunFor: %v", err)
	}
	d, ok := s.Decision()
	if !ok || d.Status != mission.StatusNoResults {
		t.Fatalf("expected no_results, got %+v (%v)", d, ok)
	}
	if !s.Done() {
		t.Fatal("a mission without results should be done")
	}
	var scanErrors int
	for _, e := range w.events {
		if e.EventType == telemetry.EventScanError {
			scanErrors++
		}
	}
	if scanErrors == 0 || len(w.reports) != 0 {
		t.Fatalf("expected scan errors and no reports, got %d errors / %d reports", scanErrors, len(w.reports))
	}
}

func TestSimulatorSpawnMismatch(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.SpawnPoints = cfg.SpawnPoints[:2]
	s := NewSimulator(cfg, &recordingWriter{}, Options{})
	if err := s.Initialize(context.Background()); !errors.Is(err, config.ErrDroneSpawnMismatch) {
		t.Fatalf("expected ErrDroneSpawnMismatch, got %v", err)
	}
}

func TestRunWithoutDronesReturns(t *testing.T) {
	cfg := loadTestConfig(t)
	cfg.Drones, cfg.SpawnPoints = nil, nil
	s := NewSimulator(cfg, nil, Options{TickInterval: time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Run(ctx); !errors.Is(err, config.ErrNoDrones) {
		t.Fatalf("expected ErrNoDrones, got %v", err)
	}
	if s.Status().Tick != 0 {
		t.Fatal("no tick should run without drones")
	}
}

func TestSimulatorMissionID(t *testing.T) {
	cfg := loadTestConfig(t)
	if got := NewSimulator(cfg, nil, Options{MissionID: "override"}).MissionID(); got != "override" {
		t.Fatalf("option not used, got %q", got)
	}
	cfg.Mission.ID = ""
	if got := NewSimulator(cfg, nil, Options{}).MissionID(); len(got) != 36 {
		t.Fatalf("expected a generated UUID, got %q", got)
	}
}

func TestSimulatorFlightPlan(t *testing.T) {
	cfg := loadTestConfig(t)
	s := NewSimulator(cfg, nil, Options{Step: time.Second})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	p := s.Plan()
	if len(p.Formation) != 3 || p.ScanAltitude < mission.MinScanAltitude || p.ScanAltitude > mission.MaxScanAltitude {
		t.Fatalf("unexpected plan %+v", p)
	}
	if len(s.Targets()) != 3 {
		t.Fatalf("expected 3 people, got %d", len(s.Targets()))
	}
	for _, d := range s.Drones() {
		if d.State != flight.Ascending {
			t.Fatalf("drone %s should be ascending, is %s", d.ID, d.State)
		}
	}
	st := s.Status()
	if st.Decided || st.Done || st.Drones != 3 {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	cfg := loadTestConfig(t)
	s := NewSimulator(cfg, nil, Options{TickInterval: time.Millisecond})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Status().Tick == 0 {
		t.Fatal("expected at least one tick")
	}
}
