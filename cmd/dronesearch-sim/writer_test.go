package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dronesearch-sim/internal/admin"
	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/logging"
	"dronesearch-sim/internal/telemetry"
)

const testConfig = "../../internal/config/testdata/mission.yaml"

func testCfg(t *testing.T) *config.SimulationConfig {
	t.Helper()
	cfg, err := config.Load(testConfig, "")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Greptime.Endpoint = ""
	cfg.Kafka.Brokers = nil
	cfg.Postgres.DSN = ""
	return cfg
}

func notTTY() *bool {
	b := false
	return &b
}

func TestNewWritersPrintOnly(t *testing.T) {
	ws, err := newWriters(context.Background(), testCfg(t), writerOptions{PrintOnly: true, Stdout: notTTY()})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer ws.Close()
	if ws.Writer.Len() != 1 {
		t.Fatalf("expected only the stdout writer, got %d", ws.Writer.Len())
	}
}

func TestNewWritersGreptimeIgnoredWhenPrintOnly(t *testing.T) {
	cfg := testCfg(t)
	cfg.Greptime.Endpoint = "localhost:4001"
	ws, err := newWriters(context.Background(), cfg, writerOptions{PrintOnly: true, JSON: true})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer ws.Close()
	if ws.Writer.Len() != 1 {
		t.Fatalf("expected greptime to be skipped, got %d writers", ws.Writer.Len())
	}
}

func TestNewWritersLogFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "telemetry.log")
	ws, err := newWriters(context.Background(), testCfg(t), writerOptions{PrintOnly: true, LogFile: path, Stdout: notTTY()})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	if ws.Writer.Len() != 2 {
		t.Fatalf("expected stdout and file writers, got %d", ws.Writer.Len())
	}
	row := telemetry.TelemetryRow{MissionID: "m1", DroneID: "Drone1", State: "Cruising", Timestamp: time.Now()}
	if err := ws.Writer.Write(row); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	st := telemetry.SimulationStateRow{MissionID: "m1", Tick: 1, ElapsedS: 0.1, Timestamp: time.Now()}
	if err := ws.Writer.WriteState(st); err != nil {
		t.Fatalf("write state failed: %v", err)
	}
	dec := telemetry.DecisionRow{MissionID: "m1", Status: "landing", TargetID: "person-0", Timestamp: time.Now()}
	if err := ws.Writer.WriteDecision(dec); err != nil {
		t.Fatalf("write decision failed: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	for _, p := range []string{path, path + ".state", path + ".decisions"} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("stat %s failed: %v", p, err)
		}
		if info.Size() == 0 {
			t.Fatalf("expected %s to be non-empty", p)
		}
	}
}

func TestNewWritersHubReceivesEvents(t *testing.T) {
	hub := admin.NewHub(logging.NewWithLevel(&bytes.Buffer{}, 0))
	ws, err := newWriters(context.Background(), testCfg(t), writerOptions{PrintOnly: true, JSON: true, Hub: hub})
	if err != nil {
		t.Fatalf("newWriters returned error: %v", err)
	}
	defer ws.Close()
	// No clients are connected; the event is dropped without error.
	if err := ws.Writer.WriteEvent(telemetry.EventRow{MissionID: "m1", EventType: telemetry.EventScanFinished}); err != nil {
		t.Fatalf("write event failed: %v", err)
	}
}

func TestPlanCommandPrintsFormation(t *testing.T) {
	planConfigPath = testConfig
	planScenario = "red-cap"
	t.Cleanup(func() { planConfigPath, planScenario = "config/mission.yaml", "" })

	var buf bytes.Buffer
	planCmd.SetOut(&buf)
	if err := planCmd.RunE(planCmd, nil); err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Search radius:", "Scan altitude:", "DRONE"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	cfg := testCfg(t)
	for _, d := range cfg.Drones {
		if !strings.Contains(out, d) {
			t.Fatalf("expected drone %s in output:\n%s", d, out)
		}
	}
}

func TestLoadConfigUnknownScenario(t *testing.T) {
	if _, err := loadConfig(testConfig, "", "no-such-scenario"); err == nil {
		t.Fatal("expected an error for an unknown scenario")
	}
}

type fakeTUI struct{ closed int }

func (f *fakeTUI) Write(telemetry.TelemetryRow) error { return nil }
func (f *fakeTUI) Close() error                       { f.closed++; return nil }

func withFakeTUI(t *testing.T) *fakeTUI {
	t.Helper()
	fake := &fakeTUI{}
	orig := newTUIWriter
	newTUIWriter = func(*config.SimulationConfig) tuiWriter { return fake }
	t.Cleanup(func() { newTUIWriter = orig })
	return fake
}

func TestNewWritersClosesTUIOnGreptimeError(t *testing.T) {
	fake := withFakeTUI(t)
	cfg := testCfg(t)
	cfg.Greptime.Endpoint = "localhost:notaport"
	if _, err := newWriters(context.Background(), cfg, writerOptions{TUI: true}); err == nil {
		t.Fatal("expected a greptime endpoint error")
	}
	if fake.closed != 1 {
		t.Fatalf("expected the TUI to be closed once, got %d", fake.closed)
	}
}

func TestNewWritersClosesTUIOnLogFileError(t *testing.T) {
	fake := withFakeTUI(t)
	path := filepath.Join(t.TempDir(), "missing", "telemetry.log")
	if _, err := newWriters(context.Background(), testCfg(t), writerOptions{PrintOnly: true, TUI: true, LogFile: path}); err == nil {
		t.Fatal("expected a log file error")
	}
	if fake.closed != 1 {
		t.Fatalf("expected the TUI to be closed once, got %d", fake.closed)
	}
}
