package main

import (
	"path/filepath"
	"strings"
	"testing"

	"dronesearch-sim/internal/capture"
	"dronesearch-sim/internal/sim"
)

func TestResolveMissionIDKeepsConfiguredID(t *testing.T) {
	cfg := testCfg(t)
	cfg.Mission.ID = "mission-7"
	if got := resolveMissionID(cfg); got != "mission-7" {
		t.Fatalf("resolveMissionID = %q", got)
	}
}

func TestCaptureStoresShareSimulatorMissionID(t *testing.T) {
	cfg := testCfg(t)
	cfg.Mission.ID = ""
	cfg.Capture.Dir = t.TempDir()
	cfg.Capture.Minio.Endpoint = "localhost:9000"
	cfg.Capture.Minio.Bucket = "captures"

	id := resolveMissionID(cfg)
	if id == "" {
		t.Fatal("expected a generated mission ID")
	}
	if again := resolveMissionID(cfg); again != id {
		t.Fatalf("mission ID changed from %q to %q", id, again)
	}

	stores, err := captureStores(cfg, id)
	if err != nil {
		t.Fatalf("captureStores: %v", err)
	}
	simulator := sim.NewSimulator(cfg, nil, sim.Options{MissionID: id})
	if simulator.MissionID() != id {
		t.Fatalf("simulator mission %q, want %q", simulator.MissionID(), id)
	}

	var sawDir, sawMinio bool
	for _, s := range stores {
		switch st := s.(type) {
		case *capture.DirStore:
			sawDir = true
			if filepath.Base(st.Dir) != simulator.MissionID() {
				t.Fatalf("capture dir %q is not under the mission ID", st.Dir)
			}
		case *capture.MinioStore:
			sawMinio = true
			if st.Prefix() != simulator.MissionID() {
				t.Fatalf("minio prefix %q, want %q", st.Prefix(), simulator.MissionID())
			}
		}
	}
	if !sawDir || !sawMinio {
		t.Fatalf("expected both capture stores, got %d", len(stores))
	}
	if !strings.HasPrefix(stores[0].(*capture.DirStore).Dir, cfg.Capture.Dir) {
		t.Fatalf("capture dir escaped the configured root")
	}
}
