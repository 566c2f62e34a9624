package scenario

import (
	"strings"
	"testing"

	"dronesearch-sim/internal/config"
)

func TestLoadScenario(t *testing.T) {
	sc, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Name != "example" {
		t.Fatalf("unexpected name %s", sc.Name)
	}
	if sc.Description != "basic test scenario" {
		t.Fatalf("unexpected description %s", sc.Description)
	}
	if len(sc.Persons) != 2 || sc.Persons[0].Height != 1.6 {
		t.Fatalf("unexpected persons %+v", sc.Persons)
	}
	if sc.Terrain == nil || sc.Terrain.Base != 3 {
		t.Fatalf("unexpected terrain %+v", sc.Terrain)
	}
}

func TestApplyOverlaysConfig(t *testing.T) {
	cfg, err := config.Load("../config/testdata/mission.yaml", "")
	if err != nil {
		t.Fatal(err)
	}
	sc, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if err := sc.Apply(cfg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if cfg.Mission.Description != "a person with a purple scarf" {
		t.Fatalf("target not applied: %q", cfg.Mission.Description)
	}
	if len(cfg.Persons) != 2 || cfg.Persons[1].Height != 1.8 {
		t.Fatalf("persons not applied or not defaulted: %+v", cfg.Persons)
	}
	if len(cfg.Obstacles) != 1 || cfg.Obstacles[0].Radius != 2 || cfg.Terrain.Base != 3 {
		t.Fatalf("world not applied: %+v %+v", cfg.Obstacles, cfg.Terrain)
	}
	if len(cfg.Drones) != 3 {
		t.Fatal("drones should come from the base config")
	}
}

func TestBuiltInScenariosApply(t *testing.T) {
	for _, name := range Names() {
		cfg, err := config.Load("../config/testdata/mission.yaml", "")
		if err != nil {
			t.Fatal(err)
		}
		sc, err := Resolve(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := sc.Apply(cfg); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		found := false
		for _, p := range cfg.Persons {
			if p.Description == cfg.Mission.Description {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: nobody matches the target %q", name, cfg.Mission.Description)
		}
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve("does-not-exist")
	if err == nil || !strings.Contains(err.Error(), "red-cap") {
		t.Fatalf("expected an error listing built-ins, got %v", err)
	}
	if _, err := Resolve("testdata/simple.yaml"); err != nil {
		t.Fatalf("expected a YAML path to load: %v", err)
	}
}
