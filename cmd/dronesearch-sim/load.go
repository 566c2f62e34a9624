package main

import (
	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/scenario"
)

// loadConfig reads the mission configuration and overlays a scenario when
// one is named.
func loadConfig(path, schemaPath, scenarioName string) (*config.SimulationConfig, error) {
	cfg, err := config.Load(path, schemaPath)
	if err != nil {
		return nil, err
	}
	if scenarioName == "" {
		return cfg, nil
	}
	sc, err := scenario.Resolve(scenarioName)
	if err != nil {
		return nil, err
	}
	if err := sc.Apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
