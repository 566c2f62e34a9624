// Package scenario provides mission presets that overlay a base
// configuration: who is missing, who else is in the area and what stands
// in the way.
package scenario

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/target"
	"dronesearch-sim/internal/world"
)

// Scenario is a named mission preset. Empty fields leave the base
// configuration untouched.
type Scenario struct {
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Target is the description of the missing person.
	Target    string            `yaml:"target,omitempty"`
	Persons   []target.Template `yaml:"persons,omitempty"`
	Obstacles []world.Cylinder  `yaml:"obstacles,omitempty"`
	Terrain   *world.Terrain    `yaml:"terrain,omitempty"`
}

// Load reads a YAML scenario definition from disk.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("parse scenario: %s has no name", path)
	}
	return &s, nil
}

// Resolve returns the built-in scenario called name, or loads name as a
// YAML file.
func Resolve(name string) (*Scenario, error) {
	if s, ok := BuiltIn()[name]; ok {
		return &s, nil
	}
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return Load(name)
	}
	return nil, fmt.Errorf("unknown scenario %q (built-in: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the built-in scenarios in order.
func Names() []string {
	var names []string
	for n := range BuiltIn() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply overlays the scenario on cfg and validates the result.
func (s *Scenario) Apply(cfg *config.SimulationConfig) error {
	if s.Target != "" {
		cfg.Mission.Description = s.Target
	}
	if len(s.Persons) > 0 {
		cfg.Persons = append([]target.Template(nil), s.Persons...)
	}
	if len(s.Obstacles) > 0 {
		cfg.Obstacles = append([]world.Cylinder(nil), s.Obstacles...)
	}
	if s.Terrain != nil {
		cfg.Terrain = *s.Terrain
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return nil
}
