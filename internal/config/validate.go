// CUE schema validation and semantic checks
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var defaultSchema []byte

// ErrDroneSpawnMismatch is returned when drones and spawn points differ
// in number.
var ErrDroneSpawnMismatch = errors.New("drone count does not match spawn point count")

// ErrNoDrones is returned for a mission without drones. Such a mission
// can never finish scanning.
var ErrNoDrones = errors.New("mission needs at least one drone")

// DefaultSchema returns the embedded CUE schema.
func DefaultSchema() []byte { return defaultSchema }

func schemaSource(path string) ([]byte, error) {
	if path == "" {
		return defaultSchema, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read CUE schema: %w", err)
	}
	return b, nil
}

// ValidateWithCue validates a YAML document against a CUE schema.
func ValidateWithCue(yamlBytes, schemaBytes []byte) error {
	ctx := cuecontext.New()

	file, err := cueyaml.Extract("config.yaml", yamlBytes)
	if err != nil {
		return fmt.Errorf("cannot parse YAML config: %w", err)
	}
	configVal := ctx.BuildFile(file)
	if configVal.Err() != nil {
		return fmt.Errorf("cannot build YAML config: %w", configVal.Err())
	}

	schemaVal := ctx.CompileBytes(schemaBytes)
	if schemaVal.Err() != nil {
		return fmt.Errorf("cannot compile CUE schema: %w", schemaVal.Err())
	}

	final := schemaVal.Unify(configVal)
	if final.Err() != nil {
		return fmt.Errorf("schema unify failed: %w", final.Err())
	}
	if err := final.Validate(); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// Validate checks the relations the schema cannot express.
func (c *SimulationConfig) Validate() error {
	if len(c.Drones) == 0 {
		return ErrNoDrones
	}
	if len(c.Drones) != len(c.SpawnPoints) {
		return fmt.Errorf("%w: %d drones, %d spawn points", ErrDroneSpawnMismatch, len(c.Drones), len(c.SpawnPoints))
	}
	seen := make(map[string]struct{}, len(c.Drones))
	for _, name := range c.Drones {
		if name == "" {
			return errors.New("drone name must not be empty")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate drone name %q", name)
		}
		seen[name] = struct{}{}
	}
	if c.Mission.Description == "" {
		return errors.New("mission description is required")
	}
	if c.Area.Size() == 0 {
		return errors.New("mission area has no surface")
	}
	if c.Flight.CameraFOV <= 0 || c.Flight.CameraFOV >= 180 {
		return fmt.Errorf("camera fov %.1f out of range (0,180)", c.Flight.CameraFOV)
	}
	if c.Flight.Speed <= 0 {
		return errors.New("flight speed must be positive")
	}
	if c.Scan.Settle < 0 || c.Scan.Analyze < 0 {
		return errors.New("scan timings must not be negative")
	}
	if c.Recognition.Falloff < 0 {
		return errors.New("recognition falloff must not be negative")
	}
	if c.Capture.Minio.Endpoint != "" && (c.Capture.Minio.AccessKey == "" || c.Capture.Minio.SecretKey == "") {
		return errors.New("minio capture store needs access and secret keys")
	}
	return nil
}
