// YAML config loader with CUE validation and environment overrides
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/target"
	"dronesearch-sim/internal/world"
)

// Mission names what the drones are looking for.
type Mission struct {
	ID                 string `yaml:"id" env:"MISSION_ID"`
	Description        string `yaml:"description" env:"MISSION_DESCRIPTION"`
	GeneralDescription string `yaml:"general_description" env:"MISSION_GENERAL_DESCRIPTION"`
}

// Flight holds the parameters shared by every drone.
type Flight struct {
	CruiseAltitude   float64 `yaml:"cruise_altitude"`
	Speed            float64 `yaml:"speed"`
	StoppingDistance float64 `yaml:"stopping_distance"`
	CameraFOV        float64 `yaml:"camera_fov"`
	// CameraMount is the camera's vertical offset from the drone body.
	CameraMount float64 `yaml:"camera_mount"`
}

// Scan holds the scan cycle timings and frame size.
type Scan struct {
	Settle      time.Duration `yaml:"settle"`
	Analyze     time.Duration `yaml:"analyze"`
	ImageWidth  int           `yaml:"image_width"`
	ImageHeight int           `yaml:"image_height"`
}

// Landing tunes where the responder sets down.
type Landing struct {
	Offset float64 `yaml:"offset"`
	Radius float64 `yaml:"radius"`
}

// Recognition selects the frame scorer. With no endpoint the local oracle
// is used.
type Recognition struct {
	Endpoint string        `yaml:"endpoint" env:"RECOGNITION_ENDPOINT"`
	Timeout  time.Duration `yaml:"timeout" env:"RECOGNITION_TIMEOUT"`
	Match    float64       `yaml:"match"`
	Miss     float64       `yaml:"miss"`
	Falloff  float64       `yaml:"falloff"`
}

// Minio is an S3 compatible capture bucket.
type Minio struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET"`
	Secure    bool   `yaml:"secure" env:"MINIO_SECURE"`
}

// Capture selects where frames are kept. Both sinks are optional.
type Capture struct {
	Dir   string `yaml:"dir" env:"CAPTURE_DIR"`
	Minio Minio  `yaml:"minio"`
}

// Kafka publishes reports and decisions.
type Kafka struct {
	Brokers        []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","`
	ReportsTopic   string   `yaml:"reports_topic" env:"KAFKA_REPORTS_TOPIC"`
	DecisionsTopic string   `yaml:"decisions_topic" env:"KAFKA_DECISIONS_TOPIC"`
}

// Postgres keeps reports and decisions.
type Postgres struct {
	DSN string `yaml:"dsn" env:"DATABASE_DSN"`
}

// Greptime receives telemetry rows.
type Greptime struct {
	Endpoint string `yaml:"endpoint" env:"GREPTIMEDB_ENDPOINT"`
	Database string `yaml:"database" env:"GREPTIMEDB_DATABASE"`
}

// SimulationConfig is the root configuration of a search mission.
type SimulationConfig struct {
	Mission     Mission           `yaml:"mission"`
	Seed        int64             `yaml:"seed" env:"SIM_SEED"`
	Area        geom.Area         `yaml:"area"`
	Terrain     world.Terrain     `yaml:"terrain"`
	Obstacles   []world.Cylinder  `yaml:"obstacles"`
	Drones      []string          `yaml:"drones"`
	SpawnPoints []geom.Vec3       `yaml:"spawn_points"`
	Persons     []target.Template `yaml:"persons"`
	Flight      Flight            `yaml:"flight"`
	Scan        Scan              `yaml:"scan"`
	Landing     Landing           `yaml:"landing"`
	Recognition Recognition       `yaml:"recognition"`
	Capture     Capture           `yaml:"capture"`
	Kafka       Kafka             `yaml:"kafka"`
	Postgres    Postgres          `yaml:"postgres"`
	Greptime    Greptime          `yaml:"greptime"`
}

// Load reads a YAML config, validates it against the CUE schema (the
// embedded one when cueSchemaPath is empty), fills defaults and applies
// environment overrides.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read YAML config: %w", err)
	}
	return Parse(data, cueSchemaPath)
}

// Parse is Load for an in-memory document.
func Parse(data []byte, cueSchemaPath string) (*SimulationConfig, error) {
	schema, err := schemaSource(cueSchemaPath)
	if err != nil {
		return nil, err
	}
	if err := ValidateWithCue(data, schema); err != nil {
		return nil, err
	}

	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal YAML config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values with the stock mission parameters.
func (c *SimulationConfig) ApplyDefaults() {
	if c.Seed == 0 {
		c.Seed = 1
	}
	if c.Mission.GeneralDescription == "" {
		c.Mission.GeneralDescription = "a person"
	}
	if c.Flight.CruiseAltitude == 0 {
		c.Flight.CruiseAltitude = 80
	}
	if c.Flight.Speed == 0 {
		c.Flight.Speed = 12
	}
	if c.Flight.StoppingDistance == 0 {
		c.Flight.StoppingDistance = 0.5
	}
	if c.Flight.CameraFOV == 0 {
		c.Flight.CameraFOV = 60
	}
	if c.Scan.Settle == 0 {
		c.Scan.Settle = time.Second
	}
	if c.Scan.Analyze == 0 {
		c.Scan.Analyze = 2 * time.Second
	}
	if c.Scan.ImageWidth == 0 {
		c.Scan.ImageWidth = 256
	}
	if c.Scan.ImageHeight == 0 {
		c.Scan.ImageHeight = 256
	}
	if c.Landing.Offset == 0 {
		c.Landing.Offset = 5
	}
	if c.Landing.Radius == 0 {
		c.Landing.Radius = 10
	}
	if c.Recognition.Timeout == 0 {
		c.Recognition.Timeout = 30 * time.Second
	}
	if c.Recognition.Match == 0 {
		c.Recognition.Match = 0.9
	}
	if c.Recognition.Miss == 0 {
		c.Recognition.Miss = 0.2
	}
	if c.Kafka.ReportsTopic == "" {
		c.Kafka.ReportsTopic = "scan-reports"
	}
	if c.Kafka.DecisionsTopic == "" {
		c.Kafka.DecisionsTopic = "mission-decisions"
	}
	if c.Capture.Minio.Bucket == "" {
		c.Capture.Minio.Bucket = "captures"
	}
	if c.Greptime.Database == "" {
		c.Greptime.Database = "public"
	}
	for i := range c.Persons {
		if c.Persons[i].Height == 0 {
			c.Persons[i].Height = target.DefaultHeight
		}
	}
}
