// Simulator orchestrating search drones, scan passes and the coordinator
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/flight"
	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/logging"
	"dronesearch-sim/internal/mission"
	"dronesearch-sim/internal/recognition"
	"dronesearch-sim/internal/scan"
	"dronesearch-sim/internal/target"
	"dronesearch-sim/internal/telemetry"
	"dronesearch-sim/internal/world"
)

// Options carry what the configuration file does not.
type Options struct {
	MissionID string
	// TickInterval is the wall-clock time between ticks in Run.
	TickInterval time.Duration
	// Step is the simulated time per tick. It defaults to TickInterval.
	Step       time.Duration
	Recognizer scan.Recognizer
	Renderer   scan.Renderer
	Store      scan.Store
	Now        func() time.Time
}

// DroneStatus is a drone as shown by the status server.
type DroneStatus struct {
	ID          string       `json:"id"`
	State       flight.State `json:"state"`
	Phase       string       `json:"phase,omitempty"`
	TargetID    string       `json:"target_id,omitempty"`
	Position    geom.Vec3    `json:"position"`
	Altitude    float64      `json:"altitude"`
	Destination geom.Vec3    `json:"destination"`
	LandingSpot *geom.Vec3   `json:"landing_spot,omitempty"`
}

// Status summarises the mission.
type Status struct {
	MissionID      string       `json:"mission_id"`
	Description    string       `json:"description"`
	Tick           int64        `json:"tick"`
	ElapsedS       float64      `json:"elapsed_s"`
	Drones         int          `json:"drones"`
	DronesScanning int          `json:"drones_scanning"`
	DronesFinished int          `json:"drones_finished"`
	Reports        int          `json:"reports"`
	Decided        bool         `json:"decided"`
	Done           bool         `json:"done"`
	Plan           mission.Plan `json:"plan"`
}

// Simulator owns the mission loop. All mission state is changed on the
// goroutine running Run or RunFor; the snapshot methods may be called from
// anywhere.
type Simulator struct {
	cfg    *config.SimulationConfig
	opts   Options
	writer TelemetryWriter
	gen    *telemetry.Generator

	mu          sync.Mutex
	initialized bool
	missionID   string
	terrain     world.Terrain
	sight       world.Sightline
	nav         world.Walkable
	plan        mission.Plan
	people      []target.Person
	drones      []*flight.Drone
	cycles      map[string]*scan.Cycle
	coord       *mission.Coordinator
	ticks       int64
	elapsed     float64

	// pending holds decisions reached during the current tick.
	pending  []mission.Decision
	decision *mission.Decision
}

// NewSimulator prepares a simulator. Nothing is spawned until Initialize.
func NewSimulator(cfg *config.SimulationConfig, writer TelemetryWriter, opts Options) *Simulator {
	if opts.TickInterval <= 0 {
		opts.TickInterval = 100 * time.Millisecond
	}
	if opts.Step <= 0 {
		opts.Step = opts.TickInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	missionID := opts.MissionID
	if missionID == "" {
		missionID = cfg.Mission.ID
	}
	if missionID == "" {
		missionID = uuid.NewString()
	}
	gen := telemetry.NewGenerator(missionID)
	gen.Now = opts.Now
	return &Simulator{
		cfg:       cfg,
		opts:      opts,
		writer:    writer,
		gen:       gen,
		missionID: missionID,
		cycles:    make(map[string]*scan.Cycle),
	}
}

// MissionID returns the identifier stamped on every row.
func (s *Simulator) MissionID() string { return s.missionID }

// Initialize places the drones on their spawn points, spawns the people,
// plans the formation and sends every drone toward its formation point.
func (s *Simulator) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}
	log := logging.FromContext(ctx).With("mission_id", s.missionID)
	cfg := s.cfg
	if len(cfg.Drones) == 0 {
		return config.ErrNoDrones
	}
	if len(cfg.Drones) != len(cfg.SpawnPoints) {
		return fmt.Errorf("%w: %d drones, %d spawn points", config.ErrDroneSpawnMismatch, len(cfg.Drones), len(cfg.SpawnPoints))
	}

	s.terrain = cfg.Terrain
	s.sight = world.Sightline{Terrain: s.terrain, Obstacles: cfg.Obstacles, Step: 1}

	rng := rand.New(rand.NewSource(cfg.Seed))
	s.people = target.NewSpawner(s.terrain, rng).SpawnAll(cfg.Area, cfg.Persons)

	s.plan = mission.PlanMission(cfg.Area, cfg.Flight.CameraFOV, cfg.Flight.CruiseAltitude, len(cfg.Drones), s.terrain)
	bound := cfg.Area.Polygon().Bound().Pad(s.plan.SearchRadius + cfg.Landing.Radius)
	s.nav = world.Walkable{
		Min:       geom.Vec3{X: bound.Min[0], Z: bound.Min[1]},
		Max:       geom.Vec3{X: bound.Max[0], Z: bound.Max[1]},
		Terrain:   s.terrain,
		Obstacles: cfg.Obstacles,
		Clearance: 1,
	}

	s.coord = mission.NewCoordinator(ctx, s.missionID, mission.Settings{
		TotalDrones:   len(cfg.Drones),
		LandingOffset: cfg.Landing.Offset,
		LandingRadius: cfg.Landing.Radius,
	}, s.nav)
	s.coord.RegisterTargets(s.people)
	// Handlers run inside tick, which already holds s.mu.
	s.coord.OnDecision(func(d mission.Decision) {
		s.pending = append(s.pending, d)
		s.decision = &d
	})

	if s.opts.Renderer == nil {
		s.opts.Renderer = scan.SyntheticRenderer{Width: cfg.Scan.ImageWidth, Height: cfg.Scan.ImageHeight}
	}
	if s.opts.Recognizer == nil {
		o := recognition.NewOracle(cfg.Mission.Description, cfg.Recognition.Falloff)
		o.Match, o.Miss = cfg.Recognition.Match, cfg.Recognition.Miss
		s.opts.Recognizer = o
	}

	var events []telemetry.EventRow
	for i, name := range cfg.Drones {
		agent := world.NewNavAgent(s.terrain, cfg.SpawnPoints[i], cfg.Flight.Speed, cfg.Flight.StoppingDistance)
		d := flight.NewDrone(name, agent)
		s.coord.RegisterDrone(name, d)
		d.GoToMissionArea(s.plan.Formation[i], s.plan.ScanAltitude, s.plan.CruiseAltitude)
		s.drones = append(s.drones, d)
		events = append(events, s.gen.Transition(name, flight.Idle.String(), d.State().String()))
	}

	planned := s.gen.Event(telemetry.EventMissionPlanned, "", "")
	planned.Detail = fmt.Sprintf("people=%d drones=%d scan_altitude=%.1f search_radius=%.1f", len(s.people), len(s.drones), s.plan.ScanAltitude, s.plan.SearchRadius)
	events = append([]telemetry.EventRow{planned}, events...)
	s.writeEvents(log, events)

	log.Info("mission initialized",
		"drones", len(s.drones),
		"people", len(s.people),
		"scan_altitude", s.plan.ScanAltitude,
		"search_radius", s.plan.SearchRadius,
		"description", cfg.Mission.Description)
	s.initialized = true
	return nil
}

// GetConfig returns the configuration the simulator runs.
func (s *Simulator) GetConfig() *config.SimulationConfig { return s.cfg }

// Plan returns the formation plan.
func (s *Simulator) Plan() mission.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan
}

// Targets returns the spawned people.
func (s *Simulator) Targets() []target.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]target.Person, len(s.people))
	copy(out, s.people)
	return out
}

// Drones returns a snapshot of every drone.
func (s *Simulator) Drones() []DroneStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]DroneStatus, 0, len(s.drones))
	for _, d := range s.drones {
		out = append(out, s.droneStatus(d))
	}
	return out
}

func (s *Simulator) droneStatus(d *flight.Drone) DroneStatus {
	st := DroneStatus{
		ID:          d.Name,
		State:       d.State(),
		Position:    d.Position(),
		Altitude:    d.Altitude(),
		Destination: d.Destination(),
	}
	if c := s.cycles[d.Name]; c != nil {
		st.Phase = c.Phase().String()
		if p, ok := c.Current(); ok {
			st.TargetID = p.ID
		}
	}
	if d.State() == flight.Landing || d.State() == flight.Landed {
		spot := d.LandingSpot()
		st.LandingSpot = &spot
	}
	return st
}

// Reports returns every report received so far.
func (s *Simulator) Reports() []mission.Report {
	s.mu.Lock()
	coord := s.coord
	s.mu.Unlock()
	if coord == nil {
		return nil
	}
	return coord.Reports()
}

// Decision returns the coordinator's decision once it was reached.
func (s *Simulator) Decision() (mission.Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decision == nil {
		return mission.Decision{}, false
	}
	return *s.decision, true
}

// Status summarises the mission.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

func (s *Simulator) status() Status {
	st := Status{
		MissionID:   s.missionID,
		Description: s.cfg.Mission.Description,
		Tick:        s.ticks,
		ElapsedS:    s.elapsed,
		Drones:      len(s.drones),
		Decided:     s.decision != nil,
		Done:        s.done(),
		Plan:        s.plan,
	}
	for _, d := range s.drones {
		if d.State() == flight.Scanning {
			st.DronesScanning++
		}
	}
	if s.coord != nil {
		st.DronesFinished = s.coord.Finished()
		st.Reports = len(s.coord.Reports())
	}
	return st
}

// Done reports whether the mission is over: a decision was reached and,
// if a drone was sent, it has landed.
func (s *Simulator) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done()
}

func (s *Simulator) done() bool {
	if s.decision == nil {
		return false
	}
	if s.decision.Status != mission.StatusLanding {
		return true
	}
	for _, d := range s.drones {
		if d.Name == s.decision.Responder {
			return d.State() == flight.Landed
		}
	}
	return true
}
