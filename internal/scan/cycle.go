// Package scan runs one drone's scan pass over all known targets as a small
// tick-driven state machine.
package scan

import (
	"context"
	"sort"
	"sync"
	"time"

	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/target"
	"dronesearch-sim/internal/world"
)

// Frame is a captured image handed to recognition and storage.
type Frame struct {
	DroneID    string
	Target     target.Person
	Camera     Camera
	Image      []byte
	CapturedAt time.Time
}

// Recognizer scores how well a frame matches the mission description.
type Recognizer interface {
	Analyze(ctx context.Context, f Frame) (float64, error)
}

// Store persists captured frames and returns where they went.
type Store interface {
	Save(ctx context.Context, f Frame) (string, error)
}

// Reporter receives the results of a scan pass.
type Reporter interface {
	SubmitReport(droneID, targetID string, confidence float64)
	MarkDroneFinished(droneID string)
}

// Timing holds the phase durations.
type Timing struct {
	Settle  time.Duration
	Analyze time.Duration
}

// Deps are the services a cycle calls out to. Store may be nil.
type Deps struct {
	Visibility world.VisibilityTester
	Renderer   Renderer
	Recognizer Recognizer
	Store      Store
	Reporter   Reporter
	Now        func() time.Time
}

// Event describes something that happened during a tick.
type Event struct {
	DroneID     string
	TargetID    string
	Phase       Phase
	Confidence  float64
	FOV         float64
	Distance    float64
	CapturePath string
	Err         error
	Finished    bool
}

// result is what the capture goroutine hands back: the recognition score
// and, when a store is set, where the frame went.
type result struct {
	confidence float64
	err        error
	path       string
	saveErr    error
}

// Cycle is one drone's pass over the targets.
type Cycle struct {
	droneID string
	deps    Deps
	timing  Timing
	camera  Camera
	targets []target.Person

	idx         int
	phase       Phase
	remaining   float64
	pending     chan result
	distance    float64
	capturePath string
}

// NewCycle prepares a scan from the camera mount at mount. Targets are
// visited in ID order, each at most once.
func NewCycle(droneID string, mount geom.Vec3, defaultFOV float64, targets []target.Person, timing Timing, deps Deps) *Cycle {
	ts := make([]target.Person, len(targets))
	copy(ts, targets)
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID < ts[j].ID })
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Cycle{
		droneID:   droneID,
		deps:      deps,
		timing:    timing,
		camera:    Camera{Position: mount, FOV: defaultFOV, DefaultFOV: defaultFOV},
		targets:   ts,
		phase:     Settle,
		remaining: timing.Settle.Seconds(),
	}
}

func (c *Cycle) Phase() Phase { return c.phase }

func (c *Cycle) Camera() Camera { return c.camera }

// Current returns the target being scanned, if any.
func (c *Cycle) Current() (target.Person, bool) {
	if c.phase == Settle || c.phase == Done || c.idx >= len(c.targets) {
		return target.Person{}, false
	}
	return c.targets[c.idx], true
}

// Tick advances the cycle by dt seconds. Phases that need no waiting run
// within the same tick.
func (c *Cycle) Tick(ctx context.Context, dt float64) []Event {
	var events []Event
	for {
		switch c.phase {
		case Settle:
			c.remaining -= dt
			if c.remaining > 0 {
				return events
			}
			events = append(events, c.advanceTo(0)...)
		case Aim:
			p := c.targets[c.idx]
			center := p.Center()
			c.camera.LookAt(center)
			c.distance = geom.Distance(c.camera.Position, center)
			c.camera.FOV = FramingFOV(p.Height, c.distance)
			c.phase = Capture
			events = append(events, c.event(Aim))
		case Capture:
			events = append(events, c.capture(ctx))
			return events
		case Analyze:
			c.remaining -= dt
			if c.remaining > 0 {
				return events
			}
			select {
			case r := <-c.pending:
				c.capturePath = r.path
				if r.saveErr != nil {
					ev := c.event(Capture)
					ev.Err = r.saveErr
					events = append(events, ev)
				}
				c.camera.Reset()
				c.phase = Restore
				ev := c.event(Restore)
				ev.Confidence = r.confidence
				ev.Err = r.err
				if r.err == nil {
					c.deps.Reporter.SubmitReport(c.droneID, c.targets[c.idx].ID, r.confidence)
				}
				events = append(events, ev)
			default:
				return events
			}
		case Restore:
			events = append(events, c.advanceTo(c.idx+1)...)
		case Done:
			return events
		}
	}
}

// advanceTo moves to the first visible target at or after i, or finishes
// the cycle.
func (c *Cycle) advanceTo(i int) []Event {
	for ; i < len(c.targets); i++ {
		if c.deps.Visibility == nil || c.deps.Visibility.LineOfSight(c.camera.Position, c.targets[i].Center()) {
			c.idx = i
			c.phase = Aim
			return nil
		}
	}
	c.idx = len(c.targets)
	c.phase = Done
	c.deps.Reporter.MarkDroneFinished(c.droneID)
	return []Event{{DroneID: c.droneID, Phase: Done, Finished: true}}
}

func (c *Cycle) capture(ctx context.Context) Event {
	p := c.targets[c.idx]
	c.phase = Analyze
	c.remaining = c.timing.Analyze.Seconds()
	c.capturePath = ""
	c.pending = make(chan result, 1)

	img, err := c.deps.Renderer.Render(c.camera, p)
	if err != nil {
		c.pending <- result{err: err}
		ev := c.event(Capture)
		ev.Err = err
		return ev
	}
	frame := Frame{DroneID: c.droneID, Target: p, Camera: c.camera, Image: img, CapturedAt: c.deps.Now()}
	// Storage and recognition both leave the loop; Analyze waits for both.
	go func(ch chan<- result, store Store, rec Recognizer) {
		var r result
		var wg sync.WaitGroup
		if store != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.path, r.saveErr = store.Save(ctx, frame)
			}()
		}
		r.confidence, r.err = rec.Analyze(ctx, frame)
		wg.Wait()
		ch <- r
	}(c.pending, c.deps.Store, c.deps.Recognizer)
	return c.event(Capture)
}

func (c *Cycle) event(ph Phase) Event {
	ev := Event{DroneID: c.droneID, Phase: ph, FOV: c.camera.FOV, Distance: c.distance, CapturePath: c.capturePath}
	if c.idx < len(c.targets) {
		ev.TargetID = c.targets[c.idx].ID
	}
	return ev
}
