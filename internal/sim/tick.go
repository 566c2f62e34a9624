package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dronesearch-sim/internal/flight"
	"dronesearch-sim/internal/geom"
	"dronesearch-sim/internal/logging"
	"dronesearch-sim/internal/mission"
	"dronesearch-sim/internal/scan"
	"dronesearch-sim/internal/telemetry"
)

// Run initializes the mission and ticks in real time until the mission is
// over or the context is done.
func (s *Simulator) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	log.Info("starting simulator", "tick_interval", s.opts.TickInterval, "step", s.opts.Step)
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	dt := s.opts.Step.Seconds()
	for {
		select {
		case <-ticker.C:
			s.tick(ctx, dt)
			if s.Done() {
				log.Info("mission complete", "ticks", s.Status().Tick)
				return nil
			}
		case <-ctx.Done():
			log.Info("stopping simulator")
			return nil
		}
	}
}

// RunFor fast-forwards the mission without waiting between ticks. It stops
// after maxTicks (0 means no limit), when the mission is over or when the
// context is done, and returns the number of ticks run.
func (s *Simulator) RunFor(ctx context.Context, maxTicks int) (int, error) {
	if err := s.Initialize(ctx); err != nil {
		return 0, err
	}
	dt := s.opts.Step.Seconds()
	n := 0
	for maxTicks <= 0 || n < maxTicks {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		s.tick(ctx, dt)
		n++
		if s.Done() {
			break
		}
		if s.analyzing() {
			// Recognition runs off the loop; give it a moment when every
			// scanning drone is waiting on a result.
			time.Sleep(time.Millisecond)
		}
	}
	return n, nil
}

// analyzing reports whether a scan pass waits on recognition.
func (s *Simulator) analyzing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cycles {
		if c.Phase() == scan.Analyze {
			return true
		}
	}
	return false
}

type tickRows struct {
	telemetry []telemetry.TelemetryRow
	reports   []telemetry.ReportRow
	events    []telemetry.EventRow
	decisions []telemetry.DecisionRow
}

// tick advances every drone and its scan pass by dt seconds and writes
// the resulting rows.
func (s *Simulator) tick(ctx context.Context, dt float64) {
	log := logging.FromContext(ctx).With("mission_id", s.missionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks++
	s.elapsed += dt
	var out tickRows

	for _, d := range s.drones {
		if tr, ok := d.Tick(dt); ok {
			log.Info("drone state changed", "drone_id", tr.Drone, "from", tr.From, "to", tr.To)
			out.events = append(out.events, s.gen.Transition(tr.Drone, tr.From.String(), tr.To.String()))
		}
		if d.ConsumeScanReady() {
			s.startScan(d)
			log.Info("scan started", "drone_id", d.Name, "altitude", d.Altitude(), "targets", len(s.people))
		}
		if c := s.cycles[d.Name]; c != nil && c.Phase() != scan.Done {
			for _, ev := range c.Tick(ctx, dt) {
				s.collect(log, &out, ev)
			}
		}
		out.telemetry = append(out.telemetry, s.gen.Telemetry(s.sample(d)))
	}

	for _, dec := range s.pending {
		out.decisions = append(out.decisions, s.gen.Decision(string(dec.Status), dec.Reason, dec.TargetID, dec.Score, dec.Responder, dec.ResponderDistance, dec.LandingSpot))
		ev := s.gen.Event(telemetry.EventDecision, dec.Responder, dec.TargetID)
		ev.Detail = decisionDetail(dec)
		out.events = append(out.events, ev)
	}
	s.pending = nil

	s.write(log, out)
}

func (s *Simulator) startScan(d *flight.Drone) {
	cfg := s.cfg
	mount := d.Position().Add(geom.Vec3{Y: cfg.Flight.CameraMount})
	s.cycles[d.Name] = scan.NewCycle(d.Name, mount, cfg.Flight.CameraFOV, s.people,
		scan.Timing{Settle: cfg.Scan.Settle, Analyze: cfg.Scan.Analyze},
		scan.Deps{
			Visibility: s.sight,
			Renderer:   s.opts.Renderer,
			Recognizer: s.opts.Recognizer,
			Store:      s.opts.Store,
			Reporter:   s.coord,
			Now:        s.opts.Now,
		})
}

func (s *Simulator) sample(d *flight.Drone) telemetry.DroneSample {
	st := s.droneStatus(d)
	return telemetry.DroneSample{
		ID:       st.ID,
		State:    st.State.String(),
		Phase:    st.Phase,
		TargetID: st.TargetID,
		Position: st.Position,
		Altitude: st.Altitude,
	}
}

// collect turns a scan event into rows.
func (s *Simulator) collect(log *slog.Logger, out *tickRows, ev scan.Event) {
	switch {
	case ev.Finished:
		log.Info("drone finished scanning", "drone_id", ev.DroneID)
		out.events = append(out.events, s.gen.Event(telemetry.EventScanFinished, ev.DroneID, ""))
	case ev.Err != nil:
		log.Warn("scan step failed", "drone_id", ev.DroneID, "target_id", ev.TargetID, "phase", ev.Phase, "err", ev.Err)
		e := s.gen.Event(telemetry.EventScanError, ev.DroneID, ev.TargetID)
		e.Detail = fmt.Sprintf("%s: %v", ev.Phase, ev.Err)
		out.events = append(out.events, e)
	case ev.Phase == scan.Restore:
		out.reports = append(out.reports, s.gen.Report(ev.DroneID, ev.TargetID, ev.Confidence, ev.FOV, ev.Distance, ev.CapturePath))
	default:
		log.Debug("scan phase", "drone_id", ev.DroneID, "target_id", ev.TargetID, "phase", ev.Phase, "fov", ev.FOV)
		e := s.gen.Event(telemetry.EventScanPhase, ev.DroneID, ev.TargetID)
		e.To = ev.Phase.String()
		e.Detail = fmt.Sprintf("fov=%.2f distance=%.1f", ev.FOV, ev.Distance)
		if ev.CapturePath != "" {
			e.Detail += " capture=" + ev.CapturePath
		}
		out.events = append(out.events, e)
	}
}

func decisionDetail(d mission.Decision) string {
	switch d.Status {
	case mission.StatusLanding:
		return fmt.Sprintf("score=%.3f landing=(%.1f,%.1f,%.1f)", d.Score, d.LandingSpot.X, d.LandingSpot.Y, d.LandingSpot.Z)
	case mission.StatusNoResults:
		return "no reports"
	default:
		return d.Reason
	}
}

// write fans the tick's rows out to whatever the writer supports.
func (s *Simulator) write(log *slog.Logger, out tickRows) {
	if s.writer == nil {
		return
	}
	var many func([]telemetry.TelemetryRow) error
	if bw, ok := s.writer.(batchWriter); ok {
		many = bw.WriteBatch
	}
	writeRows(log, "telemetry", out.telemetry, s.writer.Write, many)

	if rw, ok := s.writer.(ReportWriter); ok {
		var many func([]telemetry.ReportRow) error
		if bw, ok := s.writer.(batchReportWriter); ok {
			many = bw.WriteReports
		}
		writeRows(log, "reports", out.reports, rw.WriteReport, many)
	}
	s.writeEvents(log, out.events)
	if dw, ok := s.writer.(DecisionWriter); ok {
		writeRows(log, "decisions", out.decisions, dw.WriteDecision, nil)
	}
	if sw, ok := s.writer.(StateWriter); ok {
		st := s.status()
		row := telemetry.SimulationStateRow{
			MissionID:      s.missionID,
			Tick:           st.Tick,
			ElapsedS:       st.ElapsedS,
			DronesScanning: st.DronesScanning,
			DronesFinished: st.DronesFinished,
			Reports:        st.Reports,
			Decided:        st.Decided,
			Timestamp:      s.opts.Now().UTC(),
		}
		if err := sw.WriteState(row); err != nil {
			log.Error("state write failed", "err", err)
		}
	}
}

func (s *Simulator) writeEvents(log *slog.Logger, events []telemetry.EventRow) {
	ew, ok := s.writer.(EventWriter)
	if !ok {
		return
	}
	var many func([]telemetry.EventRow) error
	if bw, ok := s.writer.(batchEventWriter); ok {
		many = bw.WriteEvents
	}
	writeRows(log, "events", events, ew.WriteEvent, many)
}
