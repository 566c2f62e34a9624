// ColorStdoutWriter prints human-friendly, colorized mission output to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/telemetry"
)

// ColorStdoutWriter prints rows using ANSI colors. Telemetry is printed
// only when a drone changes state or scan phase so the output stays
// readable at high tick rates.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	once sync.Once

	mu         sync.Mutex
	last       map[string]string
	droneColor map[string]*color.Color
	colorIdx   int

	gray, red, green, yellow, blue, magenta, cyan *color.Color
	mk                                            func(...color.Attribute) *color.Color
}

var dronePalette = []color.Attribute{color.FgGreen, color.FgYellow, color.FgBlue, color.FgMagenta, color.FgCyan, color.FgRed}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return newColorWriter(cfg, os.Stdout, true)
}

func newColorWriter(cfg *config.SimulationConfig, out io.Writer, colorize bool) *ColorStdoutWriter {
	mk := func(a ...color.Attribute) *color.Color {
		c := color.New(a...)
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	w := &ColorStdoutWriter{
		cfg:        cfg,
		out:        out,
		last:       make(map[string]string),
		droneColor: make(map[string]*color.Color),
		gray:       mk(color.FgHiBlack),
		red:        mk(color.FgRed, color.Bold),
		green:      mk(color.FgGreen),
		yellow:     mk(color.FgYellow),
		blue:       mk(color.FgBlue),
		magenta:    mk(color.FgMagenta),
		cyan:       mk(color.FgCyan),
	}
	w.mk = mk
	return w
}

func (w *ColorStdoutWriter) getDroneColor(id string) *color.Color {
	if c, ok := w.droneColor[id]; ok {
		return c
	}
	c := w.mk(dronePalette[w.colorIdx%len(dronePalette)])
	w.droneColor[id] = c
	w.colorIdx++
	return c
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	c := w.cfg
	fmt.Fprintln(w.out, "Search Mission:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Mission:\t%s\n", c.Mission.ID)
	fmt.Fprintf(tw, "Looking for:\t%s\n", c.Mission.Description)
	fmt.Fprintf(tw, "Drones:\t%d\n", len(c.Drones))
	fmt.Fprintf(tw, "People:\t%d\n", len(c.Persons))
	fmt.Fprintf(tw, "Cruise Altitude (m):\t%.0f\n", c.Flight.CruiseAltitude)
	fmt.Fprintf(tw, "Camera FOV (deg):\t%.0f\n", c.Flight.CameraFOV)
	fmt.Fprintf(tw, "Settle / Analyze:\t%s / %s\n", c.Scan.Settle, c.Scan.Analyze)
	tw.Flush()
	fmt.Fprintln(w.out)
}

func (w *ColorStdoutWriter) stamp(ts time.Time) string {
	return w.gray.Sprintf("[%s]", ts.Format(time.RFC3339))
}

// Write outputs a telemetry row when the drone's state or phase changed.
func (w *ColorStdoutWriter) Write(row telemetry.TelemetryRow) error {
	w.once.Do(w.printOverview)
	w.mu.Lock()
	defer w.mu.Unlock()

	key := row.State + "/" + row.Phase + "/" + row.TargetID
	if w.last[row.DroneID] == key {
		return nil
	}
	w.last[row.DroneID] = key

	fmt.Fprintf(w.out, "%s %s %s %s %s",
		w.stamp(row.Timestamp),
		w.getDroneColor(row.DroneID).Sprintf("drone=%s", row.DroneID),
		w.blue.Sprintf("state=%s", row.State),
		w.green.Sprintf("pos=(%.1f,%.1f,%.1f)", row.X, row.Y, row.Z),
		w.magenta.Sprintf("alt=%.1f", row.Altitude))
	if row.Phase != "" {
		fmt.Fprintf(w.out, " %s", w.cyan.Sprintf("phase=%s", row.Phase))
	}
	if row.TargetID != "" {
		fmt.Fprintf(w.out, " %s", w.yellow.Sprintf("target=%s", row.TargetID))
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple telemetry rows.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteReport prints a scan report.
func (w *ColorStdoutWriter) WriteReport(r telemetry.ReportRow) error {
	w.once.Do(w.printOverview)
	conf := w.yellow
	if r.Confidence >= 0.5 {
		conf = w.green
	}
	fmt.Fprintf(w.out, "%s %s drone=%s target=%s %s fov=%.2f dist=%.1f",
		w.stamp(r.Timestamp), w.cyan.Sprint("REPORT"), r.DroneID, r.TargetID,
		conf.Sprintf("conf=%.3f", r.Confidence), r.FOV, r.DistanceM)
	if r.CapturePath != "" {
		fmt.Fprintf(w.out, " capture=%s", r.CapturePath)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteEvent prints state changes, scan errors and the decision event.
// Scan phase events are skipped; telemetry already shows the phase.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.EventRow) error {
	w.once.Do(w.printOverview)
	switch e.EventType {
	case telemetry.EventScanPhase:
		return nil
	case telemetry.EventScanError:
		fmt.Fprintf(w.out, "%s %s drone=%s target=%s %s\n", w.stamp(e.Timestamp), w.red.Sprint("SCAN ERROR"), e.DroneID, e.TargetID, e.Detail)
	case telemetry.EventStateChange:
		fmt.Fprintf(w.out, "%s %s %s %s -> %s\n", w.stamp(e.Timestamp), w.blue.Sprint("STATE"), w.getDroneColor(e.DroneID).Sprint(e.DroneID), e.From, e.To)
	default:
		fmt.Fprintf(w.out, "%s %s", w.stamp(e.Timestamp), w.magenta.Sprint(e.EventType))
		if e.DroneID != "" {
			fmt.Fprintf(w.out, " drone=%s", e.DroneID)
		}
		if e.Detail != "" {
			fmt.Fprintf(w.out, " %s", e.Detail)
		}
		fmt.Fprintln(w.out)
	}
	return nil
}

// WriteDecision prints the coordinator's decision.
func (w *ColorStdoutWriter) WriteDecision(d telemetry.DecisionRow) error {
	w.once.Do(w.printOverview)
	if d.Status != "landing" {
		fmt.Fprintf(w.out, "%s %s status=%s %s\n", w.stamp(d.Timestamp), w.red.Sprint("DECISION"), d.Status, d.Reason)
		return nil
	}
	fmt.Fprintf(w.out, "%s %s target=%s score=%.3f responder=%s distance=%.1f land=(%.1f,%.1f,%.1f)\n",
		w.stamp(d.Timestamp), w.green.Sprint("DECISION"), d.TargetID, d.Score, d.Responder, d.ResponderDistance, d.LandX, d.LandY, d.LandZ)
	return nil
}
