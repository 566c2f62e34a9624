package sim

import (
	"errors"

	"dronesearch-sim/internal/telemetry"
)

// MultiWriter fan-outs every row kind to the writers that accept it.
type MultiWriter struct {
	telewriters  []TelemetryWriter
	repwriters   []ReportWriter
	evwriters    []EventWriter
	decwriters   []DecisionWriter
	statewriters []StateWriter
	adminwriters []AdminStatusWriter
}

// NewMultiWriter creates a new MultiWriter. Each writer is registered for
// every row kind it implements; values implementing none are ignored.
func NewMultiWriter(ws ...any) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w == nil {
			continue
		}
		if tw, ok := w.(TelemetryWriter); ok {
			mw.telewriters = append(mw.telewriters, tw)
		}
		if rw, ok := w.(ReportWriter); ok {
			mw.repwriters = append(mw.repwriters, rw)
		}
		if ew, ok := w.(EventWriter); ok {
			mw.evwriters = append(mw.evwriters, ew)
		}
		if dw, ok := w.(DecisionWriter); ok {
			mw.decwriters = append(mw.decwriters, dw)
		}
		if sw, ok := w.(StateWriter); ok {
			mw.statewriters = append(mw.statewriters, sw)
		}
		if aw, ok := w.(AdminStatusWriter); ok {
			mw.adminwriters = append(mw.adminwriters, aw)
		}
	}
	return mw
}

// Len returns how many distinct telemetry writers are attached.
func (mw *MultiWriter) Len() int { return len(mw.telewriters) }

// Write sends a telemetry row to all writers. A failing writer does not
// stop the others.
func (mw *MultiWriter) Write(row telemetry.TelemetryRow) error {
	var errs []error
	for _, w := range mw.telewriters {
		errs = append(errs, w.Write(row))
	}
	return errors.Join(errs...)
}

// WriteBatch sends multiple telemetry rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	var errs []error
	for _, w := range mw.telewriters {
		if bw, ok := w.(batchWriter); ok {
			errs = append(errs, bw.WriteBatch(rows))
			continue
		}
		for _, r := range rows {
			errs = append(errs, w.Write(r))
		}
	}
	return errors.Join(errs...)
}

// WriteReport sends a scan report to all report writers.
func (mw *MultiWriter) WriteReport(row telemetry.ReportRow) error {
	var errs []error
	for _, w := range mw.repwriters {
		errs = append(errs, w.WriteReport(row))
	}
	return errors.Join(errs...)
}

// WriteReports sends multiple reports, using batch if supported.
func (mw *MultiWriter) WriteReports(rows []telemetry.ReportRow) error {
	var errs []error
	for _, w := range mw.repwriters {
		if bw, ok := w.(batchReportWriter); ok {
			errs = append(errs, bw.WriteReports(rows))
			continue
		}
		for _, r := range rows {
			errs = append(errs, w.WriteReport(r))
		}
	}
	return errors.Join(errs...)
}

// WriteEvent sends a mission event to all event writers.
func (mw *MultiWriter) WriteEvent(row telemetry.EventRow) error {
	var errs []error
	for _, w := range mw.evwriters {
		errs = append(errs, w.WriteEvent(row))
	}
	return errors.Join(errs...)
}

// WriteEvents sends multiple events, using batch if supported.
func (mw *MultiWriter) WriteEvents(rows []telemetry.EventRow) error {
	var errs []error
	for _, w := range mw.evwriters {
		if bw, ok := w.(batchEventWriter); ok {
			errs = append(errs, bw.WriteEvents(rows))
			continue
		}
		for _, r := range rows {
			errs = append(errs, w.WriteEvent(r))
		}
	}
	return errors.Join(errs...)
}

// WriteDecision sends the decision to all decision writers.
func (mw *MultiWriter) WriteDecision(row telemetry.DecisionRow) error {
	var errs []error
	for _, w := range mw.decwriters {
		errs = append(errs, w.WriteDecision(row))
	}
	return errors.Join(errs...)
}

// WriteState sends a simulation state row to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.SimulationStateRow) error {
	var errs []error
	for _, w := range mw.statewriters {
		errs = append(errs, w.WriteState(row))
	}
	return errors.Join(errs...)
}

// SetAdminStatus forwards the admin server status to interested writers.
func (mw *MultiWriter) SetAdminStatus(listening bool) {
	for _, w := range mw.adminwriters {
		w.SetAdminStatus(listening)
	}
}
