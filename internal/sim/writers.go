package sim

import (
	"log/slog"

	"dronesearch-sim/internal/telemetry"
)

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.TelemetryRow) error
}

// Optional: Writers can also support batch mode
type batchWriter interface {
	WriteBatch([]telemetry.TelemetryRow) error
}

// ReportWriter handles scan reports.
type ReportWriter interface {
	WriteReport(telemetry.ReportRow) error
}

type batchReportWriter interface {
	WriteReports([]telemetry.ReportRow) error
}

// EventWriter handles mission events.
type EventWriter interface {
	WriteEvent(telemetry.EventRow) error
}

type batchEventWriter interface {
	WriteEvents([]telemetry.EventRow) error
}

// DecisionWriter handles the coordinator's decision.
type DecisionWriter interface {
	WriteDecision(telemetry.DecisionRow) error
}

// StateWriter handles simulation state rows.
type StateWriter interface {
	WriteState(telemetry.SimulationStateRow) error
}

// AdminStatusWriter allows writers to receive admin server status updates.
type AdminStatusWriter interface {
	SetAdminStatus(listening bool)
}

// writeRows sends rows through the batch method when there is one.
// Failures are logged and never stop the caller.
func writeRows[T any](log *slog.Logger, kind string, rows []T, one func(T) error, many func([]T) error) {
	if len(rows) == 0 {
		return
	}
	if many != nil {
		if err := many(rows); err != nil {
			log.Error("batch write failed", "rows", kind, "err", err)
		}
		return
	}
	for _, r := range rows {
		if err := one(r); err != nil {
			log.Error("write failed", "rows", kind, "err", err)
		}
	}
}
