package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"dronesearch-sim/internal/telemetry"
)

// JSONStdoutWriter prints every row as one JSON object per line.
type JSONStdoutWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

type kindRow struct {
	Kind string `json:"kind"`
	Row  any    `json:"row"`
}

func (w *JSONStdoutWriter) emit(kind string, row any) error {
	data, err := json.Marshal(kindRow{Kind: kind, Row: row})
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// Write outputs a telemetry row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.TelemetryRow) error {
	return w.emit("telemetry", row)
}

// WriteReport outputs a scan report in JSON format.
func (w *JSONStdoutWriter) WriteReport(row telemetry.ReportRow) error {
	return w.emit("report", row)
}

// WriteEvent outputs a mission event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(row telemetry.EventRow) error {
	return w.emit("event", row)
}

// WriteDecision outputs the decision in JSON format.
func (w *JSONStdoutWriter) WriteDecision(row telemetry.DecisionRow) error {
	return w.emit("decision", row)
}
