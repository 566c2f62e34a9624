package sim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"dronesearch-sim/internal/telemetry"
)

// replayLine is a line of either a telemetry JSONL file or of the JSON
// stdout stream, which wraps every row in {"kind", "row"}.
type replayLine struct {
	Kind string          `json:"kind"`
	Row  json.RawMessage `json:"row"`
	TS   time.Time       `json:"ts"`
}

// ReplayLog replays rows from r to writer. A speed >0 scales the gaps
// between row timestamps; if speed <= 0, no artificial delay is inserted.
// Rows of a kind the writer does not handle are skipped.
func ReplayLog(ctx context.Context, r io.Reader, writer TelemetryWriter, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	n := 0
	for {
		var line replayLine
		raw := json.RawMessage{}
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}
		if err := json.Unmarshal(raw, &line); err != nil {
			return n, err
		}
		body := raw
		if line.Kind != "" {
			body = line.Row
			var stamp struct {
				TS time.Time `json:"ts"`
			}
			_ = json.Unmarshal(body, &stamp)
			line.TS = stamp.TS
		}

		if !prev.IsZero() && speed > 0 && line.TS.After(prev) {
			diff := time.Duration(float64(line.TS.Sub(prev)) / speed)
			select {
			case <-time.After(diff):
			case <-ctx.Done():
				return n, ctx.Err()
			}
		}
		if !line.TS.IsZero() {
			prev = line.TS
		}
		if err := replayRow(writer, line.Kind, body); err != nil {
			return n, err
		}
		n++
	}
}

func replayRow(writer TelemetryWriter, kind string, body json.RawMessage) error {
	switch kind {
	case "", "telemetry":
		var row telemetry.TelemetryRow
		if err := json.Unmarshal(body, &row); err != nil {
			return err
		}
		return writer.Write(row)
	case "report":
		return replayAs(writer, body, ReportWriter.WriteReport)
	case "event":
		return replayAs(writer, body, EventWriter.WriteEvent)
	case "decision":
		return replayAs(writer, body, DecisionWriter.WriteDecision)
	default:
		return fmt.Errorf("unknown row kind %q", kind)
	}
}

func replayAs[W any, R any](writer TelemetryWriter, body json.RawMessage, write func(W, R) error) error {
	w, ok := writer.(W)
	if !ok {
		return nil
	}
	var row R
	if err := json.Unmarshal(body, &row); err != nil {
		return err
	}
	return write(w, row)
}

// ReplayLogFile opens a file and replays its rows.
func ReplayLogFile(ctx context.Context, path string, writer TelemetryWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(ctx, f, writer, speed)
}
