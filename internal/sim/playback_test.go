package sim

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"dronesearch-sim/internal/telemetry"
)

func TestReplayLog(t *testing.T) {
	rows := []telemetry.TelemetryRow{
		{MissionID: "m", DroneID: "d1", Timestamp: time.Unix(0, 0)},
		{MissionID: "m", DroneID: "d2", Timestamp: time.Unix(1, 0)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	cw := &recordingWriter{}
	n, err := ReplayLog(context.Background(), &buf, cw, 0)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if n != len(rows) || len(cw.rows) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(cw.rows))
	}
	for i, r := range rows {
		if cw.rows[i].DroneID != r.DroneID {
			t.Fatalf("row %d mismatch: %+v vs %+v", i, cw.rows[i], r)
		}
	}
}

func TestReplayLogJSONStream(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONStdoutWriter{out: &buf}
	_ = w.Write(telemetry.TelemetryRow{DroneID: "d1"})
	_ = w.WriteReport(telemetry.ReportRow{TargetID: "T1", Confidence: 0.9})
	_ = w.WriteEvent(telemetry.EventRow{EventType: telemetry.EventScanFinished})
	_ = w.WriteDecision(telemetry.DecisionRow{Status: "landing"})

	cw := &recordingWriter{}
	n, err := ReplayLog(context.Background(), &buf, cw, 0)
	if err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if n != 4 || len(cw.rows) != 1 || len(cw.reports) != 1 || len(cw.events) != 1 || len(cw.decisions) != 1 {
		t.Fatalf("unexpected replay n=%d %+v", n, cw)
	}
	if cw.reports[0].Confidence != 0.9 {
		t.Fatalf("unexpected report %+v", cw.reports[0])
	}
}

func TestReplayLogSkipsUnsupportedKinds(t *testing.T) {
	in := `{"kind":"report","row":{"target_id":"T1"}}` + "\n"
	tw := &telemetryOnly{}
	if _, err := ReplayLog(context.Background(), strings.NewReader(in), tw, 0); err != nil {
		t.Fatalf("ReplayLog: %v", err)
	}
	if _, err := ReplayLog(context.Background(), strings.NewReader(`{"kind":"bogus","row":{}}`), tw, 0); err == nil {
		t.Fatal("expected an error for an unknown kind")
	}
}

func TestReplayLogHonoursContext(t *testing.T) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	_ = enc.Encode(telemetry.TelemetryRow{DroneID: "d1", Timestamp: time.Unix(0, 0)})
	_ = enc.Encode(telemetry.TelemetryRow{DroneID: "d1", Timestamp: time.Unix(3600, 0)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := ReplayLog(ctx, &buf, &telemetryOnly{}, 1)
	if err == nil || n != 1 {
		t.Fatalf("expected cancellation after one row, got n=%d err=%v", n, err)
	}
}

type telemetryOnly struct{ n int }

func (w *telemetryOnly) Write(telemetry.TelemetryRow) error { w.n++; return nil }
