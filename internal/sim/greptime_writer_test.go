package sim

import (
	"context"
	"errors"
	"log/slog"
	"io"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"

	"dronesearch-sim/internal/telemetry"
)

type mockGreptimeClient struct {
	tables []*table.Table
	err    error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.tables = append(m.tables, tables...)
	return &gpb.GreptimeResponse{}, m.err
}

func newTestGreptimeWriter(m *mockGreptimeClient) *GreptimeDBWriter {
	return &GreptimeDBWriter{client: m, timeout: time.Second, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestGreptimeWriterTelemetryBatch(t *testing.T) {
	m := &mockGreptimeClient{}
	w := newTestGreptimeWriter(m)
	ts := time.Unix(0, 0).UTC()
	rows := []telemetry.TelemetryRow{
		{MissionID: "m1", DroneID: "d1", State: "Scanning", Phase: "Capture", TargetID: "T1", X: 1, Y: 90, Z: 2, Altitude: 90, Timestamp: ts},
		{MissionID: "m1", DroneID: "d2", State: "Cruising", Timestamp: ts},
	}
	if err := w.WriteBatch(rows); err != nil {
		t.Fatalf("WriteBatch: %v", err)
	}
	if len(m.tables) != 1 {
		t.Fatalf("expected one table, got %d", len(m.tables))
	}
	got := m.tables[0].GetRows()
	if len(got.Schema) != len(telemetryColumns) {
		t.Fatalf("schema has %d columns, want %d", len(got.Schema), len(telemetryColumns))
	}
	if got.Schema[0].SemanticType != gpb.SemanticType_TAG || got.Schema[len(got.Schema)-1].SemanticType != gpb.SemanticType_TIMESTAMP {
		t.Fatalf("unexpected semantic types %v / %v", got.Schema[0].SemanticType, got.Schema[len(got.Schema)-1].SemanticType)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got.Rows))
	}
	if v := got.Rows[0].Values[1].GetStringValue(); v != "d1" {
		t.Fatalf("drone_id = %q, want d1", v)
	}
	if v := got.Rows[0].Values[8].GetF64Value(); v != 90 {
		t.Fatalf("altitude = %v, want 90", v)
	}
}

func TestGreptimeWriterReportAndDecision(t *testing.T) {
	m := &mockGreptimeClient{}
	w := newTestGreptimeWriter(m)
	if err := w.WriteReport(telemetry.ReportRow{MissionID: "m1", DroneID: "d1", TargetID: "T1", Confidence: 0.9}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteDecision(telemetry.DecisionRow{MissionID: "m1", Status: "landing", TargetID: "T1", Responder: "d1", Score: 0.9}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteState(telemetry.SimulationStateRow{MissionID: "m1", Tick: 4, Decided: true}); err != nil {
		t.Fatal(err)
	}
	if len(m.tables) != 3 {
		t.Fatalf("expected 3 tables, got %d", len(m.tables))
	}
	if v := m.tables[0].GetRows().Rows[0].Values[3].GetF64Value(); v != 0.9 {
		t.Fatalf("confidence = %v", v)
	}
	if v := m.tables[1].GetRows().Rows[0].Values[5].GetStringValue(); v != "d1" {
		t.Fatalf("responder = %q", v)
	}
	if v := m.tables[2].GetRows().Rows[0].Values[1].GetI64Value(); v != 4 {
		t.Fatalf("tick = %v", v)
	}
}

func TestGreptimeWriterSkipsEmptyAndReturnsErrors(t *testing.T) {
	m := &mockGreptimeClient{}
	w := newTestGreptimeWriter(m)
	if err := w.WriteEvents(nil); err != nil || len(m.tables) != 0 {
		t.Fatalf("empty batch should not write, got %v / %d tables", err, len(m.tables))
	}
	m.err = errors.New("unavailable")
	if err := w.WriteEvent(telemetry.EventRow{MissionID: "m1", EventType: telemetry.EventDecision}); !errors.Is(err, m.err) {
		t.Fatalf("expected client error, got %v", err)
	}
}
