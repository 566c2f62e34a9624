package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"
	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"

	"dronesearch-sim/internal/telemetry"
)

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes every row kind to its own GreptimeDB table via
// the ingester client. Tables are created on first write.
type GreptimeDBWriter struct {
	client  greptimeClient
	timeout time.Duration
	log     *slog.Logger
}

// NewGreptimeDBWriter connects to a GreptimeDB gRPC endpoint given as
// host or host:port.
func NewGreptimeDBWriter(endpoint, database string, log *slog.Logger) (*GreptimeDBWriter, error) {
	host, port := endpoint, 4001
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("greptime endpoint %q: %w", endpoint, err)
		}
		host, port = h, n
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &GreptimeDBWriter{client: client, timeout: 5 * time.Second, log: log.With("writer", "greptime")}, nil
}

type column struct {
	name string
	kind string // tag, field or ts
	typ  types.ColumnType
}

func tag(name string) column   { return column{name, "tag", types.STRING} }
func str(name string) column   { return column{name, "field", types.STRING} }
func float(name string) column { return column{name, "field", types.FLOAT64} }
func integer(name string) column {
	return column{name, "field", types.INT64}
}
func boolean(name string) column { return column{name, "field", types.BOOLEAN} }

var tsColumn = column{"ts", "ts", types.TIMESTAMP_MILLISECOND}

var (
	telemetryColumns = []column{tag("mission_id"), tag("drone_id"), str("state"), str("phase"), str("target_id"),
		float("x"), float("y"), float("z"), float("altitude"), tsColumn}
	reportColumns = []column{tag("mission_id"), tag("drone_id"), tag("target_id"), float("confidence"),
		float("fov"), float("distance_m"), str("capture_path"), tsColumn}
	eventColumns = []column{tag("mission_id"), tag("event_type"), str("drone_id"), str("target_id"),
		str("from_state"), str("to_state"), str("detail"), tsColumn}
	decisionColumns = []column{tag("mission_id"), str("status"), str("reason"), str("target_id"), float("score"),
		str("responder"), float("responder_distance"), float("land_x"), float("land_y"), float("land_z"), tsColumn}
	stateColumns = []column{tag("mission_id"), integer("tick"), float("elapsed_s"), integer("drones_scanning"),
		integer("drones_finished"), integer("reports"), boolean("decided"), tsColumn}
)

func buildTable[T any](name string, cols []column, rows []T, values func(T) []any) (*table.Table, error) {
	tbl, err := table.New(name)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		switch c.kind {
		case "tag":
			err = tbl.AddTagColumn(c.name, c.typ)
		case "ts":
			err = tbl.AddTimestampColumn(c.name, c.typ)
		default:
			err = tbl.AddFieldColumn(c.name, c.typ)
		}
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, c.name, err)
		}
	}
	for _, r := range rows {
		if err := tbl.AddRow(values(r)...); err != nil {
			return nil, fmt.Errorf("%s row: %w", name, err)
		}
	}
	return tbl, nil
}

func (w *GreptimeDBWriter) send(name string, tbl *table.Table, n int) error {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.log.Error("write failed", "table", name, "err", err)
		return err
	}
	w.log.Debug("wrote rows", "table", name, "rows", n)
	return nil
}

func writeTable[T any](w *GreptimeDBWriter, name string, cols []column, rows []T, values func(T) []any) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := buildTable(name, cols, rows, values)
	if err != nil {
		return err
	}
	return w.send(name, tbl, len(rows))
}

// Write inserts a single telemetry row.
func (w *GreptimeDBWriter) Write(row telemetry.TelemetryRow) error {
	return w.WriteBatch([]telemetry.TelemetryRow{row})
}

// WriteBatch inserts multiple telemetry rows.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	return writeTable(w, telemetry.TelemetryTableName, telemetryColumns, rows, func(r telemetry.TelemetryRow) []any {
		return []any{r.MissionID, r.DroneID, r.State, r.Phase, r.TargetID, r.X, r.Y, r.Z, r.Altitude, r.Timestamp}
	})
}

// WriteReport inserts a scan report.
func (w *GreptimeDBWriter) WriteReport(row telemetry.ReportRow) error {
	return w.WriteReports([]telemetry.ReportRow{row})
}

// WriteReports inserts multiple scan reports.
func (w *GreptimeDBWriter) WriteReports(rows []telemetry.ReportRow) error {
	return writeTable(w, telemetry.ReportTableName, reportColumns, rows, func(r telemetry.ReportRow) []any {
		return []any{r.MissionID, r.DroneID, r.TargetID, r.Confidence, r.FOV, r.DistanceM, r.CapturePath, r.Timestamp}
	})
}

// WriteEvent inserts a mission event.
func (w *GreptimeDBWriter) WriteEvent(row telemetry.EventRow) error {
	return w.WriteEvents([]telemetry.EventRow{row})
}

// WriteEvents inserts multiple mission events.
func (w *GreptimeDBWriter) WriteEvents(rows []telemetry.EventRow) error {
	return writeTable(w, telemetry.EventTableName, eventColumns, rows, func(r telemetry.EventRow) []any {
		return []any{r.MissionID, r.EventType, r.DroneID, r.TargetID, r.From, r.To, r.Detail, r.Timestamp}
	})
}

// WriteDecision inserts the coordinator's decision.
func (w *GreptimeDBWriter) WriteDecision(row telemetry.DecisionRow) error {
	return writeTable(w, telemetry.DecisionTableName, decisionColumns, []telemetry.DecisionRow{row}, func(r telemetry.DecisionRow) []any {
		return []any{r.MissionID, r.Status, r.Reason, r.TargetID, r.Score, r.Responder, r.ResponderDistance, r.LandX, r.LandY, r.LandZ, r.Timestamp}
	})
}

// WriteState inserts a simulation state row.
func (w *GreptimeDBWriter) WriteState(row telemetry.SimulationStateRow) error {
	return writeTable(w, telemetry.StateTableName, stateColumns, []telemetry.SimulationStateRow{row}, func(r telemetry.SimulationStateRow) []any {
		return []any{r.MissionID, r.Tick, r.ElapsedS, int64(r.DronesScanning), int64(r.DronesFinished), int64(r.Reports), r.Decided, r.Timestamp}
	})
}
