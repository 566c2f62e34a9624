// Package database stores scan reports and mission decisions in Postgres.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"dronesearch-sim/internal/telemetry"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store writes mission rows to Postgres.
type Store struct {
	db      execer
	closer  func() error
	timeout time.Duration
}

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := New(db)
	s.closer = db.Close
	return s, nil
}

// New wraps an existing connection.
func New(db execer) *Store {
	return &Store{db: db, timeout: 5 * time.Second}
}

const schema = `
CREATE TABLE IF NOT EXISTS scan_reports (
	mission_id TEXT NOT NULL,
	drone_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	fov DOUBLE PRECISION NOT NULL,
	distance_m DOUBLE PRECISION NOT NULL,
	capture_path TEXT,
	reported_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (mission_id, drone_id, target_id)
);

CREATE TABLE IF NOT EXISTS mission_decisions (
	mission_id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	reason TEXT,
	target_id TEXT,
	score DOUBLE PRECISION,
	responder TEXT,
	responder_distance DOUBLE PRECISION,
	land_x DOUBLE PRECISION,
	land_y DOUBLE PRECISION,
	land_z DOUBLE PRECISION,
	decided_at TIMESTAMPTZ NOT NULL
);
`

// Init creates the required tables if they don't exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// A drone resubmitting a target replaces its earlier report.
const insertReport = `
INSERT INTO scan_reports (mission_id, drone_id, target_id, confidence, fov, distance_m, capture_path, reported_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (mission_id, drone_id, target_id) DO UPDATE SET
	confidence = EXCLUDED.confidence,
	fov = EXCLUDED.fov,
	distance_m = EXCLUDED.distance_m,
	capture_path = EXCLUDED.capture_path,
	reported_at = EXCLUDED.reported_at`

const insertDecision = `
INSERT INTO mission_decisions (mission_id, status, reason, target_id, score, responder, responder_distance, land_x, land_y, land_z, decided_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (mission_id) DO NOTHING`

// WriteReport stores a scan report.
func (s *Store) WriteReport(r telemetry.ReportRow) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, insertReport,
		r.MissionID, r.DroneID, r.TargetID, r.Confidence, r.FOV, r.DistanceM, r.CapturePath, r.Timestamp)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// WriteDecision stores the mission decision. Only the first decision of a
// mission is kept.
func (s *Store) WriteDecision(d telemetry.DecisionRow) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, insertDecision,
		d.MissionID, d.Status, d.Reason, d.TargetID, d.Score, d.Responder, d.ResponderDistance, d.LandX, d.LandY, d.LandZ, d.Timestamp)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
