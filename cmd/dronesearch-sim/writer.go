package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"dronesearch-sim/internal/admin"
	"dronesearch-sim/internal/broker"
	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/database"
	"dronesearch-sim/internal/logging"
	"dronesearch-sim/internal/sim"
)

type writerOptions struct {
	PrintOnly bool
	JSON      bool
	TUI       bool
	LogFile   string
	Hub       *admin.Hub
	// Stdout overrides the terminal check; tests set it.
	Stdout *bool
}

// writerSet is the combined writer and everything that must be closed
// after the run.
type writerSet struct {
	Writer  *sim.MultiWriter
	closers []io.Closer
}

func (ws *writerSet) Close() error {
	var errs []error
	for i := len(ws.closers) - 1; i >= 0; i-- {
		if err := ws.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// tuiWriter is the interactive writer; it owns the terminal until closed.
type tuiWriter interface {
	sim.TelemetryWriter
	io.Closer
}

var newTUIWriter = func(cfg *config.SimulationConfig) tuiWriter { return sim.NewTUIWriter(cfg) }

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// newWriters selects the outputs for a run. Terminal output is always
// present; the remote sinks are added when their configuration is set.
func newWriters(ctx context.Context, cfg *config.SimulationConfig, o writerOptions) (*writerSet, error) {
	log := logging.FromContext(ctx)
	ws := &writerSet{}
	var writers []any

	switch {
	case o.TUI:
		tw := newTUIWriter(cfg)
		writers = append(writers, tw)
		ws.closers = append(ws.closers, tw)
	case o.JSON:
		writers = append(writers, sim.NewJSONStdoutWriter())
	default:
		tty := isTerminal()
		if o.Stdout != nil {
			tty = *o.Stdout
		}
		if tty {
			writers = append(writers, sim.NewColorStdoutWriter(cfg))
		} else {
			writers = append(writers, sim.NewJSONStdoutWriter())
		}
	}

	if !o.PrintOnly && cfg.Greptime.Endpoint != "" {
		gw, err := sim.NewGreptimeDBWriter(cfg.Greptime.Endpoint, cfg.Greptime.Database, log)
		if err != nil {
			_ = ws.Close()
			return nil, fmt.Errorf("greptime writer: %w", err)
		}
		writers = append(writers, gw)
	}

	if o.LogFile != "" {
		fw, err := sim.NewFileWriter(sim.FilePaths{
			Telemetry: o.LogFile,
			Reports:   o.LogFile + ".reports",
			Events:    o.LogFile + ".events",
			Decisions: o.LogFile + ".decisions",
			State:     o.LogFile + ".state",
		})
		if err != nil {
			_ = ws.Close()
			return nil, err
		}
		writers = append(writers, fw)
		ws.closers = append(ws.closers, fw)
	}

	if !o.PrintOnly && len(cfg.Kafka.Brokers) > 0 {
		p, err := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ReportsTopic, cfg.Kafka.DecisionsTopic, log)
		if err != nil {
			_ = ws.Close()
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		writers = append(writers, p)
		ws.closers = append(ws.closers, p)
	}

	if !o.PrintOnly && cfg.Postgres.DSN != "" {
		db, err := database.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			_ = ws.Close()
			return nil, fmt.Errorf("database: %w", err)
		}
		if err := db.Init(ctx); err != nil {
			_ = db.Close()
			_ = ws.Close()
			return nil, fmt.Errorf("database init: %w", err)
		}
		writers = append(writers, db)
		ws.closers = append(ws.closers, db)
	}

	if o.Hub != nil {
		writers = append(writers, o.Hub)
	}

	ws.Writer = sim.NewMultiWriter(writers...)
	log.Debug("writers ready", "telemetry_writers", ws.Writer.Len())
	return ws, nil
}
