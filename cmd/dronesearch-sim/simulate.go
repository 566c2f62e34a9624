package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dronesearch-sim/internal/admin"
	"dronesearch-sim/internal/capture"
	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/logging"
	"dronesearch-sim/internal/recognition"
	"dronesearch-sim/internal/scan"
	"dronesearch-sim/internal/sim"
)

var (
	simPrintOnly  bool
	simJSON       bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simScenario   string
	simTick       time.Duration
	simStep       time.Duration
	simMaxTicks   int
	simLogFile    string
	simAdminAddr  string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a search mission",
	Long: "simulate plans the formation, flies the drones to the search area, scans every visible " +
		"person and lands the responder. With --max-ticks the mission is fast-forwarded.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simTUI {
			// The TUI owns the terminal.
			if err := setupLogging(cmd, io.Discard); err != nil {
				return err
			}
		}
		log := logging.FromContext(cmd.Context())

		cfg, err := loadConfig(simConfigPath, simSchemaPath, simScenario)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		tickInterval := simTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		var hub *admin.Hub
		if simAdminAddr != "" {
			hub = admin.NewHub(log)
		}
		ws, err := newWriters(ctx, cfg, writerOptions{
			PrintOnly: simPrintOnly,
			JSON:      simJSON,
			TUI:       simTUI,
			LogFile:   simLogFile,
			Hub:       hub,
		})
		if err != nil {
			return err
		}
		defer ws.Close()

		missionID := resolveMissionID(cfg)
		store, err := newStore(ctx, cfg, missionID)
		if err != nil {
			return err
		}

		opts := sim.Options{
			MissionID:    missionID,
			TickInterval: tickInterval,
			Step:         simStep,
			Store:        store,
			Recognizer:   newRecognizer(cfg),
		}
		simulator := sim.NewSimulator(cfg, ws.Writer, opts)

		if hub != nil {
			srv := admin.NewServer(simulator, hub, log)
			go func() {
				if err := srv.Start(ctx, simAdminAddr, ws.Writer.SetAdminStatus); err != nil {
					log.Error("admin server failed", "err", err)
				}
			}()
		}

		if simMaxTicks > 0 {
			n, err := simulator.RunFor(ctx, simMaxTicks)
			if err != nil && ctx.Err() == nil {
				return err
			}
			log.Info("simulation finished", "ticks", n, "done", simulator.Done())
		} else if err := simulator.Run(ctx); err != nil {
			return err
		}

		if d, ok := simulator.Decision(); ok {
			log.Info("mission result", "status", d.Status, "target_id", d.TargetID, "responder", d.Responder)
		}
		log.Info("drone search simulation stopped")
		return nil
	},
}

// newRecognizer returns the HTTP client when an endpoint is configured;
// otherwise the simulator falls back to the local oracle.
func newRecognizer(cfg *config.SimulationConfig) scan.Recognizer {
	if cfg.Recognition.Endpoint == "" {
		return nil
	}
	return recognition.NewClient(cfg.Recognition.Endpoint, cfg.Mission.Description, cfg.Mission.GeneralDescription, cfg.Recognition.Timeout)
}

// resolveMissionID fixes the mission ID before anything is built, so rows
// and captures of one run share it.
func resolveMissionID(cfg *config.SimulationConfig) string {
	if cfg.Mission.ID == "" {
		cfg.Mission.ID = uuid.NewString()
	}
	return cfg.Mission.ID
}

// captureStores opens the configured capture sinks. Captures of a run are
// kept under its mission ID.
func captureStores(cfg *config.SimulationConfig, missionID string) (capture.MultiStore, error) {
	var stores capture.MultiStore
	if cfg.Capture.Dir != "" {
		ds, err := capture.NewDirStore(filepath.Join(cfg.Capture.Dir, missionID))
		if err != nil {
			return nil, err
		}
		stores = append(stores, ds)
	}
	if m := cfg.Capture.Minio; m.Endpoint != "" {
		ms, err := capture.NewMinioStore(m.Endpoint, m.AccessKey, m.SecretKey, m.Secure, m.Bucket, missionID)
		if err != nil {
			return nil, err
		}
		stores = append(stores, ms)
	}
	return stores, nil
}

// newStore builds the capture store from the configured sinks.
func newStore(ctx context.Context, cfg *config.SimulationConfig, missionID string) (scan.Store, error) {
	stores, err := captureStores(cfg, missionID)
	if err != nil {
		return nil, err
	}
	for _, s := range stores {
		if ms, ok := s.(*capture.MinioStore); ok {
			if err := ms.EnsureBucket(ctx); err != nil {
				return nil, err
			}
		}
	}
	switch len(stores) {
	case 0:
		return nil, nil
	case 1:
		return stores[0], nil
	}
	return stores, nil
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print rows to STDOUT instead of writing to GreptimeDB")
	simulateCmd.Flags().BoolVar(&simJSON, "json", false, "Print JSON instead of colored text")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Show the interactive terminal UI")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/mission.yaml", "Path to mission configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "", "Path to CUE schema file (embedded schema when empty)")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Built-in scenario name or scenario YAML file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", 100*time.Millisecond, "Wall-clock tick interval (e.g. 100ms, 1s)")
	simulateCmd.Flags().DurationVar(&simStep, "step", 0, "Simulated time per tick (defaults to --tick)")
	simulateCmd.Flags().IntVar(&simMaxTicks, "max-ticks", 0, "Fast-forward at most this many ticks instead of running in real time")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path prefix for JSONL row logs")
	simulateCmd.Flags().StringVar(&simAdminAddr, "admin-addr", "", "Address for the status server (e.g. :8080)")
}
