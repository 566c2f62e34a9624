package main

import (
	"github.com/spf13/cobra"

	"dronesearch-sim/internal/config"
	"dronesearch-sim/internal/logging"
	"dronesearch-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayConfig    string
	replayJSON      bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded telemetry log",
	Long:  "replay reads a JSONL telemetry log, or the output of simulate --json, and writes it again with the original timing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logging.FromContext(ctx)

		cfg := &config.SimulationConfig{}
		if replayConfig != "" {
			c, err := config.Load(replayConfig, "")
			if err != nil {
				return err
			}
			cfg = c
		}
		ws, err := newWriters(ctx, cfg, writerOptions{PrintOnly: replayPrintOnly, JSON: replayJSON})
		if err != nil {
			return err
		}
		defer ws.Close()

		n, err := sim.ReplayLogFile(ctx, replayInput, ws.Writer, replaySpeed)
		if err != nil {
			return err
		}
		log.Info("replay finished", "rows", n, "input", replayInput)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to the JSONL log")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1, "Playback speed multiplier (0 for no delay)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", true, "Only print rows, never write to remote sinks")
	replayCmd.Flags().StringVar(&replayConfig, "config", "", "Mission configuration for remote sinks and the overview")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "Print JSON instead of colored text")
	_ = replayCmd.MarkFlagRequired("input")
}
