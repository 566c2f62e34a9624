package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"dronesearch-sim/internal/logging"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "dronesearch-sim",
	Short: "Drone search-and-rescue simulation toolkit",
	Long: "dronesearch-sim flies a swarm of camera drones over a search area, scores every person " +
		"they can see against a description and lands the closest drone next to the best match.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(cmd, os.Stderr)
	},
}

// setupLogging stores a logger at the requested level in the command's
// context.
func setupLogging(cmd *cobra.Command, w io.Writer) error {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	cmd.SetContext(logging.NewContext(cmd.Context(), logging.NewWithLevel(w, level)))
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(dashboardCmd)
}
