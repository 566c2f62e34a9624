package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dronesearch-sim/internal/mission"
)

var (
	planConfigPath string
	planScenario   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the search formation for a mission",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(planConfigPath, "", planScenario)
		if err != nil {
			return err
		}
		p := mission.PlanMission(cfg.Area, cfg.Flight.CameraFOV, cfg.Flight.CruiseAltitude, len(cfg.Drones), cfg.Terrain)

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Looking for:\t%s\n", cfg.Mission.Description)
		fmt.Fprintf(tw, "Center:\t(%.1f, %.1f, %.1f)\n", p.Center.X, p.Center.Y, p.Center.Z)
		fmt.Fprintf(tw, "Search radius:\t%.1f m\n", p.SearchRadius)
		fmt.Fprintf(tw, "Scan altitude:\t%.1f m\n", p.ScanAltitude)
		fmt.Fprintf(tw, "Cruise altitude:\t%.1f m\n", p.CruiseAltitude)
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "DRONE\tX\tY\tZ")
		for i, pt := range p.Formation {
			fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%.1f\n", cfg.Drones[i], pt.X, pt.Y, pt.Z)
		}
		return tw.Flush()
	},
}

func init() {
	planCmd.Flags().StringVar(&planConfigPath, "config", "config/mission.yaml", "Path to mission configuration YAML")
	planCmd.Flags().StringVar(&planScenario, "scenario", "", "Built-in scenario name or scenario YAML file")
}
