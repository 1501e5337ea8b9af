package commands

import (
	"fmt"
	"time"

	"github.com/sdpower/ccinsights-go/internal/dashboard"
	"github.com/spf13/cobra"
)

func NewDashboardCommand() *cobra.Command {
	var (
		dataPath string
		days     int
		interval int
		noColor  bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Live insights dashboard",
		Long:  `Run the full analysis on an interval and render the key numbers in a live terminal dashboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataPath == "" {
				dataPath = getDefaultDataPath()
			}

			dash := dashboard.New(dashboard.Options{
				DataPath: dataPath,
				Days:     days,
				Interval: time.Duration(interval) * time.Second,
				NoColor:  noColor,
			})

			if err := dash.Start(cmd.Context()); err != nil {
				return fmt.Errorf("failed to start dashboard: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data-path", "", "Path to Claude projects directory")
	cmd.Flags().IntVarP(&days, "days", "n", 7, "Days of history to analyze")
	cmd.Flags().IntVar(&interval, "interval", 30, "Refresh interval in seconds")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}
