package commands

import (
	"fmt"

	"github.com/sdpower/ccinsights-go/internal/insights"
	"github.com/spf13/cobra"
)

func NewAnomaliesCommand() *cobra.Command {
	var opts sharedOptions

	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Detect runaway loops and spending spikes",
		Long:  `Scan session logs for tool loops, repeated file edits, token spikes and other anomalies.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataLoader, formatter := opts.setup()

			report := insights.NewAnomalyDetector(dataLoader).Analyze(opts.days, opts.date)
			out, err := formatter.FormatAnomalyReport(report)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	opts.register(cmd)
	return cmd
}
