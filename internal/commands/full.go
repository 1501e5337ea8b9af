package commands

import (
	"fmt"

	"github.com/sdpower/ccinsights-go/internal/insights"
	"github.com/spf13/cobra"
)

func NewFullCommand() *cobra.Command {
	var opts sharedOptions

	cmd := &cobra.Command{
		Use:   "full",
		Short: "Run every analysis and produce the combined report",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataLoader, formatter := opts.setup()

			report := insights.NewReportBuilder(dataLoader).Full(opts.days, opts.date)
			out, err := formatter.FormatInsightsReport(report)
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
