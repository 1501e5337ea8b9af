package commands

import (
	"fmt"

	"github.com/sdpower/ccinsights-go/internal/insights"
	"github.com/spf13/cobra"
)

func NewROICommand() *cobra.Command {
	var opts sharedOptions

	cmd := &cobra.Command{
		Use:   "roi",
		Short: "Classify token spend into activity domains",
		Long:  `Attribute output tokens to coding, research, CRM and other domains and score how the spend balances between high-value and support work.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataLoader, formatter := opts.setup()

			report := insights.NewROIAnalyzer(dataLoader).Analyze(opts.days, opts.date)
			out, err := formatter.FormatROIReport(report)
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
