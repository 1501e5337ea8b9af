package commands

import (
	"fmt"

	"github.com/sdpower/ccinsights-go/internal/insights"
	"github.com/spf13/cobra"
)

func NewCacheCommand() *cobra.Command {
	var opts sharedOptions

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Score prompt cache efficiency",
		Long:  `Roll up cache read and creation tokens by project and day, flag sessions with poor hit rates, and estimate savings.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataLoader, formatter := opts.setup()

			report := insights.NewCacheAnalyzer(dataLoader).Analyze(opts.days, opts.date)
			out, err := formatter.FormatCacheReport(report)
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
