package commands

import (
	"fmt"

	"github.com/sdpower/ccinsights-go/internal/insights"
	"github.com/spf13/cobra"
)

func NewSkillsCommand() *cobra.Command {
	var opts sharedOptions

	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Analyze skill invocations and their cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataLoader, formatter := opts.setup()

			report := insights.NewSkillAnalyzer(dataLoader).Analyze(opts.days, opts.date)
			out, err := formatter.FormatSkillReport(report)
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
