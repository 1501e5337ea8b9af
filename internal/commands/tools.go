package commands

import (
	"fmt"

	"github.com/sdpower/ccinsights-go/internal/insights"
	"github.com/spf13/cobra"
)

func NewToolsCommand() *cobra.Command {
	var opts sharedOptions

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Break down token usage by tool and MCP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			dataLoader, formatter := opts.setup()

			report := insights.NewToolAnalyzer(dataLoader).Analyze(opts.days, opts.date)
			out, err := formatter.FormatToolReport(report)
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
