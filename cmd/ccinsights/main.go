package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sdpower/ccinsights-go/internal/commands"
	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	rootCmd := &cobra.Command{
		Use:   "ccinsights",
		Short: "Claude Code usage insights",
		Long:  `A CLI tool that analyzes Claude Code session logs for anomalies, cache efficiency, tool usage, skills, token ROI and usage forecasts.`,
	}

	rootCmd.AddCommand(
		commands.NewAnomaliesCommand(),
		commands.NewToolsCommand(),
		commands.NewCacheCommand(),
		commands.NewSkillsCommand(),
		commands.NewPredictCommand(),
		commands.NewROICommand(),
		commands.NewFullCommand(),
		commands.NewDashboardCommand(),
		commands.NewConfigCommand(),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
