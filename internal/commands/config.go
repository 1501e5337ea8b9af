package commands

import (
	"fmt"

	"github.com/sdpower/ccinsights-go/internal/config"
	"github.com/spf13/cobra"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage ccinsights configuration",
	}

	cmd.AddCommand(newConfigInitCommand(), newConfigPathCommand())
	return cmd
}

// newConfigInitCommand writes a config file with the current defaults so
// users have something to edit.
func newConfigInitCommand() *cobra.Command {
	var (
		days      int
		claudeDir string
		noColor   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if days > 0 {
				cfg.General.DefaultDays = days
			}
			cfg.General.ClaudeDir = claudeDir
			cfg.Appearance.NoColor = noColor

			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Printf("Saved to %s\n", config.ConfigPath())
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "n", 0, "Default days of history to analyze")
	cmd.Flags().StringVar(&claudeDir, "claude-dir", "", "Path to Claude projects directory")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output by default")
	return cmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(config.ConfigPath())
		},
	}
}
