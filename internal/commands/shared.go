package commands

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/sdpower/ccinsights-go/internal/config"
	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/output"
	"github.com/sdpower/ccinsights-go/internal/pricing"
	"github.com/spf13/cobra"
)

// sharedOptions carries the flags every analysis command accepts.
type sharedOptions struct {
	days     int
	date     string
	jsonOut  bool
	dataPath string
	noColor  bool
	debug    bool
}

func (o *sharedOptions) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.days, "days", "n", 0, "Days of history to analyze (default from config, 7)")
	cmd.Flags().StringVarP(&o.date, "date", "d", "", "Analyze a single date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&o.jsonOut, "json", false, "Output JSON instead of tables")
	cmd.Flags().StringVar(&o.dataPath, "data-path", "", "Path to Claude projects directory")
	cmd.Flags().BoolVar(&o.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "Show debug information")
}

// setup resolves config, logging, the data loader and the formatter from the
// parsed flags.
func (o *sharedOptions) setup() (*loader.Loader, *output.Formatter) {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("cannot load config, using defaults", "error", err)
	}

	level := slog.LevelWarn
	if o.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if o.days <= 0 {
		o.days = cfg.General.DefaultDays
	}
	if o.days <= 0 {
		o.days = 7
	}

	dataPath := o.dataPath
	if dataPath == "" {
		dataPath = cfg.General.ClaudeDir
	}
	if dataPath == "" {
		dataPath = getDefaultDataPath()
	}

	noColor := o.noColor || cfg.Appearance.NoColor
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		noColor = true
	}

	format := "table"
	if o.jsonOut {
		format = "json"
	}

	dataLoader := loader.New(dataPath, pricing.NewCalculator())
	formatter := output.NewFormatter(output.FormatterOptions{
		Format:  format,
		NoColor: noColor,
	})
	return dataLoader, formatter
}

func getDefaultDataPath() string {
	// Check environment variable first
	if claudeConfigDir := os.Getenv("CLAUDE_CONFIG_DIR"); claudeConfigDir != "" {
		return claudeConfigDir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	// Check ~/.claude/projects first
	claudePath := filepath.Join(homeDir, ".claude", "projects")
	if _, err := os.Stat(claudePath); err == nil {
		return claudePath
	}

	// Check ~/.config/claude/projects
	configPath := filepath.Join(homeDir, ".config", "claude", "projects")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// Fall back to ~/.claude/projects as default
	return claudePath
}
