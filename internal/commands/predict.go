package commands

import (
	"fmt"

	"github.com/sdpower/ccinsights-go/internal/insights"
	"github.com/spf13/cobra"
)

func NewPredictCommand() *cobra.Command {
	var (
		opts         sharedOptions
		forecastDays int
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast upcoming usage from recent trends",
		Long:  `Build a daily usage time series, detect the trend and project sessions, tokens and cost forward.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataLoader, formatter := opts.setup()

			// Trends need a longer window than the other analyses.
			days := opts.days
			if days < 30 {
				days = 30
			}

			report := insights.NewUsagePredictor(dataLoader).Analyze(days, forecastDays)
			out, err := formatter.FormatForecastReport(report)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			fmt.Print(out)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&forecastDays, "forecast-days", 7, "Days to project forward")
	return cmd
}
