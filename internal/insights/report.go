package insights

import (
	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/types"
)

// defaultForecastDays is how far ahead the full report projects.
const defaultForecastDays = 7

// ReportBuilder runs every analyzer over the same loader and bundles the
// results.
type ReportBuilder struct {
	loader *loader.Loader
}

func NewReportBuilder(l *loader.Loader) *ReportBuilder {
	return &ReportBuilder{loader: l}
}

// Full produces the combined report. Predictions always look at least 30
// days back so short windows still yield a usable trend.
func (b *ReportBuilder) Full(daysBack int, targetDate string) *types.InsightsReport {
	predictionDays := daysBack
	if predictionDays < 30 {
		predictionDays = 30
	}

	return &types.InsightsReport{
		Tools:       NewToolAnalyzer(b.loader).Analyze(daysBack, targetDate),
		Cache:       NewCacheAnalyzer(b.loader).Analyze(daysBack, targetDate),
		Anomalies:   NewAnomalyDetector(b.loader).Analyze(daysBack, targetDate),
		Skills:      NewSkillAnalyzer(b.loader).Analyze(daysBack, targetDate),
		Predictions: NewUsagePredictor(b.loader).Analyze(predictionDays, defaultForecastDays),
		ROI:         NewROIAnalyzer(b.loader).Analyze(daysBack, targetDate),
	}
}
