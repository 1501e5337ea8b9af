package output

import (
	"encoding/json"

	"github.com/sdpower/ccinsights-go/internal/types"
)

type Formatter struct {
	options FormatterOptions
}

type FormatterOptions struct {
	Format   string // "table", "json"
	NoColor  bool
	MaxWidth int
}

func NewFormatter(opts FormatterOptions) *Formatter {
	if opts.MaxWidth == 0 {
		opts.MaxWidth = 120
	}
	return &Formatter{options: opts}
}

func (f *Formatter) FormatJSON(data interface{}) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (f *Formatter) FormatAnomalyReport(report *types.AnomalyReport) (string, error) {
	if f.options.Format == "json" {
		return f.FormatJSON(report)
	}
	return f.anomalyTable(report), nil
}

func (f *Formatter) FormatToolReport(report *types.ToolReport) (string, error) {
	if f.options.Format == "json" {
		return f.FormatJSON(report)
	}
	return f.toolTable(report), nil
}

func (f *Formatter) FormatCacheReport(report *types.CacheReport) (string, error) {
	if f.options.Format == "json" {
		return f.FormatJSON(report)
	}
	return f.cacheTable(report), nil
}

func (f *Formatter) FormatSkillReport(report *types.SkillReport) (string, error) {
	if f.options.Format == "json" {
		return f.FormatJSON(report)
	}
	return f.skillTable(report), nil
}

func (f *Formatter) FormatForecastReport(report *types.ForecastReport) (string, error) {
	if f.options.Format == "json" {
		return f.FormatJSON(report)
	}
	return f.forecastTable(report), nil
}

func (f *Formatter) FormatROIReport(report *types.ROIReport) (string, error) {
	if f.options.Format == "json" {
		return f.FormatJSON(report)
	}
	return f.roiTable(report), nil
}

func (f *Formatter) FormatInsightsReport(report *types.InsightsReport) (string, error) {
	if f.options.Format == "json" {
		return f.FormatJSON(report)
	}
	return f.insightsTables(report), nil
}
