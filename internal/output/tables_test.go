package output

import (
	"strings"
	"testing"

	"github.com/sdpower/ccinsights-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBar(t *testing.T) {
	assert.Equal(t, "##########", bar(100, 100, 10))
	assert.Equal(t, "#####", bar(50, 100, 10))
	assert.Equal(t, "#", bar(1, 1000, 10), "nonzero values render at least one hash")
	assert.Equal(t, "", bar(0, 100, 10))
	assert.Equal(t, "", bar(5, 0, 10))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "longer...", truncate("longer string", 9))
	assert.Equal(t, "héllo w...", truncate("héllo wörld", 10))
}

func TestComma(t *testing.T) {
	assert.Equal(t, "1,234,567", comma(1_234_567))
	assert.Equal(t, "0", comma(0))
}

func TestPeriodLine(t *testing.T) {
	line := periodLine(types.Period{Start: "2025-06-09", End: "2025-06-15", Days: 7})
	assert.Equal(t, "Period: 2025-06-09 to 2025-06-15 (7 days)\n\n", line)
}

func TestSeverityLabelNoColor(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "table", NoColor: true})
	assert.Equal(t, types.SeverityHigh, f.severityLabel(types.SeverityHigh))
	assert.Equal(t, types.SeverityLow, f.severityLabel(types.SeverityLow))
}

func TestHitRateBarNoColor(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "table", NoColor: true})
	b := f.hitRateBar(50)
	assert.Equal(t, barWidth, len([]rune(b)))
	assert.Contains(t, b, "█")
	assert.Contains(t, b, "░")
}

func TestFormatJSON(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "json"})
	out, err := f.FormatJSON(map[string]int{"sessions": 3})
	require.NoError(t, err)
	assert.Contains(t, out, `"sessions": 3`)
}

func TestFormatAnomalyReportTable(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "table", NoColor: true})
	report := &types.AnomalyReport{
		Period: types.Period{Start: "2025-06-09", End: "2025-06-15", Days: 7},
		Summary: types.AnomalySummary{
			TotalSessions:         10,
			SessionsWithAnomalies: 1,
			AnomalyRate:           10,
		},
		BySeverity: types.AnomaliesBySeverity{
			High: []types.Anomaly{{
				Type:        types.AnomalyToolLoop,
				Severity:    types.SeverityHigh,
				Project:     "proj-a",
				Description: "Grep called 70 times",
				Tokens:      1500,
			}},
		},
		Recommendations: []string{"Review repetitive Grep usage."},
	}

	out, err := f.FormatAnomalyReport(report)
	require.NoError(t, err)
	assert.Contains(t, out, "Anomalies")
	assert.Contains(t, out, "Sessions analyzed: 10")
	assert.Contains(t, out, "proj-a")
	assert.Contains(t, out, "Grep called 70 times")
	assert.Contains(t, out, "• Review repetitive Grep usage.")
}

func TestFormatAnomalyReportJSON(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "json"})
	report := &types.AnomalyReport{
		Period: types.Period{Start: "2025-06-09", End: "2025-06-15", Days: 7},
	}
	out, err := f.FormatAnomalyReport(report)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"2025-06-09"`)
}

func TestTopRecommendations(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "table", NoColor: true})
	report := &types.InsightsReport{
		Tools: &types.ToolReport{
			Recommendations: []string{
				"High file operation count (250). Use Task agents for bulk work.",
				"High file operation count (250). Use Task agents for bulk work.",
				"Third recommendation that is past the per-source cut.",
			},
		},
		Cache: &types.CacheReport{
			Recommendations: []string{
				"Low cache hit rate (40.0%). Review prompt structure.",
				"Cache saved an estimated $1.20 this period.",
			},
		},
		Anomalies: &types.AnomalyReport{
			BySeverity: types.AnomaliesBySeverity{
				High: []types.Anomaly{{Type: types.AnomalyToolLoop}, {Type: types.AnomalyTokenSpike}},
			},
			Recommendations: []string{
				"Consider adding a circuit breaker for repetitive tool calls.",
				"Review long-running sessions.",
				"Repetitive SQL execution detected. Batch queries where possible.",
			},
		},
		Skills:      &types.SkillReport{},
		Predictions: &types.ForecastReport{Recommendations: []string{"Usage patterns are stable.", "Extra."}},
		ROI:         &types.ROIReport{},
	}

	out := f.topRecommendations(report)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// Header plus the aggregated lines. The duplicated tool recommendation
	// collapses to one and only the first two per source are considered, so
	// the SQL anomaly recommendation in third place never appears.
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "Top Recommendations")
	require.Equal(t, []string{
		"  [CRITICAL] 2 high-severity anomalies detected. Review immediately.",
		"  [HIGH] Consider adding a circuit breaker for repetitive tool calls.",
		"  [MEDIUM] Low cache hit rate (40.0%). Review prompt structure.",
		"  [MEDIUM] High file operation count (250). Use Task agents for bulk work.",
		"  [INFO] Usage patterns are stable.",
	}, lines[1:])
}

func TestFormatInsightsReportTable(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "table", NoColor: true})
	report := &types.InsightsReport{
		Tools:       &types.ToolReport{},
		Cache:       &types.CacheReport{},
		Anomalies:   &types.AnomalyReport{},
		Skills:      &types.SkillReport{},
		Predictions: &types.ForecastReport{},
		ROI:         &types.ROIReport{},
	}
	out, err := f.FormatInsightsReport(report)
	require.NoError(t, err)
	assert.Contains(t, out, "Executive Summary")
	assert.Contains(t, out, "Top Recommendations")
}

func TestFormatEmptyAnomalyReport(t *testing.T) {
	f := NewFormatter(FormatterOptions{Format: "table", NoColor: true})
	out, err := f.FormatAnomalyReport(&types.AnomalyReport{})
	require.NoError(t, err)
	assert.Contains(t, out, "No anomalies detected.")
}
