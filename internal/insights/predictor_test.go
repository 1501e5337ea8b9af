package insights

import (
	"fmt"
	"testing"
	"time"

	"github.com/sdpower/ccinsights-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantHistory(days, tokens, sessions int, cost float64) []types.DailyStats {
	history := make([]types.DailyStats, 0, days)
	for i := 0; i < days; i++ {
		history = append(history, types.DailyStats{
			Date:         fmt.Sprintf("2025-06-%02d", i+1),
			Sessions:     sessions,
			OutputTokens: tokens,
			Cost:         cost,
		})
	}
	return history
}

func TestCalculateTrendsInsufficientData(t *testing.T) {
	trends := calculateTrends(constantHistory(3, 1000, 2, 5))
	assert.Equal(t, types.TrendInsufficientData, trends.Direction)
	assert.Zero(t, trends.TokensChangePct)
	assert.Zero(t, trends.SessionsChangePct)
	assert.Zero(t, trends.CostChangePct)
}

func TestCalculateTrendsStable(t *testing.T) {
	trends := calculateTrends(constantHistory(14, 1000, 2, 5))
	assert.Equal(t, types.TrendStable, trends.Direction)
	assert.Zero(t, trends.TokensChangePct)
}

func TestCalculateTrendsIncreasing(t *testing.T) {
	history := constantHistory(8, 1000, 2, 5)
	for i := 4; i < 8; i++ {
		history[i].OutputTokens = 2000
	}
	trends := calculateTrends(history)
	assert.Equal(t, types.TrendIncreasing, trends.Direction)
	assert.InDelta(t, 100.0, trends.TokensChangePct, 1e-9)
}

func TestCalculateTrendsDecreasing(t *testing.T) {
	history := constantHistory(8, 2000, 2, 5)
	for i := 4; i < 8; i++ {
		history[i].OutputTokens = 1000
	}
	trends := calculateTrends(history)
	assert.Equal(t, types.TrendDecreasing, trends.Direction)
	assert.InDelta(t, -50.0, trends.TokensChangePct, 1e-9)
}

func TestGenerateForecastConstant(t *testing.T) {
	history := constantHistory(14, 1000, 2, 5)
	trends := calculateTrends(history)

	forecast := generateForecast(history, trends, 7)
	assert.Equal(t, 7, forecast.Days)
	assert.Equal(t, 14, forecast.ProjectedSessions)
	assert.Equal(t, 7000, forecast.ProjectedOutputTokens)
	assert.InDelta(t, 35.0, forecast.ProjectedCost, 1e-9)
	assert.Equal(t, types.ConfidenceHigh, forecast.Confidence, "zero variance means high confidence")
}

func TestGenerateForecastTrendFactor(t *testing.T) {
	history := constantHistory(14, 1000, 2, 5)
	trends := types.Trends{Direction: types.TrendIncreasing, TokensChangePct: 100}

	// The trend is dampened by half, so +100% projects at 1.5x.
	forecast := generateForecast(history, trends, 7)
	assert.Equal(t, 10500, forecast.ProjectedOutputTokens)
}

func TestGenerateForecastInsufficientHistory(t *testing.T) {
	forecast := generateForecast(constantHistory(3, 1000, 2, 5), types.Trends{}, 5)
	assert.Equal(t, 5, forecast.Days)
	assert.Zero(t, forecast.ProjectedSessions)
	assert.Zero(t, forecast.ProjectedOutputTokens)
	assert.Zero(t, forecast.ProjectedCost)
	assert.Equal(t, types.ConfidenceLow, forecast.Confidence)
}

func TestVariance(t *testing.T) {
	assert.InDelta(t, 4.0, variance([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-9)
	assert.Zero(t, variance(nil))
	assert.Zero(t, variance([]float64{42}))
}

func TestSummarizeHistory(t *testing.T) {
	summary := summarizeHistory(constantHistory(4, 1000, 2, 5))
	assert.Equal(t, 4, summary.DaysAnalyzed)
	assert.Equal(t, 8, summary.TotalSessions)
	assert.Equal(t, 4000, summary.TotalOutputTokens)
	assert.InDelta(t, 20.0, summary.TotalCost, 1e-9)
	assert.InDelta(t, 1000.0, summary.DailyAverage.OutputTokens, 1e-9)
	assert.InDelta(t, 2.0, summary.DailyAverage.Sessions, 1e-9)
}

func TestForecastRecommendations(t *testing.T) {
	recs := forecastRecommendations(
		types.Trends{Direction: types.TrendIncreasing, TokensChangePct: 30},
		types.Forecast{Confidence: types.ConfidenceHigh})
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "trending up 30%")

	recs = forecastRecommendations(
		types.Trends{Direction: types.TrendDecreasing, TokensChangePct: -25},
		types.Forecast{Confidence: types.ConfidenceHigh})
	require.Len(t, recs, 1)
	assert.Contains(t, recs[0], "trending down 25%")

	recs = forecastRecommendations(
		types.Trends{Direction: types.TrendStable},
		types.Forecast{ProjectedCost: 150, Confidence: types.ConfidenceLow})
	require.Len(t, recs, 3)
	assert.Equal(t, "Usage patterns are stable.", recs[0])
	assert.Contains(t, recs[1], "$150.00")
	assert.Contains(t, recs[2], "confidence is low")
}

func TestPredictorAnalyzeShortHistory(t *testing.T) {
	root := t.TempDir()
	today := time.Now().Format("2006-01-02")

	writeSessionFile(t, root, "proj-a", "s1.jsonl",
		`{"timestamp":"`+today+`T10:00:00Z","type":"assistant","message":{"usage":{"output_tokens":500},"content":[{"type":"tool_use","name":"Read","input":{}}]}}`,
	)

	predictor := NewUsagePredictor(newTestLoader(t, root))
	report := predictor.Analyze(30, 7)

	assert.Equal(t, 1, report.Historical.DaysAnalyzed)
	assert.Equal(t, types.TrendInsufficientData, report.Trends.Direction)
	assert.Zero(t, report.Forecast.ProjectedOutputTokens)
	assert.Equal(t, types.ConfidenceLow, report.Forecast.Confidence)
	assert.Equal(t, today, report.Period.HistoricalEnd)
	require.Len(t, report.DailyHistory, 1)
	assert.Equal(t, today, report.DailyHistory[0].Date)
	assert.Contains(t, report.Recommendations[len(report.Recommendations)-1], "confidence is low")
}
