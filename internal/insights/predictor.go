package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/types"
)

// minTrendDays is the history required before trends and forecasts are
// attempted.
const minTrendDays = 7

// forecastWeights bias the weighted average toward recent days. They are
// zip-paired with the recent window from its oldest day, so a short window
// simply uses the leading weights.
var forecastWeights = []float64{1, 1, 2, 2, 3, 3, 4}

// UsagePredictor builds a daily time series, detects the usage trend and
// projects future sessions, tokens and cost.
type UsagePredictor struct {
	loader *loader.Loader
	now    func() time.Time
}

func NewUsagePredictor(l *loader.Loader) *UsagePredictor {
	return &UsagePredictor{loader: l, now: time.Now}
}

// Analyze aggregates daysBack days of history and forecasts forecastDays
// ahead.
func (p *UsagePredictor) Analyze(daysBack, forecastDays int) *types.ForecastReport {
	targetDates := p.loader.DateRange(daysBack, "")

	dailyStats := make(map[string]*types.DailyStats)
	for session := range p.loader.Sessions(targetDates, nil) {
		if len(session.Timestamps) == 0 {
			continue
		}
		day := dateOf(session.Timestamps[0])

		stats, ok := dailyStats[day]
		if !ok {
			stats = &types.DailyStats{Date: day}
			dailyStats[day] = stats
		}
		stats.Sessions++
		stats.OutputTokens += session.OutputTokens
		stats.InputTokens += session.InputTokens
		stats.CacheRead += session.CacheRead
		stats.Cost += session.Cost
	}

	days := make([]string, 0, len(dailyStats))
	for day := range dailyStats {
		days = append(days, day)
	}
	sort.Strings(days)

	history := make([]types.DailyStats, 0, len(days))
	for _, day := range days {
		history = append(history, *dailyStats[day])
	}

	trends := calculateTrends(history)
	forecast := generateForecast(history, trends, forecastDays)

	period := types.ForecastPeriod{
		ForecastEnd: p.now().AddDate(0, 0, forecastDays).Format("2006-01-02"),
	}
	if len(targetDates) > 0 {
		period.HistoricalStart = targetDates[len(targetDates)-1]
		period.HistoricalEnd = targetDates[0]
	}

	dailyHistory := history
	if len(dailyHistory) > 14 {
		dailyHistory = dailyHistory[len(dailyHistory)-14:]
	}

	return &types.ForecastReport{
		Period:          period,
		Historical:      summarizeHistory(history),
		Trends:          trends,
		Forecast:        forecast,
		DailyHistory:    dailyHistory,
		Recommendations: forecastRecommendations(trends, forecast),
	}
}

func summarizeHistory(history []types.DailyStats) types.HistoricalSummary {
	summary := types.HistoricalSummary{DaysAnalyzed: len(history)}
	for _, d := range history {
		summary.TotalSessions += d.Sessions
		summary.TotalOutputTokens += d.OutputTokens
		summary.TotalCost += d.Cost
	}
	if len(history) > 0 {
		n := float64(len(history))
		summary.DailyAverage = types.DailyAverage{
			Sessions:     float64(summary.TotalSessions) / n,
			OutputTokens: float64(summary.TotalOutputTokens) / n,
			Cost:         summary.TotalCost / n,
		}
	}
	return summary
}

// calculateTrends compares the first and second halves of the history.
func calculateTrends(history []types.DailyStats) types.Trends {
	if len(history) < minTrendDays {
		return types.Trends{Direction: types.TrendInsufficientData}
	}

	mid := len(history) / 2
	firstSessions, firstTokens, firstCost := halfMeans(history[:mid])
	secondSessions, secondTokens, secondCost := halfMeans(history[mid:])

	trends := types.Trends{
		SessionsChangePct: pctChange(firstSessions, secondSessions),
		TokensChangePct:   pctChange(firstTokens, secondTokens),
		CostChangePct:     pctChange(firstCost, secondCost),
	}

	switch {
	case trends.TokensChangePct > 10:
		trends.Direction = types.TrendIncreasing
	case trends.TokensChangePct < -10:
		trends.Direction = types.TrendDecreasing
	default:
		trends.Direction = types.TrendStable
	}
	return trends
}

func halfMeans(half []types.DailyStats) (sessions, tokens, cost float64) {
	for _, d := range half {
		sessions += float64(d.Sessions)
		tokens += float64(d.OutputTokens)
		cost += d.Cost
	}
	n := float64(len(half))
	return sessions / n, tokens / n, cost / n
}

func pctChange(first, second float64) float64 {
	if first <= 0 {
		return 0
	}
	return (second - first) / first * 100
}

// generateForecast projects the weighted recent average forward, scaled by
// a dampened trend factor. With under a week of history everything is
// zeroed and confidence is forced low.
func generateForecast(history []types.DailyStats, trends types.Trends, forecastDays int) types.Forecast {
	if len(history) < minTrendDays {
		return types.Forecast{Days: forecastDays, Confidence: types.ConfidenceLow}
	}

	recent := history
	if len(recent) > 7 {
		recent = recent[len(recent)-7:]
	}

	totalWeight := 0.0
	avgSessions := 0.0
	avgTokens := 0.0
	avgCost := 0.0
	for i, d := range recent {
		w := forecastWeights[i]
		totalWeight += w
		avgSessions += float64(d.Sessions) * w
		avgTokens += float64(d.OutputTokens) * w
		avgCost += d.Cost * w
	}
	avgSessions /= totalWeight
	avgTokens /= totalWeight
	avgCost /= totalWeight

	trendFactor := 1.0
	if trends.Direction == types.TrendIncreasing || trends.Direction == types.TrendDecreasing {
		trendFactor = 1 + trends.TokensChangePct/100*0.5
	}

	// Confidence from the coefficient of variation of recent output tokens.
	tokenValues := make([]float64, len(recent))
	for i, d := range recent {
		tokenValues[i] = float64(d.OutputTokens)
	}
	cv := 1.0
	if avgTokens > 0 {
		cv = math.Sqrt(variance(tokenValues)) / avgTokens
	}
	confidence := types.ConfidenceLow
	switch {
	case cv < 0.3:
		confidence = types.ConfidenceHigh
	case cv < 0.6:
		confidence = types.ConfidenceMedium
	}

	return types.Forecast{
		Days:                  forecastDays,
		ProjectedSessions:     int(avgSessions * float64(forecastDays) * trendFactor),
		ProjectedOutputTokens: int(avgTokens * float64(forecastDays) * trendFactor),
		ProjectedCost:         avgCost * float64(forecastDays) * trendFactor,
		Confidence:            confidence,
	}
}

// variance is the population variance.
func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	sum := 0.0
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

func forecastRecommendations(trends types.Trends, forecast types.Forecast) []string {
	var recommendations []string

	switch {
	case trends.Direction == types.TrendIncreasing && trends.TokensChangePct > 20:
		recommendations = append(recommendations, fmt.Sprintf(
			"Usage trending up %.0f%%. Monitor for potential cost increases.",
			trends.TokensChangePct))
	case trends.Direction == types.TrendDecreasing:
		recommendations = append(recommendations, fmt.Sprintf(
			"Usage trending down %.0f%%. Good for cost control.",
			math.Abs(trends.TokensChangePct)))
	default:
		recommendations = append(recommendations, "Usage patterns are stable.")
	}

	if forecast.ProjectedCost > 100 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Projected weekly cost: %s. Consider setting usage limits.",
			types.FormatCost(forecast.ProjectedCost)))
	}

	if forecast.Confidence == types.ConfidenceLow {
		recommendations = append(recommendations,
			"Forecast confidence is low due to high usage variance. "+
				"More consistent patterns will improve predictions.")
	}

	return recommendations
}
