package insights

import (
	"fmt"
	"sort"

	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/types"
)

// Session-level cache flag thresholds.
const (
	significantContextTokens = 100_000 // only flag sessions with real context
	lowCacheHitRatePct       = 50.0
	wastedCacheMinCreate     = 50_000
)

// CacheAnalyzer scores cache hit rates and finds wasted cache writes.
type CacheAnalyzer struct {
	loader *loader.Loader
}

func NewCacheAnalyzer(l *loader.Loader) *CacheAnalyzer {
	return &CacheAnalyzer{loader: l}
}

// Analyze rolls cache counters up overall, per project and per day, and
// flags sessions with poor cache behavior.
func (a *CacheAnalyzer) Analyze(daysBack int, targetDate string) *types.CacheReport {
	targetDates := a.loader.DateRange(daysBack, targetDate)

	overall := &types.CacheStats{}
	byProject := make(map[string]*types.CacheStats)
	byDay := make(map[string]*types.CacheStats)
	var lowCache []types.LowCacheSession
	var wasted []types.WastedCacheSession

	for session := range a.loader.Sessions(targetDates, nil) {
		overall.Add(session)

		proj, ok := byProject[session.Project]
		if !ok {
			proj = &types.CacheStats{}
			byProject[session.Project] = proj
		}
		proj.Add(session)

		if len(session.Timestamps) > 0 {
			day := dateOf(session.Timestamps[0])
			daily, ok := byDay[day]
			if !ok {
				daily = &types.CacheStats{}
				byDay[day] = daily
			}
			daily.Add(session)
		}

		sessionContext := session.CacheRead + session.CacheCreate + session.InputTokens
		if sessionContext > significantContextTokens {
			hitRate := float64(session.CacheRead) / float64(sessionContext) * 100
			if hitRate < lowCacheHitRatePct {
				lowCache = append(lowCache, types.LowCacheSession{
					SessionID:    session.SessionID,
					Project:      session.Project,
					CacheHitRate: hitRate,
					TotalContext: sessionContext,
					Task:         taskSummary(session),
				})
			}

			if session.CacheCreate > session.CacheRead*2 && session.CacheCreate > wastedCacheMinCreate {
				wasted = append(wasted, types.WastedCacheSession{
					SessionID:   session.SessionID,
					Project:     session.Project,
					CacheCreate: session.CacheCreate,
					CacheRead:   session.CacheRead,
					Wasted:      session.CacheCreate - session.CacheRead,
				})
			}
		}
	}

	// Recommendation thresholds count every flagged session, not just the
	// ten kept in the report.
	lowCacheCount, wastedCount := len(lowCache), len(wasted)

	sort.SliceStable(lowCache, func(i, j int) bool {
		return lowCache[i].CacheHitRate < lowCache[j].CacheHitRate
	})
	if len(lowCache) > 10 {
		lowCache = lowCache[:10]
	}

	sort.SliceStable(wasted, func(i, j int) bool {
		return wasted[i].Wasted > wasted[j].Wasted
	})
	if len(wasted) > 10 {
		wasted = wasted[:10]
	}

	return &types.CacheReport{
		Period:              periodFor(targetDates),
		Overall:             overall.Doc(),
		ByProject:           topProjects(byProject, 10),
		ByDay:               dayDocs(byDay),
		LowCacheSessions:    lowCache,
		WastedCacheSessions: wasted,
		Recommendations:     cacheRecommendations(overall, lowCacheCount, wastedCount),
	}
}

// taskSummary trims the session's first message down to 80 characters.
func taskSummary(session *types.SessionData) *string {
	if session.FirstMsg == nil {
		return nil
	}
	task := *session.FirstMsg
	if runes := []rune(task); len(runes) > 80 {
		task = string(runes[:80])
	}
	return &task
}

// topProjects keeps the n projects with the largest input context.
func topProjects(byProject map[string]*types.CacheStats, n int) map[string]types.CacheStatsDoc {
	names := make([]string, 0, len(byProject))
	for name := range byProject {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ci, cj := byProject[names[i]].TotalInputContext(), byProject[names[j]].TotalInputContext()
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}

	docs := make(map[string]types.CacheStatsDoc, len(names))
	for _, name := range names {
		docs[name] = byProject[name].Doc()
	}
	return docs
}

func dayDocs(byDay map[string]*types.CacheStats) map[string]types.CacheStatsDoc {
	docs := make(map[string]types.CacheStatsDoc, len(byDay))
	for day, stats := range byDay {
		docs[day] = stats.Doc()
	}
	return docs
}

func cacheRecommendations(overall *types.CacheStats, lowCacheCount, wastedCount int) []string {
	var recommendations []string

	hitRate := overall.CacheHitRate()
	if hitRate < 60 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Low cache hit rate (%.1f%%). Consider longer conversations or --continue flag.", hitRate))
	} else if hitRate > 80 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Excellent cache hit rate (%.1f%%). Keep using long sessions!", hitRate))
	}

	if savings := overall.EstimatedCacheSavings(); savings > 1.0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Cache saved approximately %s this period.", types.FormatCost(savings)))
	}

	if wastedTokens := overall.WastedCacheTokens(); wastedTokens > 1_000_000 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Approximately %s cache tokens may have been wasted (created but not reused).",
			types.FormatTokens(wastedTokens)))
	}

	if lowCacheCount >= 3 {
		recommendations = append(recommendations, fmt.Sprintf(
			"%d sessions had low cache efficiency. Consider using 'claude --continue' to resume sessions.",
			lowCacheCount))
	}
	if wastedCount >= 2 {
		recommendations = append(recommendations, fmt.Sprintf(
			"%d sessions had significant cache waste. Review for unnecessary context refreshes.",
			wastedCount))
	}

	if len(recommendations) == 0 {
		return []string{"Cache usage looks healthy."}
	}
	return recommendations
}

// dateOf extracts the YYYY-MM-DD prefix of a raw timestamp string.
func dateOf(timestamp string) string {
	if len(timestamp) >= 10 {
		return timestamp[:10]
	}
	return timestamp
}
