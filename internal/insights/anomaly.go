package insights

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/types"
)

// Loop and spike thresholds.
const (
	loopThresholdTool    = 20      // tool called > N times in session
	loopThresholdFile    = 10      // same file accessed > N times
	loopThresholdSQL     = 10      // SQL-ish MCP calls > N per session
	spikeThresholdTokens = 500_000 // session > N output tokens
	spikeThresholdCost   = 5.0     // session cost > $N
	agentSpawnThreshold  = 10      // Task invocations > N per session
)

// agentSpawnTool is the tool that forks a sub-agent.
const agentSpawnTool = "Task"

// AnomalyDetector evaluates per-session loop and spike rules.
type AnomalyDetector struct {
	loader *loader.Loader
}

func NewAnomalyDetector(l *loader.Loader) *AnomalyDetector {
	return &AnomalyDetector{loader: l}
}

// Analyze scans the requested window and returns ranked anomalies, summary
// counts, a by-type grouping and recommendations.
func (d *AnomalyDetector) Analyze(daysBack int, targetDate string) *types.AnomalyReport {
	targetDates := d.loader.DateRange(daysBack, targetDate)

	var anomalies []types.Anomaly
	totalSessions := 0
	affectedSessions := 0
	totalLoopTokens := 0
	projectsAffected := make(map[string]struct{})

	for session := range d.loader.Sessions(targetDates, nil) {
		totalSessions++
		sessionAnomalies := detectSessionAnomalies(session)
		if len(sessionAnomalies) > 0 {
			affectedSessions++
			projectsAffected[session.Project] = struct{}{}
			totalLoopTokens += session.OutputTokens
			anomalies = append(anomalies, sessionAnomalies...)
		}
	}

	// Rank by severity, then token impact.
	sort.SliceStable(anomalies, func(i, j int) bool {
		si, sj := severityRank(anomalies[i].Severity), severityRank(anomalies[j].Severity)
		if si != sj {
			return si < sj
		}
		return anomalies[i].Tokens > anomalies[j].Tokens
	})

	anomalyRate := 0.0
	if totalSessions > 0 {
		anomalyRate = float64(affectedSessions) / float64(totalSessions) * 100
	}

	affected := make([]string, 0, len(projectsAffected))
	for p := range projectsAffected {
		affected = append(affected, p)
	}
	sort.Strings(affected)

	byType := groupByType(anomalies)

	return &types.AnomalyReport{
		Period: periodFor(targetDates),
		Summary: types.AnomalySummary{
			TotalSessions:         totalSessions,
			SessionsWithAnomalies: affectedSessions,
			AnomalyRate:           anomalyRate,
			TotalAnomalies:        len(anomalies),
			TotalLoopTokens:       totalLoopTokens,
			ProjectsAffected:      affected,
		},
		BySeverity: types.AnomaliesBySeverity{
			High:   filterSeverity(anomalies, types.SeverityHigh),
			Medium: filterSeverity(anomalies, types.SeverityMedium),
			Low:    filterSeverity(anomalies, types.SeverityLow),
		},
		ByType:          byType,
		Recommendations: anomalyRecommendations(anomalies, byType, len(affected)),
	}
}

// detectSessionAnomalies evaluates every rule against one session. Map
// iteration goes through sorted keys so repeated runs emit identical
// results.
func detectSessionAnomalies(session *types.SessionData) []types.Anomaly {
	var anomalies []types.Anomaly

	base := func(severity, anomalyType, description string, count int, details map[string]any) types.Anomaly {
		return types.Anomaly{
			Severity:    severity,
			Type:        anomalyType,
			SessionID:   session.SessionID,
			Project:     session.Project,
			Description: description,
			Count:       count,
			Tokens:      session.OutputTokens,
			Cost:        session.Cost,
			Details:     details,
		}
	}

	for _, tool := range sortedKeys(session.ToolCalls) {
		count := session.ToolCalls[tool]
		if count > loopThresholdTool {
			severity := types.SeverityMedium
			if count > loopThresholdTool*3 {
				severity = types.SeverityHigh
			}
			anomalies = append(anomalies, base(
				severity, types.AnomalyToolLoop,
				fmt.Sprintf("%s called %dx in single session", tool, count),
				count,
				map[string]any{"tool": tool, "threshold": loopThresholdTool},
			))
		}
	}

	for _, filePath := range sortedKeys(session.FileOps) {
		count := session.FileOps[filePath]
		if count > loopThresholdFile {
			severity := types.SeverityLow
			if count > loopThresholdFile*2 {
				severity = types.SeverityMedium
			}
			anomalies = append(anomalies, base(
				severity, types.AnomalyFileLoop,
				fmt.Sprintf("File '%s' accessed %dx", filepath.Base(filePath), count),
				count,
				map[string]any{"file": filePath, "threshold": loopThresholdFile},
			))
		}
	}

	sqlCalls := 0
	for name, count := range session.MCPCalls {
		if containsAnyFold(name, "sql", "query", "execute") {
			sqlCalls += count
		}
	}
	if sqlCalls > loopThresholdSQL {
		severity := types.SeverityMedium
		if sqlCalls > loopThresholdSQL*5 {
			severity = types.SeverityHigh
		}
		anomalies = append(anomalies, base(
			severity, types.AnomalySQLLoop,
			fmt.Sprintf("%d SQL queries in single session", sqlCalls),
			sqlCalls,
			map[string]any{"query_count": sqlCalls, "threshold": loopThresholdSQL},
		))
	}

	if session.OutputTokens > spikeThresholdTokens {
		severity := types.SeverityMedium
		if session.OutputTokens > spikeThresholdTokens*2 {
			severity = types.SeverityHigh
		}
		anomalies = append(anomalies, base(
			severity, types.AnomalyTokenSpike,
			fmt.Sprintf("High token usage: %s output", types.FormatTokens(session.OutputTokens)),
			1,
			map[string]any{"output_tokens": session.OutputTokens, "threshold": spikeThresholdTokens},
		))
	}

	if session.Cost > spikeThresholdCost && !hasHighTokenSpike(anomalies) {
		severity := types.SeverityMedium
		if session.Cost > spikeThresholdCost*2 {
			severity = types.SeverityHigh
		}
		anomalies = append(anomalies, base(
			severity, types.AnomalyCostSpike,
			fmt.Sprintf("High session cost: %s", types.FormatCost(session.Cost)),
			1,
			map[string]any{"cost": session.Cost, "threshold": spikeThresholdCost},
		))
	}

	if agentCalls := session.ToolCalls[agentSpawnTool]; agentCalls > agentSpawnThreshold {
		severity := types.SeverityLow
		if agentCalls > agentSpawnThreshold*2 {
			severity = types.SeverityMedium
		}
		anomalies = append(anomalies, base(
			severity, types.AnomalyAgentSpawnLoop,
			fmt.Sprintf("%d sub-agents spawned in single session", agentCalls),
			agentCalls,
			map[string]any{"agent_count": agentCalls},
		))
	}

	return anomalies
}

// hasHighTokenSpike reports whether this session already produced a HIGH
// token spike; cost spikes are suppressed in that case to avoid double
// reporting the same runaway session.
func hasHighTokenSpike(anomalies []types.Anomaly) bool {
	for _, a := range anomalies {
		if a.Type == types.AnomalyTokenSpike && a.Severity == types.SeverityHigh {
			return true
		}
	}
	return false
}

func severityRank(severity string) int {
	switch severity {
	case types.SeverityHigh:
		return 0
	case types.SeverityMedium:
		return 1
	case types.SeverityLow:
		return 2
	default:
		return 3
	}
}

func filterSeverity(anomalies []types.Anomaly, severity string) []types.Anomaly {
	filtered := []types.Anomaly{}
	for _, a := range anomalies {
		if a.Severity == severity {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

func groupByType(anomalies []types.Anomaly) map[string]int {
	byType := make(map[string]int)
	for _, a := range anomalies {
		byType[a.Type]++
	}
	return byType
}

func anomalyRecommendations(anomalies []types.Anomaly, byType map[string]int, projectsAffected int) []string {
	var recommendations []string

	if byType[types.AnomalyToolLoop] >= 3 {
		recommendations = append(recommendations,
			"Multiple tool loops detected. Add circuit breaker rules to project CLAUDE.md files.")
	}
	if byType[types.AnomalySQLLoop] >= 1 {
		recommendations = append(recommendations,
			"SQL query loops detected. Use JOINs instead of N+1 queries. "+
				"Add 'Maximum 10 SQL queries per request' rule.")
	}
	if byType[types.AnomalyFileLoop] >= 2 {
		recommendations = append(recommendations,
			"File access loops detected. Cache file contents or use Explore agent for searches.")
	}
	if byType[types.AnomalyAgentSpawnLoop] >= 1 {
		recommendations = append(recommendations,
			"Excessive agent spawning detected. Consolidate related tasks in primary session.")
	}
	if projectsAffected >= 3 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d projects affected. Consider global CLAUDE.md rules.", projectsAffected))
	}

	highCount := 0
	for _, a := range anomalies {
		if a.Severity == types.SeverityHigh {
			highCount++
		}
	}
	if highCount >= 2 {
		recommendations = append(recommendations,
			fmt.Sprintf("%d high-severity anomalies. Immediate attention recommended.", highCount))
	}

	if len(recommendations) == 0 {
		return []string{"No critical issues detected."}
	}
	return recommendations
}
