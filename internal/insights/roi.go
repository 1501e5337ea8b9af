package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/types"
)

// domainRule pairs a domain with the substrings that classify a tool into
// it. Rules are tried in declared order and the first match wins, so the
// ordering is a deliberate tie-break. Do not reorder.
type domainRule struct {
	name     string
	patterns []string
}

var domainRules = []domainRule{
	{"coding", []string{"edit", "write", "bash", "grep", "glob", "read"}},
	{"research", []string{"websearch", "webfetch"}},
	{"communication", []string{"mcp__outlook", "email"}},
	{"crm", []string{"mcp__pipedrive"}},
	{"meetings", []string{"mcp__ask-maia", "maia"}},
	{"automation", []string{"n8n", "workflow"}},
	{"data", []string{"sql", "database", "supabase"}},
	{"agents", []string{"task", "agent"}},
}

var (
	highValueDomains = []string{"coding", "automation", "data"}
	supportDomains   = []string{"research", "communication", "meetings"}
)

// ROIAnalyzer classifies tool usage into activity domains and scores how
// tokens split between productive and support work.
type ROIAnalyzer struct {
	loader *loader.Loader

	domains  map[string]*types.DomainStats
	projects map[string]*types.ProjectROI
}

func NewROIAnalyzer(l *loader.Loader) *ROIAnalyzer {
	return &ROIAnalyzer{loader: l}
}

// Analyze computes the ROI document for the requested window.
func (a *ROIAnalyzer) Analyze(daysBack int, targetDate string) *types.ROIReport {
	targetDates := a.loader.DateRange(daysBack, targetDate)
	a.domains = make(map[string]*types.DomainStats)
	a.projects = make(map[string]*types.ProjectROI)

	totalTokens := 0
	totalCost := 0.0
	sessionCount := 0

	for session := range a.loader.Sessions(targetDates, nil) {
		sessionCount++
		totalTokens += session.OutputTokens
		totalCost += session.Cost
		a.classifySession(session)
	}

	avgCost := 0.0
	if sessionCount > 0 {
		avgCost = totalCost / float64(sessionCount)
	}

	return &types.ROIReport{
		Period: periodFor(targetDates),
		Summary: types.ROISummary{
			TotalSessions:     sessionCount,
			TotalOutputTokens: totalTokens,
			TotalCost:         totalCost,
			AvgCostPerSession: avgCost,
		},
		ByDomain:        a.domainBreakdown(),
		ByProject:       a.projectBreakdown(15),
		ValueAnalysis:   a.analyzeValue(),
		Recommendations: a.recommendations(),
	}
}

// classifySession attributes the session's output proportionally across the
// domains its tools classify into.
func (a *ROIAnalyzer) classifySession(session *types.SessionData) {
	proj, ok := a.projects[session.Project]
	if !ok {
		proj = types.NewProjectROI(session.Project)
		a.projects[session.Project] = proj
	}
	proj.Sessions++
	proj.OutputTokens += session.OutputTokens
	proj.Cost += session.Cost

	totalCalls := sumCounts(session.ToolCalls)

	for _, toolName := range sortedKeys(session.ToolCalls) {
		count := session.ToolCalls[toolName]
		domain := classifyDomain(toolName)

		stats, ok := a.domains[domain]
		if !ok {
			stats = types.NewDomainStats(domain)
			a.domains[domain] = stats
		}
		stats.Sessions[session.SessionID] = struct{}{}
		stats.ToolCalls += count

		tokenShare := 0.0
		costShare := 0.0
		if totalCalls > 0 {
			share := float64(count) / float64(totalCalls)
			tokenShare = float64(session.OutputTokens) * share
			costShare = session.Cost * share
		}
		stats.OutputTokens += int(tokenShare)
		stats.Cost += costShare

		proj.Domains[domain] += count
	}
}

// classifyDomain returns the first domain whose pattern list matches the
// lowercased tool name, or "other".
func classifyDomain(toolName string) string {
	lower := strings.ToLower(toolName)
	for _, rule := range domainRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lower, pattern) {
				return rule.name
			}
		}
	}
	return "other"
}

func (a *ROIAnalyzer) rankedDomains() []*types.DomainStats {
	domains := make([]*types.DomainStats, 0, len(a.domains))
	for _, d := range a.domains {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool {
		if domains[i].OutputTokens != domains[j].OutputTokens {
			return domains[i].OutputTokens > domains[j].OutputTokens
		}
		return domains[i].Name < domains[j].Name
	})
	return domains
}

func (a *ROIAnalyzer) domainBreakdown() []types.DomainStatsDoc {
	ranked := a.rankedDomains()
	docs := make([]types.DomainStatsDoc, 0, len(ranked))
	for _, d := range ranked {
		docs = append(docs, d.Doc())
	}
	return docs
}

func (a *ROIAnalyzer) rankedProjects() []*types.ProjectROI {
	projects := make([]*types.ProjectROI, 0, len(a.projects))
	for _, p := range a.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Cost != projects[j].Cost {
			return projects[i].Cost > projects[j].Cost
		}
		return projects[i].Name < projects[j].Name
	})
	return projects
}

func (a *ROIAnalyzer) projectBreakdown(n int) []types.ProjectROIDoc {
	ranked := a.rankedProjects()
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	docs := make([]types.ProjectROIDoc, 0, len(ranked))
	for _, p := range ranked {
		docs = append(docs, p.Doc())
	}
	return docs
}

// analyzeValue computes the high-value/support token split and the balance
// score.
func (a *ROIAnalyzer) analyzeValue() types.ValueAnalysis {
	totalTokens := 0
	for _, d := range a.domains {
		totalTokens += d.OutputTokens
	}

	percentages := make(map[string]float64, len(a.domains))
	for name, d := range a.domains {
		pct := 0.0
		if totalTokens > 0 {
			pct = float64(d.OutputTokens) / float64(totalTokens) * 100
		}
		percentages[name] = pct
	}

	highValue := sumPercentages(percentages, highValueDomains)
	support := sumPercentages(percentages, supportDomains)

	return types.ValueAnalysis{
		DomainPercentages:   percentages,
		HighValuePercentage: highValue,
		SupportPercentage:   support,
		BalanceScore:        balanceScore(highValue, support),
	}
}

// balanceScore rates the domain distribution 0-100. The ideal mix is
// roughly half high-value work with moderate support activity.
func balanceScore(highValue, support float64) float64 {
	score := 100.0
	if highValue < 30 {
		score -= 20
	}
	if highValue > 80 {
		score -= 10
	}
	if support > 50 {
		score -= 15
	}
	return max(0, min(100, score))
}

func sumPercentages(percentages map[string]float64, domains []string) float64 {
	total := 0.0
	for _, d := range domains {
		total += percentages[d]
	}
	return total
}

func (a *ROIAnalyzer) recommendations() []string {
	var recommendations []string

	value := a.analyzeValue()
	if value.HighValuePercentage > 70 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Great focus! %.0f%% of tokens spent on high-value activities (coding, automation, data).",
			value.HighValuePercentage))
	} else if value.HighValuePercentage < 40 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Consider shifting focus: only %.0f%% on high-value activities. "+
				"More coding/automation may increase ROI.",
			value.HighValuePercentage))
	}

	ranked := a.rankedProjects()
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	for _, proj := range ranked {
		if proj.Cost > 10 {
			name := proj.Name
			if runes := []rune(name); len(runes) > 30 {
				name = string(runes[:30])
			}
			recommendations = append(recommendations, fmt.Sprintf(
				"Project '%s' cost %s. Review for optimization opportunities.",
				name, types.FormatCost(proj.Cost)))
		}
	}

	if agents, ok := a.domains["agents"]; ok && agents.OutputTokens > 500_000 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Agent spawning used %s. Consider consolidating agent tasks.",
			types.FormatTokens(agents.OutputTokens)))
	}

	if len(recommendations) == 0 {
		return []string{"Token ROI looks balanced."}
	}
	return recommendations
}
