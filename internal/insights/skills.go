package insights

import (
	"fmt"
	"sort"

	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/types"
)

// SkillAnalyzer tracks skill invocation frequency and token efficiency.
type SkillAnalyzer struct {
	loader *loader.Loader
}

func NewSkillAnalyzer(l *loader.Loader) *SkillAnalyzer {
	return &SkillAnalyzer{loader: l}
}

// Analyze attributes session output across skill invocations. The per-call
// share divides by the session's skill calls only, unlike the tool analyzer
// which divides by all tool calls.
func (a *SkillAnalyzer) Analyze(daysBack int, targetDate string) *types.SkillReport {
	targetDates := a.loader.DateRange(daysBack, targetDate)

	skills := make(map[string]*types.SkillStats)
	totalInvocations := 0
	totalTokens := 0
	totalCost := 0.0
	sessionsWithSkills := 0

	for session := range a.loader.Sessions(targetDates, nil) {
		if len(session.SkillCalls) == 0 {
			continue
		}
		sessionsWithSkills++

		totalSkillCalls := sumCounts(session.SkillCalls)
		tokensPerCall := 0.0
		costPerCall := 0.0
		if totalSkillCalls > 0 {
			tokensPerCall = float64(session.OutputTokens) / float64(totalSkillCalls)
			costPerCall = session.Cost / float64(totalSkillCalls)
		}

		for _, skillName := range sortedKeys(session.SkillCalls) {
			count := session.SkillCalls[skillName]

			stats, ok := skills[skillName]
			if !ok {
				stats = types.NewSkillStats(skillName)
				skills[skillName] = stats
			}
			stats.Invocations += count
			stats.Sessions[session.SessionID] = struct{}{}
			stats.Projects[session.Project] = struct{}{}
			stats.TotalOutputTokens += int(tokensPerCall * float64(count))
			stats.TotalCost += costPerCall * float64(count)

			totalInvocations += count
			totalTokens += int(tokensPerCall * float64(count))
			totalCost += costPerCall * float64(count)
		}
	}

	return &types.SkillReport{
		Period: periodFor(targetDates),
		Summary: types.SkillSummary{
			TotalSkills:        len(skills),
			TotalInvocations:   totalInvocations,
			SessionsWithSkills: sessionsWithSkills,
			TotalTokens:        totalTokens,
			TotalCost:          totalCost,
		},
		Skills:          skillRanking(skills),
		ByEfficiency:    efficiencyRanking(skills),
		Recommendations: skillRecommendations(skills),
	}
}

// skillRanking orders skills by invocation count descending.
func skillRanking(skills map[string]*types.SkillStats) []types.SkillStatsDoc {
	ranked := skillSlice(skills)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Invocations != ranked[j].Invocations {
			return ranked[i].Invocations > ranked[j].Invocations
		}
		return ranked[i].Name < ranked[j].Name
	})
	return skillDocs(ranked)
}

// efficiencyRanking orders meaningfully-used skills by average tokens per
// invocation, cheapest first.
func efficiencyRanking(skills map[string]*types.SkillStats) []types.SkillStatsDoc {
	var significant []*types.SkillStats
	for _, s := range skillSlice(skills) {
		if s.Invocations >= 3 {
			significant = append(significant, s)
		}
	}
	sort.Slice(significant, func(i, j int) bool {
		ai, aj := significant[i].AvgTokensPerInvocation(), significant[j].AvgTokensPerInvocation()
		if ai != aj {
			return ai < aj
		}
		return significant[i].Name < significant[j].Name
	})
	return skillDocs(significant)
}

func skillSlice(skills map[string]*types.SkillStats) []*types.SkillStats {
	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)
	slice := make([]*types.SkillStats, 0, len(names))
	for _, name := range names {
		slice = append(slice, skills[name])
	}
	return slice
}

func skillDocs(skills []*types.SkillStats) []types.SkillStatsDoc {
	docs := make([]types.SkillStatsDoc, 0, len(skills))
	for _, s := range skills {
		docs = append(docs, s.Doc())
	}
	return docs
}

func skillRecommendations(skills map[string]*types.SkillStats) []string {
	var recommendations []string
	ordered := skillSlice(skills)

	rarelyUsed := 0
	for _, s := range ordered {
		if s.Invocations == 1 {
			rarelyUsed++
		}
	}
	if rarelyUsed >= 3 {
		recommendations = append(recommendations, fmt.Sprintf(
			"%d skills used only once. Consider consolidating or removing unused skills.",
			rarelyUsed))
	}

	for _, s := range ordered {
		if s.Invocations >= 3 && s.AvgTokensPerInvocation() > 50_000 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Skill '%s' is expensive (%s avg tokens/invocation). Consider optimization.",
				s.Name, types.FormatTokens(int(s.AvgTokensPerInvocation()))))
		}
	}

	var efficient []*types.SkillStats
	for _, s := range ordered {
		if s.Invocations >= 5 && s.AvgTokensPerInvocation() < 10_000 {
			efficient = append(efficient, s)
		}
	}
	if len(efficient) > 0 {
		sort.Slice(efficient, func(i, j int) bool {
			if efficient[i].Invocations != efficient[j].Invocations {
				return efficient[i].Invocations > efficient[j].Invocations
			}
			return efficient[i].Name < efficient[j].Name
		})
		top := efficient[0]
		recommendations = append(recommendations, fmt.Sprintf(
			"'%s' is your most efficient frequently-used skill (%d invocations, %s avg).",
			top.Name, top.Invocations, types.FormatTokens(int(top.AvgTokensPerInvocation()))))
	}

	if len(recommendations) == 0 {
		return []string{"No skill optimization issues detected."}
	}
	return recommendations
}
