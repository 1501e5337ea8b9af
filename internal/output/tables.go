package output

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sdpower/ccinsights-go/internal/types"
)

const barWidth = 30

// newTable creates a table with the tablewriter v1.0.9 API and the shared
// rendition settings.
func newTable(buf *bytes.Buffer) *tablewriter.Table {
	return tablewriter.NewTable(buf,
		tablewriter.WithRenderer(renderer.NewBlueprint(tw.Rendition{
			Settings: tw.Settings{Separators: tw.Separators{BetweenRows: tw.Off}},
		})),
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignRight},
			},
		}),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
}

// titleBox renders the rounded report banner.
func titleBox(title string) string {
	inner := "  " + title + "  "
	top := " ╭" + strings.Repeat("─", len([]rune(inner))) + "╮\n"
	pad := " │" + strings.Repeat(" ", len([]rune(inner))) + "│\n"
	mid := " │" + inner + "│\n"
	bot := " ╰" + strings.Repeat("─", len([]rune(inner))) + "╯\n\n"
	return "\n" + top + pad + mid + pad + bot
}

func (f *Formatter) sectionStyle() lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if !f.options.NoColor {
		style = style.Foreground(lipgloss.Color("205"))
	}
	return style
}

func (f *Formatter) severityLabel(severity string) string {
	if f.options.NoColor {
		return severity
	}
	switch severity {
	case types.SeverityHigh:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(severity)
	case types.SeverityMedium:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render(severity)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(severity)
	}
}

// bar renders a proportional hash bar.
func bar(value, max int, width int) string {
	if max <= 0 {
		return ""
	}
	n := value * width / max
	if n == 0 && value > 0 {
		n = 1
	}
	return strings.Repeat("#", n)
}

// hitRateBar renders a percentage bar colored on a red to green gradient.
func (f *Formatter) hitRateBar(rate float64) string {
	filled := int(rate / 100 * barWidth)
	if filled > barWidth {
		filled = barWidth
	}
	b := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	if f.options.NoColor {
		return b
	}
	red, _ := colorful.Hex("#e05561")
	green, _ := colorful.Hex("#8cc265")
	c := red.BlendLuv(green, rate/100)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(b)
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

func periodLine(p types.Period) string {
	return fmt.Sprintf("Period: %s to %s (%d days)\n\n", p.Start, p.End, p.Days)
}

func (f *Formatter) recommendations(recs []string) string {
	if len(recs) == 0 {
		return ""
	}
	var out strings.Builder
	out.WriteString(f.sectionStyle().Render("Recommendations"))
	out.WriteString("\n")
	for _, rec := range recs {
		out.WriteString("  • " + rec + "\n")
	}
	return out.String()
}

func (f *Formatter) anomalyTable(report *types.AnomalyReport) string {
	var out strings.Builder
	out.WriteString(titleBox("Claude Code Insights - Anomalies"))
	out.WriteString(periodLine(report.Period))

	out.WriteString(fmt.Sprintf("Sessions analyzed: %s   With anomalies: %s (%.1f%%)   Loop tokens: %s\n\n",
		comma(report.Summary.TotalSessions),
		comma(report.Summary.SessionsWithAnomalies),
		report.Summary.AnomalyRate,
		types.FormatTokens(report.Summary.TotalLoopTokens)))

	anomalies := append(append(append([]types.Anomaly{},
		report.BySeverity.High...),
		report.BySeverity.Medium...),
		report.BySeverity.Low...)

	if len(anomalies) == 0 {
		out.WriteString("No anomalies detected.\n\n")
	} else {
		var buf bytes.Buffer
		table := newTable(&buf)
		table.Header([]string{"Severity", "Type", "Project", "Description", "Tokens", "Cost"})
		for _, a := range anomalies {
			table.Append([]string{
				f.severityLabel(a.Severity),
				a.Type,
				truncate(a.Project, 30),
				truncate(a.Description, 50),
				types.FormatTokens(a.Tokens),
				types.FormatCost(a.Cost),
			})
		}
		table.Render()
		out.WriteString(buf.String())
		out.WriteString("\n")
	}

	out.WriteString(f.recommendations(report.Recommendations))
	return out.String()
}

func (f *Formatter) toolTable(report *types.ToolReport) string {
	var out strings.Builder
	out.WriteString(titleBox("Claude Code Insights - Tool Usage"))
	out.WriteString(periodLine(report.Period))

	out.WriteString(fmt.Sprintf("Sessions: %s   Output tokens: %s   Cost: %s\n\n",
		comma(report.Summary.TotalSessions),
		types.FormatTokens(report.Summary.TotalOutputTokens),
		types.FormatCost(report.Summary.TotalCost)))

	if len(report.Tools) > 0 {
		out.WriteString(f.sectionStyle().Render("Top Tools"))
		out.WriteString("\n")
		var buf bytes.Buffer
		table := newTable(&buf)
		table.Header([]string{"Tool", "Calls", "Sessions", "Est. Tokens", "Avg/Call"})
		for _, tool := range report.Tools {
			table.Append([]string{
				tool.Name,
				comma(tool.Calls),
				comma(tool.Sessions),
				types.FormatTokens(tool.OutputTokens),
				fmt.Sprintf("%.0f", tool.AvgTokensPerCall),
			})
		}
		table.Render()
		out.WriteString(buf.String())
		out.WriteString("\n")
	}

	if len(report.Operations) > 0 {
		out.WriteString(f.sectionStyle().Render("Operations"))
		out.WriteString("\n")
		max := 0
		var categories []string
		for category, count := range report.Operations {
			categories = append(categories, category)
			if count > max {
				max = count
			}
		}
		// Largest first, name as tie break.
		sort.Slice(categories, func(i, j int) bool {
			ci, cj := categories[i], categories[j]
			if report.Operations[ci] != report.Operations[cj] {
				return report.Operations[ci] > report.Operations[cj]
			}
			return ci < cj
		})
		for _, category := range categories {
			count := report.Operations[category]
			out.WriteString(fmt.Sprintf("  %-18s %8s  %s\n", category, comma(count), bar(count, max, barWidth)))
		}
		out.WriteString("\n")
	}

	if len(report.MCPs) > 0 {
		out.WriteString(f.sectionStyle().Render("MCP Servers"))
		out.WriteString("\n")
		var buf bytes.Buffer
		table := newTable(&buf)
		table.Header([]string{"Server", "Calls", "Est. Tokens", "Cost"})
		for _, mcp := range report.MCPs {
			table.Append([]string{
				mcp.Server,
				comma(mcp.TotalCalls),
				types.FormatTokens(mcp.TotalOutputTokens),
				types.FormatCost(mcp.TotalCost),
			})
		}
		table.Render()
		out.WriteString(buf.String())
		out.WriteString("\n")
	}

	out.WriteString(f.recommendations(report.Recommendations))
	return out.String()
}

func (f *Formatter) cacheTable(report *types.CacheReport) string {
	var out strings.Builder
	out.WriteString(titleBox("Claude Code Insights - Cache Efficiency"))
	out.WriteString(periodLine(report.Period))

	overall := report.Overall
	out.WriteString(fmt.Sprintf("Hit rate:    %5.1f%%  %s\n", overall.CacheHitRate, f.hitRateBar(overall.CacheHitRate)))
	out.WriteString(fmt.Sprintf("Efficiency:  %5.1f   %s\n\n", overall.CacheEfficiencyScore, f.hitRateBar(overall.CacheEfficiencyScore)))
	out.WriteString(fmt.Sprintf("Cache read:   %s\nCache create: %s\nEst. savings: %s\nWasted:       %s\n\n",
		types.FormatTokens(overall.CacheRead),
		types.FormatTokens(overall.CacheCreate),
		types.FormatCost(overall.EstimatedSavings),
		types.FormatTokens(overall.WastedCacheTokens)))

	if len(report.ByProject) > 0 {
		out.WriteString(f.sectionStyle().Render("Top Projects"))
		out.WriteString("\n")
		var buf bytes.Buffer
		table := newTable(&buf)
		table.Header([]string{"Project", "Hit Rate", "Context", "Savings"})
		for _, project := range sortedDocKeys(report.ByProject) {
			doc := report.ByProject[project]
			table.Append([]string{
				truncate(project, 36),
				fmt.Sprintf("%.1f%%", doc.CacheHitRate),
				types.FormatTokens(doc.TotalInputContext),
				types.FormatCost(doc.EstimatedSavings),
			})
		}
		table.Render()
		out.WriteString(buf.String())
		out.WriteString("\n")
	}

	if len(report.LowCacheSessions) > 0 {
		out.WriteString(f.sectionStyle().Render("Low Cache Hit Sessions"))
		out.WriteString("\n")
		var buf bytes.Buffer
		table := newTable(&buf)
		table.Header([]string{"Project", "Hit Rate", "Context", "Task"})
		for _, s := range report.LowCacheSessions {
			task := "-"
			if s.Task != nil {
				task = truncate(*s.Task, 40)
			}
			table.Append([]string{
				truncate(s.Project, 30),
				fmt.Sprintf("%.1f%%", s.CacheHitRate),
				types.FormatTokens(s.TotalContext),
				task,
			})
		}
		table.Render()
		out.WriteString(buf.String())
		out.WriteString("\n")
	}

	if len(report.WastedCacheSessions) > 0 {
		out.WriteString(f.sectionStyle().Render("Wasted Cache Sessions"))
		out.WriteString("\n")
		var buf bytes.Buffer
		table := newTable(&buf)
		table.Header([]string{"Project", "Created", "Read", "Wasted"})
		for _, s := range report.WastedCacheSessions {
			table.Append([]string{
				truncate(s.Project, 30),
				types.FormatTokens(s.CacheCreate),
				types.FormatTokens(s.CacheRead),
				types.FormatTokens(s.Wasted),
			})
		}
		table.Render()
		out.WriteString(buf.String())
		out.WriteString("\n")
	}

	out.WriteString(f.recommendations(report.Recommendations))
	return out.String()
}

func (f *Formatter) skillTable(report *types.SkillReport) string {
	var out strings.Builder
	out.WriteString(titleBox("Claude Code Insights - Skills"))
	out.WriteString(periodLine(report.Period))

	out.WriteString(fmt.Sprintf("Skills: %d   Invocations: %s   Sessions with skills: %s\n\n",
		report.Summary.TotalSkills,
		comma(report.Summary.TotalInvocations),
		comma(report.Summary.SessionsWithSkills)))

	if len(report.Skills) == 0 {
		out.WriteString("No skill invocations found.\n\n")
	} else {
		var buf bytes.Buffer
		table := newTable(&buf)
		table.Header([]string{"Skill", "Invocations", "Sessions", "Est. Tokens", "Avg/Invocation"})
		for _, skill := range report.Skills {
			table.Append([]string{
				skill.Name,
				comma(skill.Invocations),
				comma(skill.Sessions),
				types.FormatTokens(skill.TotalOutputTokens),
				fmt.Sprintf("%.0f", skill.AvgTokensPerInvocation),
			})
		}
		table.Render()
		out.WriteString(buf.String())
		out.WriteString("\n")
	}

	out.WriteString(f.recommendations(report.Recommendations))
	return out.String()
}

func (f *Formatter) forecastTable(report *types.ForecastReport) string {
	var out strings.Builder
	out.WriteString(titleBox("Claude Code Insights - Usage Forecast"))
	out.WriteString(fmt.Sprintf("History: %s to %s   Forecast until: %s\n\n",
		report.Period.HistoricalStart, report.Period.HistoricalEnd, report.Period.ForecastEnd))

	hist := report.Historical
	out.WriteString(fmt.Sprintf("Days analyzed: %d   Sessions: %s   Tokens: %s   Cost: %s\n",
		hist.DaysAnalyzed,
		comma(hist.TotalSessions),
		types.FormatTokens(hist.TotalOutputTokens),
		types.FormatCost(hist.TotalCost)))
	out.WriteString(fmt.Sprintf("Daily average: %.1f sessions, %s tokens, %s\n\n",
		hist.DailyAverage.Sessions,
		types.FormatTokens(int(hist.DailyAverage.OutputTokens)),
		types.FormatCost(hist.DailyAverage.Cost)))

	out.WriteString(f.sectionStyle().Render("Trend"))
	out.WriteString("\n")
	out.WriteString(fmt.Sprintf("  Direction: %s   Sessions: %+.1f%%   Tokens: %+.1f%%   Cost: %+.1f%%\n\n",
		report.Trends.Direction,
		report.Trends.SessionsChangePct,
		report.Trends.TokensChangePct,
		report.Trends.CostChangePct))

	out.WriteString(f.sectionStyle().Render(fmt.Sprintf("Next %d Days (%s confidence)", report.Forecast.Days, report.Forecast.Confidence)))
	out.WriteString("\n")
	out.WriteString(fmt.Sprintf("  Sessions: %s   Output tokens: %s   Cost: %s\n\n",
		comma(report.Forecast.ProjectedSessions),
		types.FormatTokens(report.Forecast.ProjectedOutputTokens),
		types.FormatCost(report.Forecast.ProjectedCost)))

	if len(report.DailyHistory) > 0 {
		out.WriteString(f.sectionStyle().Render("Daily Output Tokens"))
		out.WriteString("\n")
		max := 0
		for _, day := range report.DailyHistory {
			if day.OutputTokens > max {
				max = day.OutputTokens
			}
		}
		for _, day := range report.DailyHistory {
			out.WriteString(fmt.Sprintf("  %s %10s  %s\n",
				day.Date, types.FormatTokens(day.OutputTokens), bar(day.OutputTokens, max, barWidth)))
		}
		out.WriteString("\n")
	}

	out.WriteString(f.recommendations(report.Recommendations))
	return out.String()
}

func (f *Formatter) roiTable(report *types.ROIReport) string {
	var out strings.Builder
	out.WriteString(titleBox("Claude Code Insights - Token ROI"))
	out.WriteString(periodLine(report.Period))

	out.WriteString(fmt.Sprintf("Sessions: %s   Output tokens: %s   Cost: %s   Avg/session: %s\n\n",
		comma(report.Summary.TotalSessions),
		types.FormatTokens(report.Summary.TotalOutputTokens),
		types.FormatCost(report.Summary.TotalCost),
		types.FormatCost(report.Summary.AvgCostPerSession)))

	if len(report.ByDomain) > 0 {
		out.WriteString(f.sectionStyle().Render("By Domain"))
		out.WriteString("\n")
		max := 0
		for _, domain := range report.ByDomain {
			if domain.OutputTokens > max {
				max = domain.OutputTokens
			}
		}
		for _, domain := range report.ByDomain {
			out.WriteString(fmt.Sprintf("  %-14s %10s %8s  %s\n",
				domain.Name,
				types.FormatTokens(domain.OutputTokens),
				types.FormatCost(domain.Cost),
				bar(domain.OutputTokens, max, barWidth)))
		}
		out.WriteString("\n")
	}

	if len(report.ByProject) > 0 {
		out.WriteString(f.sectionStyle().Render("Top Projects"))
		out.WriteString("\n")
		var buf bytes.Buffer
		table := newTable(&buf)
		table.Header([]string{"Project", "Sessions", "Tokens", "Cost", "Primary Domains"})
		for _, project := range report.ByProject {
			domains := make([]string, 0, len(project.PrimaryDomains))
			for _, d := range project.PrimaryDomains {
				domains = append(domains, d.Name)
			}
			table.Append([]string{
				truncate(project.Name, 36),
				comma(project.Sessions),
				types.FormatTokens(project.OutputTokens),
				types.FormatCost(project.Cost),
				strings.Join(domains, ", "),
			})
		}
		table.Render()
		out.WriteString(buf.String())
		out.WriteString("\n")
	}

	out.WriteString(f.sectionStyle().Render("Value Analysis"))
	out.WriteString("\n")
	out.WriteString(fmt.Sprintf("  High value: %.1f%%   Support: %.1f%%   Balance score: %.0f/100\n\n",
		report.ValueAnalysis.HighValuePercentage,
		report.ValueAnalysis.SupportPercentage,
		report.ValueAnalysis.BalanceScore))

	out.WriteString(f.recommendations(report.Recommendations))
	return out.String()
}

func (f *Formatter) insightsTables(report *types.InsightsReport) string {
	var out strings.Builder
	out.WriteString(titleBox("Claude Code Insights - Full Report"))

	out.WriteString(f.sectionStyle().Render("Executive Summary"))
	out.WriteString("\n")
	out.WriteString(fmt.Sprintf("  Sessions analyzed:  %s\n", comma(report.Tools.Summary.TotalSessions)))
	out.WriteString(fmt.Sprintf("  Total output:       %s (%s)\n",
		types.FormatTokens(report.Tools.Summary.TotalOutputTokens),
		types.FormatCost(report.Tools.Summary.TotalCost)))
	out.WriteString(fmt.Sprintf("  Cache hit rate:     %.1f%%\n", report.Cache.Overall.CacheHitRate))
	out.WriteString(fmt.Sprintf("  Anomalies:          %d (%d HIGH)\n",
		report.Anomalies.Summary.TotalAnomalies, len(report.Anomalies.BySeverity.High)))
	out.WriteString(fmt.Sprintf("  Usage trend:        %s\n", report.Predictions.Trends.Direction))
	out.WriteString(fmt.Sprintf("  Value balance:      %.0f/100\n\n", report.ROI.ValueAnalysis.BalanceScore))

	out.WriteString(f.toolTable(report.Tools))
	out.WriteString("\n")
	out.WriteString(f.cacheTable(report.Cache))
	out.WriteString("\n")
	out.WriteString(f.anomalyTable(report.Anomalies))
	out.WriteString("\n")
	out.WriteString(f.skillTable(report.Skills))
	out.WriteString("\n")
	out.WriteString(f.forecastTable(report.Predictions))
	out.WriteString("\n")
	out.WriteString(f.roiTable(report.ROI))
	out.WriteString("\n")
	out.WriteString(f.topRecommendations(report))

	return out.String()
}

// topRecommendations aggregates the highest-priority recommendations across
// the individual analyses. At most two are pulled from each source, the
// combined list is capped at eight and duplicates are dropped.
func (f *Formatter) topRecommendations(report *types.InsightsReport) string {
	var all []string

	if n := len(report.Anomalies.BySeverity.High); n > 0 {
		all = append(all, fmt.Sprintf(
			"[CRITICAL] %d high-severity anomalies detected. Review immediately.", n))
	}

	for _, rec := range head(report.Anomalies.Recommendations, 2) {
		lower := strings.ToLower(rec)
		if strings.Contains(lower, "circuit breaker") || strings.Contains(lower, "sql") {
			all = append(all, "[HIGH] "+rec)
		}
	}

	for _, rec := range head(report.Cache.Recommendations, 2) {
		if strings.Contains(strings.ToLower(rec), "low cache") {
			all = append(all, "[MEDIUM] "+rec)
		}
	}

	for _, rec := range head(report.Tools.Recommendations, 2) {
		all = append(all, "[MEDIUM] "+rec)
	}

	for _, rec := range head(report.Predictions.Recommendations, 1) {
		all = append(all, "[INFO] "+rec)
	}

	var out strings.Builder
	out.WriteString(f.sectionStyle().Render("Top Recommendations"))
	out.WriteString("\n")

	seen := make(map[string]struct{})
	for _, rec := range head(all, 8) {
		if _, ok := seen[rec]; ok {
			continue
		}
		seen[rec] = struct{}{}
		out.WriteString("  " + rec + "\n")
	}
	return out.String()
}

func head(recs []string, n int) []string {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

func sortedDocKeys(m map[string]types.CacheStatsDoc) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Highest total context first, name as tie break.
	sort.Slice(keys, func(i, j int) bool {
		ki, kj := keys[i], keys[j]
		if m[ki].TotalInputContext != m[kj].TotalInputContext {
			return m[ki].TotalInputContext > m[kj].TotalInputContext
		}
		return ki < kj
	})
	return keys
}
