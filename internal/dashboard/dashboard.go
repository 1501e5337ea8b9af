package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/sdpower/ccinsights-go/internal/insights"
	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/pricing"
	"github.com/sdpower/ccinsights-go/internal/types"
)

type Dashboard struct {
	options Options
}

type Options struct {
	DataPath string
	Days     int
	Interval time.Duration
	NoColor  bool
}

type model struct {
	options    Options
	lastUpdate time.Time
	report     *types.InsightsReport
	err        error
}

type tickMsg time.Time

type reportMsg struct {
	report *types.InsightsReport
	err    error
}

func New(opts Options) *Dashboard {
	if opts.Interval == 0 {
		opts.Interval = 30 * time.Second
	}
	if opts.Days == 0 {
		opts.Days = 7
	}
	return &Dashboard{options: opts}
}

func (d *Dashboard) Start(ctx context.Context) error {
	p := tea.NewProgram(
		model{options: d.options, lastUpdate: time.Now()},
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.options.Interval),
		m.refresh(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			return m, m.refresh()
		}

	case tickMsg:
		m.lastUpdate = time.Time(msg)
		return m, tea.Batch(
			tickCmd(m.options.Interval),
			m.refresh(),
		)

	case reportMsg:
		m.report = msg.report
		m.err = msg.err
	}

	return m, nil
}

func (m model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress 'q' to quit, 'r' to retry", m.err)
	}
	if m.report == nil {
		return "Loading insights...\n\nPress 'q' to quit"
	}

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)
	panelStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		MarginBottom(1)
	if m.options.NoColor {
		headerStyle = lipgloss.NewStyle()
		panelStyle = lipgloss.NewStyle()
	}

	content := headerStyle.Render("Claude Code Insights")
	content += "\n\n"

	tools := m.report.Tools
	cache := m.report.Cache
	anomalies := m.report.Anomalies

	usage := fmt.Sprintf(
		"Sessions: %d\nOutput tokens: %s\nCost: %s\nTrend: %s",
		tools.Summary.TotalSessions,
		types.FormatTokens(tools.Summary.TotalOutputTokens),
		types.FormatCost(tools.Summary.TotalCost),
		m.report.Predictions.Trends.Direction,
	)
	content += panelStyle.Render(usage)
	content += "\n"

	cachePanel := fmt.Sprintf(
		"Cache hit rate: %.1f%%\n%s\nEst. savings: %s",
		cache.Overall.CacheHitRate,
		m.rateBar(cache.Overall.CacheHitRate),
		types.FormatCost(cache.Overall.EstimatedSavings),
	)
	content += panelStyle.Render(cachePanel)
	content += "\n"

	anomalyPanel := fmt.Sprintf(
		"Anomalies: %d (%d HIGH)\nLoop tokens: %s",
		anomalies.Summary.TotalAnomalies,
		len(anomalies.BySeverity.High),
		types.FormatTokens(anomalies.Summary.TotalLoopTokens),
	)
	if len(anomalies.BySeverity.High) > 0 {
		top := anomalies.BySeverity.High[0]
		anomalyPanel += fmt.Sprintf("\nWorst: %s in %s", top.Type, top.Project)
	}
	content += panelStyle.Render(anomalyPanel)
	content += "\n"

	content += fmt.Sprintf("Last update: %s", m.lastUpdate.Format("15:04:05"))
	content += "\n\nPress 'q' to quit, 'r' to refresh"
	return content
}

// rateBar renders a percentage bar colored red to green.
func (m model) rateBar(rate float64) string {
	const width = 30
	filled := int(rate / 100 * width)
	if filled > width {
		filled = width
	}
	b := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if m.options.NoColor {
		return b
	}
	red, _ := colorful.Hex("#e05561")
	green, _ := colorful.Hex("#8cc265")
	c := red.BlendLuv(green, rate/100)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(b)
}

func (m model) refresh() tea.Cmd {
	return func() tea.Msg {
		dataLoader := loader.New(m.options.DataPath, pricing.NewCalculator())
		report := insights.NewReportBuilder(dataLoader).Full(m.options.Days, "")
		return reportMsg{report: report}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
