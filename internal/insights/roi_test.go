package insights

import (
	"testing"
	"time"

	"github.com/sdpower/ccinsights-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDomain(t *testing.T) {
	tests := []struct {
		tool   string
		domain string
	}{
		{"Read", "coding"},
		{"Edit", "coding"},
		{"Bash", "coding"},
		{"WebSearch", "research"},
		{"WebFetch", "research"},
		{"mcp__outlook__send_mail", "communication"},
		{"mcp__pipedrive__search_deal", "crm"},
		{"mcp__ask-maia__query", "meetings"},
		{"mcp__n8n__run_workflow", "automation"},
		{"mcp__supabase__execute_sql", "data"},
		{"Task", "agents"},
		// Substring match, so TodoWrite lands in coding via "write".
		{"TodoWrite", "coding"},
		{"SomethingElse", "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.domain, classifyDomain(tt.tool), tt.tool)
	}
}

func TestClassifySessionAttribution(t *testing.T) {
	analyzer := &ROIAnalyzer{
		domains:  make(map[string]*types.DomainStats),
		projects: make(map[string]*types.ProjectROI),
	}

	session := &types.SessionData{
		SessionID:    "s1",
		Project:      "proj-a",
		OutputTokens: 100,
		Cost:         4.0,
		ToolCalls:    map[string]int{"Read": 1, "Task": 3},
	}
	analyzer.classifySession(session)

	coding := analyzer.domains["coding"]
	require.NotNil(t, coding)
	assert.Equal(t, 25, coding.OutputTokens)
	assert.InDelta(t, 1.0, coding.Cost, 1e-9)
	assert.Equal(t, 1, coding.ToolCalls)

	agents := analyzer.domains["agents"]
	require.NotNil(t, agents)
	assert.Equal(t, 75, agents.OutputTokens)
	assert.InDelta(t, 3.0, agents.Cost, 1e-9)
	assert.Equal(t, 3, agents.ToolCalls)

	proj := analyzer.projects["proj-a"]
	require.NotNil(t, proj)
	assert.Equal(t, 1, proj.Sessions)
	assert.Equal(t, 100, proj.OutputTokens)
	assert.Equal(t, map[string]int{"coding": 1, "agents": 3}, proj.Domains)
}

func TestBalanceScore(t *testing.T) {
	tests := []struct {
		highValue float64
		support   float64
		want      float64
	}{
		{50, 20, 100},
		{20, 20, 80},
		{90, 5, 90},
		{40, 60, 85},
		{10, 60, 65},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, balanceScore(tt.highValue, tt.support))
	}
}

func TestROIAnalyze(t *testing.T) {
	root := t.TempDir()
	date := time.Now().Format("2006-01-02")

	writeSessionFile(t, root, "proj-mixed", "s1.jsonl",
		`{"timestamp":"`+date+`T10:00:00Z","type":"assistant","message":{"usage":{"output_tokens":1000},"content":[{"type":"tool_use","name":"Edit","input":{}},{"type":"tool_use","name":"WebSearch","input":{}}]}}`,
	)

	analyzer := NewROIAnalyzer(newTestLoader(t, root))
	report := analyzer.Analyze(1, "")

	assert.Equal(t, 1, report.Summary.TotalSessions)
	assert.Equal(t, 1000, report.Summary.TotalOutputTokens)

	require.Len(t, report.ByDomain, 2)
	assert.Equal(t, "coding", report.ByDomain[0].Name)
	assert.Equal(t, 500, report.ByDomain[0].OutputTokens)
	assert.Equal(t, "research", report.ByDomain[1].Name)

	require.Len(t, report.ByProject, 1)
	proj := report.ByProject[0]
	assert.Equal(t, "proj-mixed", proj.Name)
	require.Len(t, proj.PrimaryDomains, 2)
	assert.Equal(t, "coding", proj.PrimaryDomains[0].Name)

	value := report.ValueAnalysis
	assert.InDelta(t, 50.0, value.HighValuePercentage, 1e-9)
	assert.InDelta(t, 50.0, value.SupportPercentage, 1e-9)
	assert.Equal(t, 100.0, value.BalanceScore)

	assert.Equal(t, []string{"Token ROI looks balanced."}, report.Recommendations)
}
