package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheStatsDerived(t *testing.T) {
	stats := &CacheStats{
		CacheRead:   800_000,
		CacheCreate: 100_000,
		InputTokens: 100_000,
	}

	assert.Equal(t, 1_000_000, stats.TotalInputContext())
	assert.InDelta(t, 80.0, stats.CacheHitRate(), 0.001)
	assert.Equal(t, 0, stats.WastedCacheTokens())

	// Read ratio 0.8 weighted 80, create fully read back weighted 20.
	assert.InDelta(t, 84.0, stats.CacheEfficiencyScore(), 0.001)

	// 800K reads at $0.30/MTok instead of $3.00/MTok.
	assert.InDelta(t, 2.16, stats.EstimatedCacheSavings(), 0.0001)
}

func TestCacheStatsWasted(t *testing.T) {
	stats := &CacheStats{CacheCreate: 300_000, CacheRead: 50_000}
	assert.Equal(t, 250_000, stats.WastedCacheTokens())
}

func TestCacheStatsEmpty(t *testing.T) {
	stats := &CacheStats{}
	assert.Zero(t, stats.CacheHitRate())
	assert.Zero(t, stats.CacheEfficiencyScore())
	assert.Zero(t, stats.WastedCacheTokens())
}

func TestCacheStatsAdd(t *testing.T) {
	session := NewSessionData("s1", "proj")
	session.CacheRead = 100
	session.CacheCreate = 50
	session.InputTokens = 10
	session.OutputTokens = 20
	session.Cost = 1.5

	stats := &CacheStats{}
	stats.Add(session)
	stats.Add(session)

	assert.Equal(t, 200, stats.CacheRead)
	assert.Equal(t, 100, stats.CacheCreate)
	assert.Equal(t, 2, stats.Sessions)
	assert.InDelta(t, 3.0, stats.Cost, 0.0001)
}

func TestCacheStatsDoc(t *testing.T) {
	stats := &CacheStats{CacheRead: 800_000, CacheCreate: 100_000, InputTokens: 100_000, Sessions: 3}
	doc := stats.Doc()

	assert.Equal(t, 1_000_000, doc.TotalInputContext)
	assert.InDelta(t, 80.0, doc.CacheHitRate, 0.001)
	assert.Equal(t, 3, doc.Sessions)
	assert.Equal(t, 0, doc.WastedCacheTokens)
}

func TestToolStatsAvg(t *testing.T) {
	tool := NewToolStats("Read")
	tool.Calls = 4
	tool.OutputTokens = 100
	tool.Sessions["a"] = struct{}{}
	tool.Sessions["b"] = struct{}{}

	doc := tool.Doc()
	assert.Equal(t, 2, doc.Sessions)
	assert.InDelta(t, 25.0, doc.AvgTokensPerCall, 0.001)

	empty := NewToolStats("Write")
	assert.Zero(t, empty.AvgTokensPerCall())
}

func TestMCPStatsTotals(t *testing.T) {
	mcp := NewMCPStats("pipedrive")
	a := NewToolStats("search_deal")
	a.Calls = 3
	a.OutputTokens = 300
	a.Cost = 1.0
	b := NewToolStats("update_deal")
	b.Calls = 1
	b.OutputTokens = 100
	b.Cost = 0.5
	mcp.Tools["search_deal"] = a
	mcp.Tools["update_deal"] = b

	assert.Equal(t, 4, mcp.TotalCalls())
	assert.Equal(t, 400, mcp.TotalOutputTokens())
	assert.InDelta(t, 1.5, mcp.TotalCost(), 0.0001)
}

func TestSkillStatsDocSortsProjects(t *testing.T) {
	skill := NewSkillStats("commit-helper")
	skill.Invocations = 2
	skill.TotalOutputTokens = 50
	skill.Projects["zeta"] = struct{}{}
	skill.Projects["alpha"] = struct{}{}

	doc := skill.Doc()
	assert.Equal(t, []string{"alpha", "zeta"}, doc.Projects)
	assert.InDelta(t, 25.0, doc.AvgTokensPerInvocation, 0.001)
}

func TestProjectROIDocPrimaryDomains(t *testing.T) {
	project := NewProjectROI("crm-sync")
	project.Sessions = 2
	project.OutputTokens = 1000
	project.Cost = 4.0
	project.Domains["crm"] = 10
	project.Domains["coding"] = 5
	project.Domains["data"] = 5
	project.Domains["research"] = 1

	doc := project.Doc()

	assert.InDelta(t, 500.0, doc.TokensPerSession, 0.001)
	assert.InDelta(t, 2.0, doc.CostPerSession, 0.001)

	// Top three by calls, name breaks the tie.
	assert.Equal(t, []DomainCount{
		{Name: "crm", Calls: 10},
		{Name: "coding", Calls: 5},
		{Name: "data", Calls: 5},
	}, doc.PrimaryDomains)
}

func TestSessionData(t *testing.T) {
	session := NewSessionData("agent-abc123", "myproject")
	assert.True(t, session.IsAgent)

	regular := NewSessionData("abc123", "myproject")
	assert.False(t, regular.IsAgent)

	regular.InputTokens = 10
	regular.OutputTokens = 20
	regular.CacheRead = 30
	regular.CacheCreate = 40
	assert.Equal(t, 100, regular.TotalTokens())
}

func TestSetFirstMsg(t *testing.T) {
	session := NewSessionData("s1", "proj")

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'x'
	}
	session.SetFirstMsg(string(long))
	assert.NotNil(t, session.FirstMsg)
	assert.Len(t, []rune(*session.FirstMsg), 200)

	// Only the first call sticks.
	session.SetFirstMsg("second")
	assert.Len(t, []rune(*session.FirstMsg), 200)
}
