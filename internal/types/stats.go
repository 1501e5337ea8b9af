package types

import "sort"

// Cache pricing per 1M tokens, used for the savings estimate only. Actual
// session costs come from the pricing calculator.
const (
	CacheReadCostPerM = 0.30
	InputCostPerM     = 3.00
)

// CacheStats accumulates cache counters for one rollup key (overall, a
// project, or a day). All ratios are computed, never stored.
type CacheStats struct {
	CacheRead    int     `json:"cache_read"`
	CacheCreate  int     `json:"cache_create"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Sessions     int     `json:"sessions"`
	Cost         float64 `json:"cost"`
}

// TotalInputContext is the full input-side context including cache traffic.
func (s *CacheStats) TotalInputContext() int {
	return s.CacheRead + s.CacheCreate + s.InputTokens
}

// CacheHitRate is the percentage of input context served from cache reads.
func (s *CacheStats) CacheHitRate() float64 {
	total := s.TotalInputContext()
	if total == 0 {
		return 0
	}
	return float64(s.CacheRead) / float64(total) * 100
}

// CacheEfficiencyScore scores cache utilization 0-100. Reading is weighted
// 80%, creating cache that actually gets read back 20%.
func (s *CacheStats) CacheEfficiencyScore() float64 {
	total := s.TotalInputContext()
	if total == 0 {
		return 0
	}
	readRatio := float64(s.CacheRead) / float64(total)
	createEfficiency := 1.0
	if s.CacheCreate > 0 {
		createEfficiency = min(1.0, float64(s.CacheRead)/(float64(s.CacheCreate)*5))
	}
	return min(100, readRatio*80+createEfficiency*20)
}

// EstimatedCacheSavings compares cache-read pricing against what the same
// tokens would have cost as plain input.
func (s *CacheStats) EstimatedCacheSavings() float64 {
	fullInputCost := float64(s.CacheRead) / 1_000_000 * InputCostPerM
	actualCacheCost := float64(s.CacheRead) / 1_000_000 * CacheReadCostPerM
	return fullInputCost - actualCacheCost
}

// WastedCacheTokens approximates cache written but never read back.
func (s *CacheStats) WastedCacheTokens() int {
	if s.CacheCreate > s.CacheRead {
		return s.CacheCreate - s.CacheRead
	}
	return 0
}

// Add folds one session's counters into the rollup.
func (s *CacheStats) Add(session *SessionData) {
	s.CacheRead += session.CacheRead
	s.CacheCreate += session.CacheCreate
	s.InputTokens += session.InputTokens
	s.OutputTokens += session.OutputTokens
	s.Sessions++
	s.Cost += session.Cost
}

// Doc renders the stats with all derived ratios materialized.
func (s *CacheStats) Doc() CacheStatsDoc {
	return CacheStatsDoc{
		CacheRead:            s.CacheRead,
		CacheCreate:          s.CacheCreate,
		InputTokens:          s.InputTokens,
		OutputTokens:         s.OutputTokens,
		Sessions:             s.Sessions,
		Cost:                 s.Cost,
		TotalInputContext:    s.TotalInputContext(),
		CacheHitRate:         s.CacheHitRate(),
		CacheEfficiencyScore: s.CacheEfficiencyScore(),
		EstimatedSavings:     s.EstimatedCacheSavings(),
		WastedCacheTokens:    s.WastedCacheTokens(),
	}
}

// CacheStatsDoc is the serialized form of CacheStats.
type CacheStatsDoc struct {
	CacheRead            int     `json:"cache_read"`
	CacheCreate          int     `json:"cache_create"`
	InputTokens          int     `json:"input_tokens"`
	OutputTokens         int     `json:"output_tokens"`
	Sessions             int     `json:"sessions"`
	Cost                 float64 `json:"cost"`
	TotalInputContext    int     `json:"total_input_context"`
	CacheHitRate         float64 `json:"cache_hit_rate"`
	CacheEfficiencyScore float64 `json:"cache_efficiency_score"`
	EstimatedSavings     float64 `json:"estimated_savings"`
	WastedCacheTokens    int     `json:"wasted_cache_tokens"`
}

// ToolStats accumulates attributed usage for one tool name.
type ToolStats struct {
	Name         string
	Calls        int
	Sessions     map[string]struct{}
	OutputTokens int
	InputTokens  int
	Cost         float64
}

func NewToolStats(name string) *ToolStats {
	return &ToolStats{Name: name, Sessions: make(map[string]struct{})}
}

func (t *ToolStats) AvgTokensPerCall() float64 {
	if t.Calls == 0 {
		return 0
	}
	return float64(t.OutputTokens) / float64(t.Calls)
}

func (t *ToolStats) Doc() ToolStatsDoc {
	return ToolStatsDoc{
		Name:             t.Name,
		Calls:            t.Calls,
		Sessions:         len(t.Sessions),
		OutputTokens:     t.OutputTokens,
		InputTokens:      t.InputTokens,
		Cost:             t.Cost,
		AvgTokensPerCall: t.AvgTokensPerCall(),
	}
}

type ToolStatsDoc struct {
	Name             string  `json:"name"`
	Calls            int     `json:"calls"`
	Sessions         int     `json:"sessions"`
	OutputTokens     int     `json:"output_tokens"`
	InputTokens      int     `json:"input_tokens"`
	Cost             float64 `json:"cost"`
	AvgTokensPerCall float64 `json:"avg_tokens_per_call"`
}

// MCPStats groups per-operation stats under one MCP server.
type MCPStats struct {
	Server string
	Tools  map[string]*ToolStats
}

func NewMCPStats(server string) *MCPStats {
	return &MCPStats{Server: server, Tools: make(map[string]*ToolStats)}
}

func (m *MCPStats) TotalCalls() int {
	total := 0
	for _, t := range m.Tools {
		total += t.Calls
	}
	return total
}

func (m *MCPStats) TotalOutputTokens() int {
	total := 0
	for _, t := range m.Tools {
		total += t.OutputTokens
	}
	return total
}

func (m *MCPStats) TotalCost() float64 {
	total := 0.0
	for _, t := range m.Tools {
		total += t.Cost
	}
	return total
}

func (m *MCPStats) Doc() MCPStatsDoc {
	tools := make(map[string]ToolStatsDoc, len(m.Tools))
	for name, t := range m.Tools {
		tools[name] = t.Doc()
	}
	return MCPStatsDoc{
		Server:            m.Server,
		TotalCalls:        m.TotalCalls(),
		TotalOutputTokens: m.TotalOutputTokens(),
		TotalCost:         m.TotalCost(),
		Tools:             tools,
	}
}

type MCPStatsDoc struct {
	Server            string                  `json:"server"`
	TotalCalls        int                     `json:"total_calls"`
	TotalOutputTokens int                     `json:"total_output_tokens"`
	TotalCost         float64                 `json:"total_cost"`
	Tools             map[string]ToolStatsDoc `json:"tools"`
}

// SkillStats accumulates attributed usage for one skill.
type SkillStats struct {
	Name              string
	Invocations       int
	Sessions          map[string]struct{}
	Projects          map[string]struct{}
	TotalOutputTokens int
	TotalCost         float64
}

func NewSkillStats(name string) *SkillStats {
	return &SkillStats{
		Name:     name,
		Sessions: make(map[string]struct{}),
		Projects: make(map[string]struct{}),
	}
}

func (s *SkillStats) AvgTokensPerInvocation() float64 {
	if s.Invocations == 0 {
		return 0
	}
	return float64(s.TotalOutputTokens) / float64(s.Invocations)
}

func (s *SkillStats) AvgCostPerInvocation() float64 {
	if s.Invocations == 0 {
		return 0
	}
	return s.TotalCost / float64(s.Invocations)
}

func (s *SkillStats) Doc() SkillStatsDoc {
	projects := make([]string, 0, len(s.Projects))
	for p := range s.Projects {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return SkillStatsDoc{
		Name:                   s.Name,
		Invocations:            s.Invocations,
		Sessions:               len(s.Sessions),
		TotalOutputTokens:      s.TotalOutputTokens,
		TotalCost:              s.TotalCost,
		AvgTokensPerInvocation: s.AvgTokensPerInvocation(),
		AvgCostPerInvocation:   s.AvgCostPerInvocation(),
		Projects:               projects,
	}
}

type SkillStatsDoc struct {
	Name                   string   `json:"name"`
	Invocations            int      `json:"invocations"`
	Sessions               int      `json:"sessions"`
	TotalOutputTokens      int      `json:"total_output_tokens"`
	TotalCost              float64  `json:"total_cost"`
	AvgTokensPerInvocation float64  `json:"avg_tokens_per_invocation"`
	AvgCostPerInvocation   float64  `json:"avg_cost_per_invocation"`
	Projects               []string `json:"projects"`
}

// DomainStats accumulates attributed usage for one activity domain.
type DomainStats struct {
	Name         string
	Sessions     map[string]struct{}
	ToolCalls    int
	OutputTokens int
	Cost         float64
}

func NewDomainStats(name string) *DomainStats {
	return &DomainStats{Name: name, Sessions: make(map[string]struct{})}
}

func (d *DomainStats) TokensPerCall() float64 {
	if d.ToolCalls == 0 {
		return 0
	}
	return float64(d.OutputTokens) / float64(d.ToolCalls)
}

func (d *DomainStats) Doc() DomainStatsDoc {
	return DomainStatsDoc{
		Name:          d.Name,
		Sessions:      len(d.Sessions),
		ToolCalls:     d.ToolCalls,
		OutputTokens:  d.OutputTokens,
		Cost:          d.Cost,
		TokensPerCall: d.TokensPerCall(),
	}
}

type DomainStatsDoc struct {
	Name          string  `json:"name"`
	Sessions      int     `json:"sessions"`
	ToolCalls     int     `json:"tool_calls"`
	OutputTokens  int     `json:"output_tokens"`
	Cost          float64 `json:"cost"`
	TokensPerCall float64 `json:"tokens_per_call"`
}

// DomainCount pairs a domain with its call count inside one project.
type DomainCount struct {
	Name  string `json:"name"`
	Calls int    `json:"calls"`
}

// ProjectROI accumulates per-project usage and its domain mix.
type ProjectROI struct {
	Name         string
	Sessions     int
	OutputTokens int
	Cost         float64
	Domains      map[string]int
}

func NewProjectROI(name string) *ProjectROI {
	return &ProjectROI{Name: name, Domains: make(map[string]int)}
}

func (p *ProjectROI) Doc() ProjectROIDoc {
	doc := ProjectROIDoc{
		Name:         p.Name,
		Sessions:     p.Sessions,
		OutputTokens: p.OutputTokens,
		Cost:         p.Cost,
	}
	if p.Sessions > 0 {
		doc.TokensPerSession = float64(p.OutputTokens) / float64(p.Sessions)
		doc.CostPerSession = p.Cost / float64(p.Sessions)
	}
	domains := make([]DomainCount, 0, len(p.Domains))
	for name, calls := range p.Domains {
		domains = append(domains, DomainCount{Name: name, Calls: calls})
	}
	sort.Slice(domains, func(i, j int) bool {
		if domains[i].Calls != domains[j].Calls {
			return domains[i].Calls > domains[j].Calls
		}
		return domains[i].Name < domains[j].Name
	})
	if len(domains) > 3 {
		domains = domains[:3]
	}
	doc.PrimaryDomains = domains
	return doc
}

type ProjectROIDoc struct {
	Name             string        `json:"name"`
	Sessions         int           `json:"sessions"`
	OutputTokens     int           `json:"output_tokens"`
	Cost             float64       `json:"cost"`
	TokensPerSession float64       `json:"tokens_per_session"`
	CostPerSession   float64       `json:"cost_per_session"`
	PrimaryDomains   []DomainCount `json:"primary_domains"`
}

// DailyStats sums one calendar day of sessions for trend analysis.
type DailyStats struct {
	Date         string  `json:"date"`
	Sessions     int     `json:"sessions"`
	OutputTokens int     `json:"output_tokens"`
	InputTokens  int     `json:"input_tokens"`
	CacheRead    int     `json:"cache_read"`
	Cost         float64 `json:"cost"`
}
