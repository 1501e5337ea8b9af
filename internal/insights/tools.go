package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sdpower/ccinsights-go/internal/loader"
	"github.com/sdpower/ccinsights-go/internal/types"
)

// Operation taxonomy bucket names.
const (
	opFileOperations   = "File Operations"
	opShellCommands    = "Shell Commands"
	opAgentSpawning    = "Agent Spawning"
	opMCPCalls         = "MCP Calls"
	opSkillInvocations = "Skill Invocations"
	opWebOperations    = "Web Operations"
	opTaskManagement   = "Task Management"
	opOther            = "Other"
)

// ToolAnalyzer attributes session output tokens and cost across tool calls
// and builds the MCP server breakdown.
type ToolAnalyzer struct {
	loader *loader.Loader

	tools      map[string]*types.ToolStats
	mcps       map[string]*types.MCPStats
	operations map[string]int
}

func NewToolAnalyzer(l *loader.Loader) *ToolAnalyzer {
	return &ToolAnalyzer{loader: l}
}

// Analyze computes the tool usage document for the requested window.
func (a *ToolAnalyzer) Analyze(daysBack int, targetDate string) *types.ToolReport {
	targetDates := a.loader.DateRange(daysBack, targetDate)
	a.reset()

	totalOutput := 0
	totalCost := 0.0
	sessionCount := 0

	for session := range a.loader.Sessions(targetDates, nil) {
		sessionCount++
		totalOutput += session.OutputTokens
		totalCost += session.Cost
		a.processSession(session)
	}

	rankedTools := a.rankedTools()
	rankedMCPs := a.rankedMCPs()

	return &types.ToolReport{
		Period: periodFor(targetDates),
		Summary: types.ToolSummary{
			TotalSessions:     sessionCount,
			TotalOutputTokens: totalOutput,
			TotalCost:         totalCost,
		},
		Tools:           topToolDocs(rankedTools, 20),
		MCPs:            mcpDocs(rankedMCPs),
		Operations:      a.operations,
		Recommendations: a.recommendations(rankedTools, rankedMCPs),
	}
}

func (a *ToolAnalyzer) reset() {
	a.tools = make(map[string]*types.ToolStats)
	a.mcps = make(map[string]*types.MCPStats)
	a.operations = make(map[string]int)
}

// processSession distributes the session's output tokens and cost across its
// tool calls in proportion to call count. The per-call estimate is a known
// approximation and is kept bit-for-bit: token credit truncates to int.
func (a *ToolAnalyzer) processSession(session *types.SessionData) {
	totalCalls := sumCounts(session.ToolCalls)
	tokensPerCall := 0.0
	costPerCall := 0.0
	if totalCalls > 0 {
		tokensPerCall = float64(session.OutputTokens) / float64(totalCalls)
		costPerCall = session.Cost / float64(totalCalls)
	}

	for _, toolName := range sortedKeys(session.ToolCalls) {
		count := session.ToolCalls[toolName]

		stats, ok := a.tools[toolName]
		if !ok {
			stats = types.NewToolStats(toolName)
			a.tools[toolName] = stats
		}
		stats.Calls += count
		stats.Sessions[session.SessionID] = struct{}{}
		stats.OutputTokens += int(tokensPerCall * float64(count))
		stats.Cost += costPerCall * float64(count)

		a.categorizeOperation(toolName, count)

		if strings.HasPrefix(toolName, "mcp__") {
			a.trackMCPTool(toolName, count, tokensPerCall, costPerCall, session.SessionID)
		}
	}
}

// categorizeOperation buckets a tool into the fixed operation taxonomy by
// literal name or prefix.
func (a *ToolAnalyzer) categorizeOperation(toolName string, count int) {
	switch {
	case toolName == "Read" || toolName == "Write" || toolName == "Edit" ||
		toolName == "Glob" || toolName == "Grep":
		a.operations[opFileOperations] += count
	case toolName == "Bash":
		a.operations[opShellCommands] += count
	case toolName == "Task" || toolName == "TaskOutput":
		a.operations[opAgentSpawning] += count
	case strings.HasPrefix(toolName, "mcp__"):
		a.operations[opMCPCalls] += count
	case toolName == "Skill":
		a.operations[opSkillInvocations] += count
	case toolName == "WebSearch" || toolName == "WebFetch":
		a.operations[opWebOperations] += count
	case toolName == "TodoWrite":
		a.operations[opTaskManagement] += count
	default:
		a.operations[opOther] += count
	}
}

// trackMCPTool splits an MCP tool name into server and operation segments
// and accumulates the per-operation share.
func (a *ToolAnalyzer) trackMCPTool(toolName string, count int, tokensPerCall, costPerCall float64, sessionID string) {
	parts := strings.Split(toolName, "__")
	if len(parts) < 2 {
		return
	}
	server := parts[1]
	operation := "unknown"
	if len(parts) > 2 {
		operation = strings.Join(parts[2:], "__")
	}

	mcp, ok := a.mcps[server]
	if !ok {
		mcp = types.NewMCPStats(server)
		a.mcps[server] = mcp
	}

	stats, ok := mcp.Tools[operation]
	if !ok {
		stats = types.NewToolStats(operation)
		mcp.Tools[operation] = stats
	}
	stats.Calls += count
	stats.Sessions[sessionID] = struct{}{}
	stats.OutputTokens += int(tokensPerCall * float64(count))
	stats.Cost += costPerCall * float64(count)
}

// rankedTools sorts by call count descending, name ascending on ties.
func (a *ToolAnalyzer) rankedTools() []*types.ToolStats {
	tools := make([]*types.ToolStats, 0, len(a.tools))
	for _, t := range a.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool {
		if tools[i].Calls != tools[j].Calls {
			return tools[i].Calls > tools[j].Calls
		}
		return tools[i].Name < tools[j].Name
	})
	return tools
}

func (a *ToolAnalyzer) rankedMCPs() []*types.MCPStats {
	mcps := make([]*types.MCPStats, 0, len(a.mcps))
	for _, m := range a.mcps {
		mcps = append(mcps, m)
	}
	sort.Slice(mcps, func(i, j int) bool {
		ci, cj := mcps[i].TotalCalls(), mcps[j].TotalCalls()
		if ci != cj {
			return ci > cj
		}
		return mcps[i].Server < mcps[j].Server
	})
	return mcps
}

func topToolDocs(tools []*types.ToolStats, n int) []types.ToolStatsDoc {
	if len(tools) > n {
		tools = tools[:n]
	}
	docs := make([]types.ToolStatsDoc, 0, len(tools))
	for _, t := range tools {
		docs = append(docs, t.Doc())
	}
	return docs
}

func mcpDocs(mcps []*types.MCPStats) []types.MCPStatsDoc {
	docs := make([]types.MCPStatsDoc, 0, len(mcps))
	for _, m := range mcps {
		docs = append(docs, m.Doc())
	}
	return docs
}

func (a *ToolAnalyzer) recommendations(rankedTools []*types.ToolStats, rankedMCPs []*types.MCPStats) []string {
	var recommendations []string

	for _, mcp := range rankedMCPs {
		if mcp.TotalCalls() > 100 {
			recommendations = append(recommendations, fmt.Sprintf(
				"High MCP usage: %s (%d calls). Consider batching operations.",
				mcp.Server, mcp.TotalCalls()))
		}
	}

	if fileOps := a.operations[opFileOperations]; fileOps > 200 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Heavy file operations (%d calls). Consider using Explore agent for codebase searches.",
			fileOps))
	}

	if agentSpawns := a.operations[opAgentSpawning]; agentSpawns > 50 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Frequent agent spawning (%d calls). Consider consolidating related tasks.",
			agentSpawns))
	}

	for _, tool := range rankedTools {
		if tool.Calls > 50 && tool.AvgTokensPerCall() > 5000 {
			recommendations = append(recommendations, fmt.Sprintf(
				"Expensive tool: %s (%d calls, %s avg tokens/call)",
				tool.Name, tool.Calls, types.FormatTokens(int(tool.AvgTokensPerCall()))))
		}
	}

	if len(recommendations) == 0 {
		return []string{"No optimization issues detected."}
	}
	return recommendations
}
