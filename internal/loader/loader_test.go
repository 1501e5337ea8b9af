package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sdpower/ccinsights-go/internal/pricing"
	"github.com/sdpower/ccinsights-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSessionFile(t *testing.T, root, project, name string, lines ...string) {
	t.Helper()
	dir := filepath.Join(root, project)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func collectSessions(l *Loader, dates []string) []*types.SessionData {
	var sessions []*types.SessionData
	for s := range l.Sessions(dates, nil) {
		sessions = append(sessions, s)
	}
	return sessions
}

func TestSessionsBasic(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "myproject", "abc123.jsonl",
		`{"timestamp":"2025-06-15T09:00:00Z","type":"user","message":{"content":"fix the login bug"}}`,
		`{"timestamp":"2025-06-15T10:00:00Z","type":"assistant","message":{"model":"claude-sonnet-4-5","usage":{"input_tokens":100,"output_tokens":200,"cache_read_input_tokens":300,"cache_creation_input_tokens":400},"content":[{"type":"tool_use","name":"Read","input":{"file_path":"/src/auth.go"}},{"type":"tool_use","name":"Edit","input":{"file_path":"/src/auth.go"}}]}}`,
	)

	l := New(root, pricing.NewCalculator())
	sessions := collectSessions(l, []string{"2025-06-15"})

	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, "abc123", s.SessionID)
	assert.Equal(t, "myproject", s.Project)
	assert.False(t, s.IsAgent)
	assert.Equal(t, 100, s.InputTokens)
	assert.Equal(t, 200, s.OutputTokens)
	assert.Equal(t, 300, s.CacheRead)
	assert.Equal(t, 400, s.CacheCreate)
	assert.Equal(t, 1000, s.TotalTokens())
	assert.Greater(t, s.Cost, 0.0)
	assert.Equal(t, 1, s.ToolCalls["Read"])
	assert.Equal(t, 1, s.ToolCalls["Edit"])
	assert.Equal(t, 2, s.FileOps["/src/auth.go"])
	require.NotNil(t, s.FirstMsg)
	assert.Equal(t, "fix the login bug", *s.FirstMsg)
	assert.Len(t, s.Timestamps, 2)
}

func TestSessionsDeduplication(t *testing.T) {
	root := t.TempDir()
	dup := `{"timestamp":"2025-06-15T10:00:00Z","requestId":"req1","message":{"id":"msg1","usage":{"output_tokens":50}}}`
	writeSessionFile(t, root, "proj", "s.jsonl",
		dup,
		dup,
		// No IDs at all: counted every time.
		`{"timestamp":"2025-06-15T11:00:00Z","message":{"usage":{"output_tokens":10}}}`,
		`{"timestamp":"2025-06-15T11:00:01Z","message":{"usage":{"output_tokens":10}}}`,
	)

	l := New(root, pricing.NewCalculator())
	sessions := collectSessions(l, []string{"2025-06-15"})

	require.Len(t, sessions, 1)
	assert.Equal(t, 70, sessions[0].OutputTokens)
}

func TestSessionsDedupSpansFiles(t *testing.T) {
	root := t.TempDir()
	dup := `{"timestamp":"2025-06-15T10:00:00Z","request_id":"req1","message_id":"msg1","message":{"usage":{"output_tokens":50}}}`
	writeSessionFile(t, root, "proj", "a.jsonl", dup)
	writeSessionFile(t, root, "proj", "b.jsonl",
		dup,
		`{"timestamp":"2025-06-15T10:05:00Z","message":{"usage":{"output_tokens":5}}}`,
	)

	l := New(root, pricing.NewCalculator())
	sessions := collectSessions(l, []string{"2025-06-15"})

	total := 0
	for _, s := range sessions {
		total += s.OutputTokens
	}
	assert.Equal(t, 55, total)
}

func TestSessionsDateFilter(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "s.jsonl",
		`{"timestamp":"2025-06-14T23:59:00Z","message":{"usage":{"output_tokens":100}}}`,
		`{"timestamp":"2025-06-15T00:01:00Z","message":{"usage":{"output_tokens":7}}}`,
	)

	l := New(root, pricing.NewCalculator())
	sessions := collectSessions(l, []string{"2025-06-15"})

	require.Len(t, sessions, 1)
	assert.Equal(t, 7, sessions[0].OutputTokens)

	assert.Empty(t, collectSessions(l, []string{"2025-01-01"}))
}

func TestSessionsZeroOutputDropped(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "s.jsonl",
		`{"timestamp":"2025-06-15T10:00:00Z","message":{"usage":{"input_tokens":500}}}`,
	)

	l := New(root, pricing.NewCalculator())
	assert.Empty(t, collectSessions(l, []string{"2025-06-15"}))
}

func TestSessionsMalformedLinesSkipped(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "s.jsonl",
		`not json at all`,
		``,
		`{"timestamp":"2025-06-15T10:00:00Z","message":{"usage":{"output_tokens":12}}}`,
	)

	l := New(root, pricing.NewCalculator())
	sessions := collectSessions(l, []string{"2025-06-15"})

	require.Len(t, sessions, 1)
	assert.Equal(t, 12, sessions[0].OutputTokens)
}

func TestSessionsMissingRoot(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "does-not-exist"), pricing.NewCalculator())
	assert.Empty(t, collectSessions(l, []string{"2025-06-15"}))
}

func TestSessionsEntryFilter(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "s.jsonl",
		`{"timestamp":"2025-06-15T10:00:00Z","type":"assistant","message":{"usage":{"output_tokens":100}}}`,
		`{"timestamp":"2025-06-15T10:01:00Z","type":"user","message":{"usage":{"output_tokens":1}}}`,
	)

	l := New(root, pricing.NewCalculator())
	onlyAssistant := func(entry map[string]any) bool {
		t, _ := entry["type"].(string)
		return t == "assistant"
	}

	var sessions []*types.SessionData
	for s := range l.Sessions([]string{"2025-06-15"}, onlyAssistant) {
		sessions = append(sessions, s)
	}
	require.Len(t, sessions, 1)
	assert.Equal(t, 100, sessions[0].OutputTokens)
}

func TestSessionsMCPAndSkillExtraction(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "s.jsonl",
		`{"timestamp":"2025-06-15T10:00:00Z","type":"assistant","message":{"usage":{"output_tokens":100},"content":[{"type":"tool_use","name":"mcp__pipedrive__search_deal","input":{}},{"type":"tool_use","name":"Skill","input":{"skill":"commit-helper"}},{"type":"tool_use","name":"Skill","input":{}},{"type":"tool_use","input":{}}]}}`,
	)

	l := New(root, pricing.NewCalculator())
	sessions := collectSessions(l, []string{"2025-06-15"})

	require.Len(t, sessions, 1)
	s := sessions[0]
	assert.Equal(t, 1, s.MCPCalls["mcp__pipedrive__search_deal"])
	assert.Equal(t, 1, s.ToolCalls["mcp__pipedrive__search_deal"])
	assert.Equal(t, 1, s.SkillCalls["commit-helper"])
	assert.Equal(t, 1, s.SkillCalls["unknown"], "skill invocation without a name")
	assert.Equal(t, 1, s.ToolCalls["unknown"], "tool_use without a name")
}

func TestSessionsFirstMessageForms(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "parts.jsonl",
		`{"timestamp":"2025-06-15T09:00:00Z","type":"user","message":{"content":[{"type":"image"},{"type":"text","text":"review this diff"}]}}`,
		`{"timestamp":"2025-06-15T10:00:00Z","message":{"usage":{"output_tokens":5}}}`,
	)

	l := New(root, pricing.NewCalculator())
	sessions := collectSessions(l, []string{"2025-06-15"})

	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].FirstMsg)
	assert.Equal(t, "review this diff", *sessions[0].FirstMsg)
}

func TestDateRange(t *testing.T) {
	l := New(t.TempDir(), pricing.NewCalculator())

	assert.Equal(t, []string{"2025-06-15"}, l.DateRange(7, "2025-06-15"))

	dates := l.DateRange(3, "")
	require.Len(t, dates, 3)
	assert.Equal(t, time.Now().Format("2006-01-02"), dates[0])
	for _, d := range dates {
		_, err := time.Parse("2006-01-02", d)
		assert.NoError(t, err)
	}
}

func TestAgentSessionsFlagged(t *testing.T) {
	root := t.TempDir()
	writeSessionFile(t, root, "proj", "agent-xyz.jsonl",
		`{"timestamp":"2025-06-15T10:00:00Z","message":{"usage":{"output_tokens":9}}}`,
	)

	l := New(root, pricing.NewCalculator())
	sessions := collectSessions(l, []string{"2025-06-15"})

	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].IsAgent)
}
