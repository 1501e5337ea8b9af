package types

import "strings"

// AgentSessionPrefix marks log files produced by spawned sub-agents.
const AgentSessionPrefix = "agent-"

// firstMsgMaxLen is the capture limit for the first user message.
const firstMsgMaxLen = 200

// SessionData aggregates one session log file. It is mutated by the loader
// while the file is being scanned and treated as read-only afterwards.
type SessionData struct {
	SessionID    string         `json:"session_id"`
	Project      string         `json:"project"`
	IsAgent      bool           `json:"is_agent"`
	InputTokens  int            `json:"input_tokens"`
	OutputTokens int            `json:"output_tokens"`
	CacheRead    int            `json:"cache_read"`
	CacheCreate  int            `json:"cache_create"`
	Cost         float64        `json:"cost"`
	ToolCalls    map[string]int `json:"tool_calls"`
	FileOps      map[string]int `json:"-"`
	MCPCalls     map[string]int `json:"mcp_calls"`
	SkillCalls   map[string]int `json:"skill_calls"`
	Timestamps   []string       `json:"-"`
	FirstMsg     *string        `json:"first_msg"`
}

func NewSessionData(sessionID, project string) *SessionData {
	return &SessionData{
		SessionID:  sessionID,
		Project:    project,
		IsAgent:    strings.HasPrefix(sessionID, AgentSessionPrefix),
		ToolCalls:  make(map[string]int),
		FileOps:    make(map[string]int),
		MCPCalls:   make(map[string]int),
		SkillCalls: make(map[string]int),
	}
}

// TotalTokens is derived, never stored.
func (s *SessionData) TotalTokens() int {
	return s.InputTokens + s.OutputTokens + s.CacheRead + s.CacheCreate
}

// SetFirstMsg captures the first user-visible message. Only the first call
// has any effect; the text is truncated to 200 characters.
func (s *SessionData) SetFirstMsg(text string) {
	if s.FirstMsg != nil {
		return
	}
	truncated := truncateRunes(text, firstMsgMaxLen)
	s.FirstMsg = &truncated
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
