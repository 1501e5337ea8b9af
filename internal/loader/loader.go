package loader

import (
	"bufio"
	"encoding/json"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sdpower/ccinsights-go/internal/types"
)

// defaultModel is assumed when an entry carries usage but no model field.
const defaultModel = "claude-3-5-sonnet"

// PricingCalculator prices one entry's token counts. Implementations must be
// pure and deterministic.
type PricingCalculator interface {
	CalculateCost(model string, inputTokens, outputTokens, cacheCreationTokens, cacheReadTokens int) float64
}

// EntryFilter is an optional predicate applied to each parsed entry before
// any accounting. Entries it rejects are dropped entirely.
type EntryFilter func(entry map[string]any) bool

// Loader streams session log files under a Claude projects directory and
// folds matching entries into per-file SessionData records.
type Loader struct {
	dataPath string
	pricing  PricingCalculator
	logger   *slog.Logger
	now      func() time.Time
}

func New(dataPath string, pricing PricingCalculator) *Loader {
	if dataPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dataPath = filepath.Join(home, ".claude", "projects")
		}
	}
	return &Loader{
		dataPath: dataPath,
		pricing:  pricing,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// DataPath returns the resolved projects root.
func (l *Loader) DataPath() string {
	return l.dataPath
}

// DateRange returns the target dates for one analysis: either the single
// explicit date, or the last daysBack calendar days ending today, most
// recent first.
func (l *Loader) DateRange(daysBack int, targetDate string) []string {
	if targetDate != "" {
		return []string{targetDate}
	}
	today := l.now()
	dates := make([]string, 0, daysBack)
	for i := 0; i < daysBack; i++ {
		dates = append(dates, today.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}

// Sessions returns a lazy, single-use sequence of completed sessions whose
// entries match the target dates. Each call owns a fresh deduplication set;
// the sequence is not restartable and must not be shared across goroutines.
func (l *Loader) Sessions(targetDates []string, filter EntryFilter) iter.Seq[*types.SessionData] {
	return func(yield func(*types.SessionData) bool) {
		if _, err := os.Stat(l.dataPath); err != nil {
			l.logger.Warn("data path does not exist", "path", l.dataPath,
				"error", types.LoaderError{Path: l.dataPath, Err: types.ErrDataNotFound})
			return
		}

		seen := make(map[string]struct{})

		projectDirs, err := os.ReadDir(l.dataPath)
		if err != nil {
			l.logger.Warn("cannot read data path", "path", l.dataPath, "error", err)
			return
		}

		for _, projectDir := range projectDirs {
			if !projectDir.IsDir() {
				continue
			}
			projectName := projectDir.Name()
			projectPath := filepath.Join(l.dataPath, projectName)

			files, err := os.ReadDir(projectPath)
			if err != nil {
				l.logger.Warn("cannot read project directory", "path", projectPath, "error", err)
				continue
			}

			for _, file := range files {
				if file.IsDir() || !strings.HasSuffix(file.Name(), ".jsonl") {
					continue
				}
				session := l.processSessionFile(
					filepath.Join(projectPath, file.Name()),
					projectName, targetDates, filter, seen,
				)
				if session != nil && session.OutputTokens > 0 {
					if !yield(session) {
						return
					}
				}
			}
		}
	}
}

// processSessionFile scans one JSONL file into a SessionData. It returns nil
// when no entry matched the target dates or the file could not be read; a
// read failure drops only this file.
func (l *Loader) processSessionFile(path, projectName string, targetDates []string, filter EntryFilter, seen map[string]struct{}) *types.SessionData {
	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	session := types.NewSessionData(sessionID, projectName)
	hasTargetDate := false

	file, err := os.Open(path)
	if err != nil {
		l.logger.Warn("cannot open session file", "path", path, "error", err)
		return nil
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	// Some entries embed whole file contents; allow lines up to 1MB.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue // skip malformed lines
		}

		ts, _ := entry["timestamp"].(string)
		if !containsAnyDate(ts, targetDates) {
			continue
		}

		if filter != nil && !filter(entry) {
			continue
		}

		if hash := uniqueHash(entry); hash != "" {
			if _, dup := seen[hash]; dup {
				continue
			}
			seen[hash] = struct{}{}
		}

		hasTargetDate = true
		session.Timestamps = append(session.Timestamps, ts)

		l.extractUsage(entry, session)
		extractToolCalls(entry, session)
		extractFirstMessage(entry, session)
	}

	if err := scanner.Err(); err != nil {
		l.logger.Warn("error reading session file", "path", path,
			"error", types.LoaderError{Path: path, Err: err})
		return nil
	}

	if !hasTargetDate {
		return nil
	}
	return session
}

// uniqueHash builds the dedup key from the message and request IDs. Entries
// lacking either are never deduplicated.
func uniqueHash(entry map[string]any) string {
	messageID, _ := entry["message_id"].(string)
	if messageID == "" {
		if message, ok := entry["message"].(map[string]any); ok {
			messageID, _ = message["id"].(string)
		}
	}

	requestID, _ := entry["requestId"].(string)
	if requestID == "" {
		requestID, _ = entry["request_id"].(string)
	}

	if messageID == "" || requestID == "" {
		return ""
	}
	return messageID + ":" + requestID
}

// containsAnyDate matches by substring containment, not exact field
// equality, so any timestamp format with an embedded date prefix works.
func containsAnyDate(ts string, dates []string) bool {
	for _, d := range dates {
		if strings.Contains(ts, d) {
			return true
		}
	}
	return false
}

// extractUsage folds the entry's token counts into the session and prices
// them. Entries without a message contribute nothing but were already
// counted for dedup and timestamp purposes.
func (l *Loader) extractUsage(entry map[string]any, session *types.SessionData) {
	message, ok := entry["message"].(map[string]any)
	if !ok {
		return
	}
	usage, _ := message["usage"].(map[string]any)

	inputTokens := intField(usage, "input_tokens")
	outputTokens := intField(usage, "output_tokens")
	cacheRead := intField(usage, "cache_read_input_tokens")
	cacheCreate := intField(usage, "cache_creation_input_tokens")

	session.InputTokens += inputTokens
	session.OutputTokens += outputTokens
	session.CacheRead += cacheRead
	session.CacheCreate += cacheCreate

	model, _ := message["model"].(string)
	if model == "" {
		model = defaultModel
	}
	session.Cost += l.pricing.CalculateCost(model, inputTokens, outputTokens, cacheCreate, cacheRead)
}

// extractToolCalls inspects assistant entries with list-shaped content and
// counts tool invocations, MCP calls, skill invocations and file operations.
func extractToolCalls(entry map[string]any, session *types.SessionData) {
	if t, _ := entry["type"].(string); t != "assistant" {
		return
	}
	message, ok := entry["message"].(map[string]any)
	if !ok {
		return
	}
	content, ok := message["content"].([]any)
	if !ok {
		return
	}

	for _, raw := range content {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := item["type"].(string); t != "tool_use" {
			continue
		}

		toolName, ok := item["name"].(string)
		if !ok {
			toolName = "unknown"
		}
		session.ToolCalls[toolName]++

		if strings.HasPrefix(toolName, "mcp__") {
			session.MCPCalls[toolName]++
		}

		input, _ := item["input"].(map[string]any)

		if toolName == "Skill" {
			skillName, ok := input["skill"].(string)
			if !ok {
				skillName = "unknown"
			}
			session.SkillCalls[skillName]++
		}

		filePath, ok := input["file_path"].(string)
		if !ok {
			filePath, _ = input["path"].(string)
		}
		if filePath != "" {
			session.FileOps[filePath]++
		}
	}
}

// extractFirstMessage captures the first user message as the session's task
// description. Both plain string and multi-part content are supported.
func extractFirstMessage(entry map[string]any, session *types.SessionData) {
	if session.FirstMsg != nil {
		return
	}
	if t, _ := entry["type"].(string); t != "user" {
		return
	}
	message, ok := entry["message"].(map[string]any)
	if !ok {
		return
	}

	switch content := message["content"].(type) {
	case string:
		session.SetFirstMsg(content)
	case []any:
		for _, raw := range content {
			part, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if t, _ := part["type"].(string); t == "text" {
				text, _ := part["text"].(string)
				session.SetFirstMsg(text)
				break
			}
		}
	}
}

func intField(m map[string]any, key string) int {
	if v, ok := m[key].(float64); ok {
		return int(v)
	}
	return 0
}
