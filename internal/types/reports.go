package types

// Severity levels for anomalies.
const (
	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
	SeverityLow    = "LOW"
)

// Anomaly type tags.
const (
	AnomalyToolLoop       = "tool_loop"
	AnomalyFileLoop       = "file_loop"
	AnomalySQLLoop        = "sql_loop"
	AnomalyTokenSpike     = "token_spike"
	AnomalyCostSpike      = "cost_spike"
	AnomalyAgentSpawnLoop = "agent_spawn_loop"
)

// Period describes the analyzed date window. Start is the oldest target
// date, End the most recent.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

// Anomaly is one rule-triggered deviation detected within a session.
type Anomaly struct {
	Severity    string         `json:"severity"`
	Type        string         `json:"type"`
	SessionID   string         `json:"session_id"`
	Project     string         `json:"project"`
	Description string         `json:"description"`
	Count       int            `json:"count"`
	Tokens      int            `json:"tokens"`
	Cost        float64        `json:"cost"`
	Details     map[string]any `json:"details"`
}

type AnomalySummary struct {
	TotalSessions         int      `json:"total_sessions"`
	SessionsWithAnomalies int      `json:"sessions_with_anomalies"`
	AnomalyRate           float64  `json:"anomaly_rate"`
	TotalAnomalies        int      `json:"total_anomalies"`
	TotalLoopTokens       int      `json:"total_loop_tokens"`
	ProjectsAffected      []string `json:"projects_affected"`
}

type AnomaliesBySeverity struct {
	High   []Anomaly `json:"high"`
	Medium []Anomaly `json:"medium"`
	Low    []Anomaly `json:"low"`
}

type AnomalyReport struct {
	Period          Period              `json:"period"`
	Summary         AnomalySummary      `json:"summary"`
	BySeverity      AnomaliesBySeverity `json:"by_severity"`
	ByType          map[string]int      `json:"by_type"`
	Recommendations []string            `json:"recommendations"`
}

// LowCacheSession flags a significant session with a poor cache hit rate.
type LowCacheSession struct {
	SessionID    string  `json:"session_id"`
	Project      string  `json:"project"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	TotalContext int     `json:"total_context"`
	Task         *string `json:"task"`
}

// WastedCacheSession flags a session that wrote far more cache than it read.
type WastedCacheSession struct {
	SessionID   string `json:"session_id"`
	Project     string `json:"project"`
	CacheCreate int    `json:"cache_create"`
	CacheRead   int    `json:"cache_read"`
	Wasted      int    `json:"wasted"`
}

type CacheReport struct {
	Period              Period                   `json:"period"`
	Overall             CacheStatsDoc            `json:"overall"`
	ByProject           map[string]CacheStatsDoc `json:"by_project"`
	ByDay               map[string]CacheStatsDoc `json:"by_day"`
	LowCacheSessions    []LowCacheSession        `json:"low_cache_sessions"`
	WastedCacheSessions []WastedCacheSession     `json:"wasted_cache_sessions"`
	Recommendations     []string                 `json:"recommendations"`
}

type ToolSummary struct {
	TotalSessions     int     `json:"total_sessions"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalCost         float64 `json:"total_cost"`
}

type ToolReport struct {
	Period          Period         `json:"period"`
	Summary         ToolSummary    `json:"summary"`
	Tools           []ToolStatsDoc `json:"tools"`
	MCPs            []MCPStatsDoc  `json:"mcps"`
	Operations      map[string]int `json:"operations"`
	Recommendations []string       `json:"recommendations"`
}

type SkillSummary struct {
	TotalSkills        int     `json:"total_skills"`
	TotalInvocations   int     `json:"total_invocations"`
	SessionsWithSkills int     `json:"sessions_with_skills"`
	TotalTokens        int     `json:"total_tokens"`
	TotalCost          float64 `json:"total_cost"`
}

type SkillReport struct {
	Period          Period          `json:"period"`
	Summary         SkillSummary    `json:"summary"`
	Skills          []SkillStatsDoc `json:"skills"`
	ByEfficiency    []SkillStatsDoc `json:"by_efficiency"`
	Recommendations []string        `json:"recommendations"`
}

type ROISummary struct {
	TotalSessions     int     `json:"total_sessions"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalCost         float64 `json:"total_cost"`
	AvgCostPerSession float64 `json:"avg_cost_per_session"`
}

// ValueAnalysis summarizes how tokens split between high-value and support
// domains.
type ValueAnalysis struct {
	DomainPercentages   map[string]float64 `json:"domain_percentages"`
	HighValuePercentage float64            `json:"high_value_percentage"`
	SupportPercentage   float64            `json:"support_percentage"`
	BalanceScore        float64            `json:"balance_score"`
}

type ROIReport struct {
	Period          Period           `json:"period"`
	Summary         ROISummary       `json:"summary"`
	ByDomain        []DomainStatsDoc `json:"by_domain"`
	ByProject       []ProjectROIDoc  `json:"by_project"`
	ValueAnalysis   ValueAnalysis    `json:"value_analysis"`
	Recommendations []string         `json:"recommendations"`
}

// Trend directions.
const (
	TrendIncreasing       = "increasing"
	TrendDecreasing       = "decreasing"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// Forecast confidence levels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

type ForecastPeriod struct {
	HistoricalStart string `json:"historical_start"`
	HistoricalEnd   string `json:"historical_end"`
	ForecastEnd     string `json:"forecast_end"`
}

type DailyAverage struct {
	Sessions     float64 `json:"sessions"`
	OutputTokens float64 `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

type HistoricalSummary struct {
	DaysAnalyzed      int          `json:"days_analyzed"`
	TotalSessions     int          `json:"total_sessions"`
	TotalOutputTokens int          `json:"total_output_tokens"`
	TotalCost         float64      `json:"total_cost"`
	DailyAverage      DailyAverage `json:"daily_average"`
}

type Trends struct {
	Direction         string  `json:"direction"`
	SessionsChangePct float64 `json:"sessions_change_pct"`
	TokensChangePct   float64 `json:"tokens_change_pct"`
	CostChangePct     float64 `json:"cost_change_pct"`
}

type Forecast struct {
	Days                  int     `json:"days"`
	ProjectedSessions     int     `json:"projected_sessions"`
	ProjectedOutputTokens int     `json:"projected_output_tokens"`
	ProjectedCost         float64 `json:"projected_cost"`
	Confidence            string  `json:"confidence"`
}

type ForecastReport struct {
	Period          ForecastPeriod    `json:"period"`
	Historical      HistoricalSummary `json:"historical"`
	Trends          Trends            `json:"trends"`
	Forecast        Forecast          `json:"forecast"`
	DailyHistory    []DailyStats      `json:"daily_history"`
	Recommendations []string          `json:"recommendations"`
}

// InsightsReport bundles every analyzer's document for the full report.
type InsightsReport struct {
	Tools       *ToolReport     `json:"tools"`
	Cache       *CacheReport    `json:"cache"`
	Anomalies   *AnomalyReport  `json:"anomalies"`
	Skills      *SkillReport    `json:"skills"`
	Predictions *ForecastReport `json:"predictions"`
	ROI         *ROIReport      `json:"roi"`
}
