package summarizer

// PlatformConfig tunes summary generation per messaging platform.
type PlatformConfig struct {
	MaxSummaryLength int  `json:"max_summary_length"`
	EmojiFriendly    bool `json:"emoji_friendly"`
	CasualTone       bool `json:"casual_tone"`
	Abbreviations    bool `json:"abbreviations"`
}

// Message is one inbound message to summarize.
type Message struct {
	UserID      string `json:"user_id"`
	Platform    string `json:"platform"`
	MessageText string `json:"message_text"`
	Timestamp   string `json:"timestamp"`
	MessageID   string `json:"message_id,omitempty"`
}

// Result is the full analysis of one message.
type Result struct {
	Summary           string   `json:"summary"`
	Type              string   `json:"type"`
	Intent            string   `json:"intent"`
	Urgency           string   `json:"urgency"`
	Confidence        float64  `json:"confidence"`
	ContextUsed       bool     `json:"context_used"`
	PlatformOptimized bool     `json:"platform_optimized"`
	Reasoning         []string `json:"reasoning"`
	Metadata          Metadata `json:"metadata"`
}

// Metadata carries the per-signal detail behind a Result.
type Metadata struct {
	IntentConfidence    float64  `json:"intent_confidence"`
	UrgencyConfidence   float64  `json:"urgency_confidence"`
	ContextMessagesUsed int      `json:"context_messages_used"`
	Platform            string   `json:"platform"`
	Timestamp           string   `json:"timestamp"`
	ContextInsights     []string `json:"context_insights"`
}

// ContextMessage is one stored conversation entry.
type ContextMessage struct {
	MessageText string `json:"message_text"`
	Timestamp   string `json:"timestamp"`
	MessageID   string `json:"message_id"`
}

type contextData struct {
	Conversations map[string][]ContextMessage       `json:"conversations"`
	UserProfiles  map[string]map[string]interface{} `json:"user_profiles"`
}

// FeedbackRecord is one rating of a produced summary.
type FeedbackRecord struct {
	SummaryID   string `json:"summary_id"`
	Feedback    string `json:"feedback"`
	Comment     string `json:"comment,omitempty"`
	SummaryText string `json:"summary_text,omitempty"`
	Timestamp   string `json:"timestamp"`
}

type learningData struct {
	FeedbackHistory    []FeedbackRecord   `json:"feedback_history"`
	PerformanceMetrics map[string]float64 `json:"performance_metrics"`
	TermWeights        map[string]float64 `json:"term_weights"`
	LastUpdated        string             `json:"last_updated"`
}

// Stats is the processing counters snapshot.
type Stats struct {
	Processed           int            `json:"processed"`
	ContextUsed         int            `json:"context_used"`
	Platforms           map[string]int `json:"platforms"`
	Intents             map[string]int `json:"intents"`
	UrgencyLevels       map[string]int `json:"urgency_levels"`
	UniqueUsers         int            `json:"unique_users"`
	ContextUsageRate    float64        `json:"context_usage_rate"`
	TotalContextEntries int            `json:"total_context_entries"`
}

// PerformanceStats summarizes the learning store.
type PerformanceStats struct {
	TotalFeedback  int               `json:"total_feedback"`
	ApprovalRate   float64           `json:"approval_rate"`
	RecentFeedback []FeedbackRecord  `json:"recent_feedback"`
	LastUpdated    string            `json:"last_updated"`
	Metrics        SummarizerMetrics `json:"summarizer_metrics"`
}

// SummarizerMetrics counts the static pattern inventory and learned terms.
type SummarizerMetrics struct {
	IntentKeywordsCount   int `json:"intent_keywords_count"`
	UrgencyPatternsCount  int `json:"urgency_patterns_count"`
	PlatformPatternsCount int `json:"platform_patterns_count"`
	LearningTerms         int `json:"learning_terms"`
}
