package agent

// NormalizedMessage is the canonical schema every inbound payload is reduced
// to, regardless of which platform produced it.
type NormalizedMessage struct {
	Sender    string                 `json:"sender"`
	Subject   string                 `json:"subject"`
	Body      string                 `json:"body"`
	Timestamp string                 `json:"timestamp,omitempty"`
	Platform  string                 `json:"platform,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// UrgencySignals records the individual contributions to the urgency score.
type UrgencySignals struct {
	KeywordHits  int  `json:"keyword_hits"`
	Exclamations int  `json:"exclam"`
	CapsWords    int  `json:"caps_words"`
	TimeExpr     bool `json:"time_expr"`
}

// FeatureState is the per-message state representation. It is recomputed on
// every call and never persisted; only the derived state key is.
type FeatureState struct {
	Sender          string             `json:"sender"`
	SubjectLength   int                `json:"subject_length"`
	BodyLength      int                `json:"body_length"`
	HasUrgentWords  bool               `json:"has_urgent_words"`
	UrgencyScore    float64            `json:"urgency_score"`
	HasDeadline     bool               `json:"has_deadline"`
	HasQuestion     bool               `json:"has_question"`
	Intent          string             `json:"intent"`
	IntentScores    map[string]float64 `json:"intent_scores"`
	SenderFrequency int                `json:"sender_frequency"`
	TimeOfDay       string             `json:"time_of_day"`
	UrgencySignals  UrgencySignals     `json:"urgency_signals"`
	Platform        string             `json:"platform,omitempty"`
}

// SenderRecord tracks historical triage decisions for one sender.
type SenderRecord struct {
	ActionCounts    map[string]int `json:"action_counts"`
	TotalEmails     int            `json:"total_emails"`
	AvgConfidence   float64        `json:"avg_confidence"`
	LastInteraction string         `json:"last_interaction,omitempty"`
}

// KeywordRecord tracks which actions each keyword has been associated with.
type KeywordRecord struct {
	ActionCounts     map[string]int `json:"action_counts"`
	ConfidenceScores []float64      `json:"confidence_scores"`
}

// TopicRecord is reserved for subject-topic relationships. It is persisted
// for forward compatibility but not consulted by the policy yet.
type TopicRecord struct {
	ActionCounts     map[string]int `json:"action_counts"`
	Keywords         []string       `json:"keywords"`
	ConfidenceScores []float64      `json:"confidence_scores"`
}

// KeywordDelta records a before/after count change in the feedback trace.
type KeywordDelta struct {
	Keyword string `json:"keyword"`
	Before  int    `json:"before"`
	After   int    `json:"after"`
}

// Trace captures the internals of one learning step for observability.
type Trace struct {
	StateKey                string         `json:"state_key"`
	PrevQ                   float64        `json:"prev_q"`
	NewQ                    float64        `json:"new_q"`
	DeltaQ                  float64        `json:"delta_q"`
	SenderActionCountBefore int            `json:"sender_action_count_before"`
	SenderActionCountAfter  int            `json:"sender_action_count_after"`
	UpdatedKeywords         []KeywordDelta `json:"updated_keywords"`
	Intent                  string         `json:"intent"`
	UrgencyScore            float64        `json:"urgency_score"`
}

// FeedbackEntry is one append-only record of a feedback event. Immutable once
// appended; used for statistics and audit, never replayed.
type FeedbackEntry struct {
	Timestamp       string  `json:"timestamp"`
	Sender          string  `json:"sender"`
	Subject         string  `json:"subject"`
	PredictedAction string  `json:"predicted_action"`
	UserFeedback    string  `json:"user_feedback"`
	CorrectAction   string  `json:"correct_action"`
	Reward          float64 `json:"reward"`
	Confidence      float64 `json:"confidence"`
	Trace           Trace   `json:"trace"`
}

// Memory is the durable state of the agent: the value table plus the
// sender/keyword/topic memories and the feedback log.
type Memory struct {
	QTable          map[string]map[string]float64 `json:"q_table"`
	SenderMemory    map[string]*SenderRecord      `json:"sender_memory"`
	KeywordMemory   map[string]*KeywordRecord     `json:"keyword_memory"`
	TopicMemory     map[string]*TopicRecord       `json:"topic_memory"`
	FeedbackHistory []FeedbackEntry               `json:"feedback_history"`
}

// NewMemory returns an empty, fully initialized Memory.
func NewMemory() *Memory {
	return &Memory{
		QTable:          make(map[string]map[string]float64),
		SenderMemory:    make(map[string]*SenderRecord),
		KeywordMemory:   make(map[string]*KeywordRecord),
		TopicMemory:     make(map[string]*TopicRecord),
		FeedbackHistory: []FeedbackEntry{},
	}
}

// Prediction is the result of one classification call.
type Prediction struct {
	Action      string        `json:"action"`
	Confidence  float64       `json:"confidence"`
	Explanation string        `json:"explanation"`
	State       *FeatureState `json:"state"`
	Keywords    []string      `json:"keywords"`
}

// Store is the durable persistence collaborator for agent memory. Load
// failures degrade to an empty Memory; Save failures degrade to
// in-memory-only operation for that call.
type Store interface {
	Load() (*Memory, error)
	Save(*Memory) error
}

// Statistics is the dashboard snapshot of agent performance.
type Statistics struct {
	TotalFeedback     int                 `json:"total_feedback"`
	ApprovalRate      float64             `json:"approval_rate"`
	AvgConfidence     float64             `json:"avg_confidence"`
	TopActions        []CountedItem       `json:"top_actions"`
	TopSenders        []CountedItem       `json:"top_senders"`
	RecentPerformance []PerformancePoint  `json:"recent_performance"`
}

// CountedItem is a label with an occurrence count, ordered most-common first.
type CountedItem struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PerformancePoint is one recent feedback outcome.
type PerformancePoint struct {
	Timestamp  string  `json:"timestamp"`
	Reward     float64 `json:"reward"`
	Confidence float64 `json:"confidence"`
}
