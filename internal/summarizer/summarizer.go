// Package summarizer is the context-aware, platform-agnostic message
// summarizer: extractive summaries shaped per platform, with intent and
// urgency heuristics and a feedback-driven term-weight learning loop.
package summarizer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"inboxpilot/internal/config"
)

// Summarizer holds the conversation context store, the learning store, and
// running statistics. One instance is shared across requests; the mutex
// serializes all operations.
type Summarizer struct {
	mu sync.Mutex

	contextFile         string
	learningFile        string
	maxContextMessages  int
	confidenceThreshold float64

	context     contextData
	learning    learningData
	termWeights map[string]float64

	processed     int
	contextHits   int
	platformCount map[string]int
	intentCount   map[string]int
	urgencyCount  map[string]int
	uniqueUsers   map[string]bool

	now func() time.Time
}

func New(cfg config.SummarizerConfig) *Summarizer {
	s := &Summarizer{
		contextFile:         cfg.ContextFile,
		learningFile:        cfg.LearningFile,
		maxContextMessages:  cfg.MaxContextMessages,
		confidenceThreshold: cfg.ConfidenceThreshold,
		platformCount:       make(map[string]int),
		intentCount:         make(map[string]int),
		urgencyCount:        make(map[string]int),
		uniqueUsers:         make(map[string]bool),
		now:                 time.Now,
	}
	s.context = s.loadContext()
	s.learning = s.loadLearning()
	s.termWeights = s.learning.TermWeights
	return s
}

func (s *Summarizer) loadContext() contextData {
	data := contextData{
		Conversations: make(map[string][]ContextMessage),
		UserProfiles:  make(map[string]map[string]interface{}),
	}
	raw, err := os.ReadFile(s.contextFile)
	if os.IsNotExist(err) {
		return data
	}
	if err != nil {
		log.Printf("[Summarizer] WARNING: failed to read context file: %v", err)
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("[Summarizer] WARNING: failed to parse context file: %v", err)
		return contextData{
			Conversations: make(map[string][]ContextMessage),
			UserProfiles:  make(map[string]map[string]interface{}),
		}
	}
	if data.Conversations == nil {
		data.Conversations = make(map[string][]ContextMessage)
	}
	if data.UserProfiles == nil {
		data.UserProfiles = make(map[string]map[string]interface{})
	}
	s.cleanupOldContext(&data)
	return data
}

func (s *Summarizer) saveContext() {
	raw, err := json.MarshalIndent(s.context, "", "  ")
	if err != nil {
		log.Printf("[Summarizer] WARNING: failed to encode context: %v", err)
		return
	}
	if err := os.WriteFile(s.contextFile, raw, 0o644); err != nil {
		log.Printf("[Summarizer] WARNING: failed to save context: %v", err)
	}
}

// cleanupOldContext drops stored messages older than 30 days.
func (s *Summarizer) cleanupOldContext(data *contextData) {
	cutoff := s.now().Add(-30 * 24 * time.Hour)
	for key, messages := range data.Conversations {
		kept := messages[:0]
		for _, m := range messages {
			ts, err := time.Parse(time.RFC3339, m.Timestamp)
			if err != nil || ts.After(cutoff) {
				kept = append(kept, m)
			}
		}
		data.Conversations[key] = kept
	}
}

func contextKey(userID, platform string) string {
	return fmt.Sprintf("%s_%s", userID, platform)
}

// extractContext returns the last few stored messages for a user-platform
// pair. Caller holds the mutex.
func (s *Summarizer) extractContext(userID, platform string) []ContextMessage {
	messages := s.context.Conversations[contextKey(userID, platform)]
	if len(messages) > s.maxContextMessages {
		messages = messages[len(messages)-s.maxContextMessages:]
	}
	return messages
}

func (s *Summarizer) storeMessageContext(msg Message) {
	key := contextKey(orDefault(msg.UserID, "unknown"), orDefault(msg.Platform, "unknown"))

	entry := ContextMessage{
		MessageText: msg.MessageText,
		Timestamp:   msg.Timestamp,
		MessageID:   msg.MessageID,
	}
	if entry.Timestamp == "" {
		entry.Timestamp = s.now().Format(time.RFC3339)
	}
	if entry.MessageID == "" {
		entry.MessageID = fmt.Sprintf("msg_%d", s.now().UnixNano())
	}

	s.context.Conversations[key] = append(s.context.Conversations[key], entry)
	if limit := s.maxContextMessages * 2; len(s.context.Conversations[key]) > limit {
		s.context.Conversations[key] = s.context.Conversations[key][len(s.context.Conversations[key])-limit:]
	}
	s.saveContext()
}

// Summarize analyzes one message and produces its platform-shaped summary.
// The message is stored into the conversation context afterwards, so the
// current message never influences its own context signals.
func (s *Summarizer) Summarize(msg Message, useContext bool) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := orDefault(msg.UserID, "unknown")
	platform := orDefault(msg.Platform, "unknown")
	timestamp := msg.Timestamp
	if timestamp == "" {
		timestamp = s.now().Format(time.RFC3339)
	}

	var context []ContextMessage
	contextUsed := false
	if useContext {
		context = s.extractContext(userID, platform)
		contextUsed = len(context) > 0
		if contextUsed {
			s.contextHits++
		}
	}

	intent, intentConfidence := s.classifyIntent(msg.MessageText, context)
	urgency, urgencyConfidence := s.analyzeUrgency(msg.MessageText, context)
	insights := s.analyzeContext(msg.MessageText, context)
	summary := s.generateSummary(msg.MessageText, platform, intent, urgency, insights)
	messageType := determineMessageType(intent, urgency)
	confidence := (intentConfidence + urgencyConfidence) / 2

	reasoning := []string{
		fmt.Sprintf("Classified as '%s' intent based on message patterns and cues", intent),
		fmt.Sprintf("Urgency level: '%s' based on keywords, punctuation, ALL-CAPS, and time proximity", urgency),
		fmt.Sprintf("Platform-optimized for %s", platform),
	}
	if contextUsed {
		reasoning = append(reasoning, fmt.Sprintf("Used conversation context (%d insights)", len(insights)))
		for i, insight := range insights {
			if i >= 2 {
				break
			}
			reasoning = append(reasoning, "Context: "+insight)
		}
	} else {
		reasoning = append(reasoning, "No conversation context available")
	}

	s.storeMessageContext(msg)

	s.processed++
	s.uniqueUsers[userID] = true
	s.platformCount[platform]++
	s.intentCount[intent]++
	s.urgencyCount[urgency]++

	log.Printf("[Summarizer] Summarized message for %s on %s: %s", userID, platform, summary)

	return &Result{
		Summary:           summary,
		Type:              messageType,
		Intent:            intent,
		Urgency:           urgency,
		Confidence:        confidence,
		ContextUsed:       contextUsed,
		PlatformOptimized: true,
		Reasoning:         reasoning,
		Metadata: Metadata{
			IntentConfidence:    intentConfidence,
			UrgencyConfidence:   urgencyConfidence,
			ContextMessagesUsed: len(context),
			Platform:            platform,
			Timestamp:           timestamp,
			ContextInsights:     insights,
		},
	}
}

// BatchSummarize processes messages in order so earlier messages feed the
// context of later ones.
func (s *Summarizer) BatchSummarize(messages []Message, useContext bool) []*Result {
	results := make([]*Result, 0, len(messages))
	for _, msg := range messages {
		results = append(results, s.Summarize(msg, useContext))
	}
	log.Printf("[Summarizer] Batch summarized %d messages", len(messages))
	return results
}

// GetUserContext returns the stored conversation context for a user-platform
// pair.
func (s *Summarizer) GetUserContext(userID, platform string) []ContextMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	messages := s.extractContext(userID, platform)
	out := make([]ContextMessage, len(messages))
	copy(out, messages)
	return out
}

// GetStats returns the processing counters.
func (s *Summarizer) GetStats() *Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &Stats{
		Processed:           s.processed,
		ContextUsed:         s.contextHits,
		Platforms:           copyCounts(s.platformCount),
		Intents:             copyCounts(s.intentCount),
		UrgencyLevels:       copyCounts(s.urgencyCount),
		UniqueUsers:         len(s.uniqueUsers),
		TotalContextEntries: s.contextHits,
	}
	denominator := s.processed
	if denominator == 0 {
		denominator = 1
	}
	stats.ContextUsageRate = float64(s.contextHits) / float64(denominator)
	return stats
}

// ResetStats zeroes the processing counters.
func (s *Summarizer) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed = 0
	s.contextHits = 0
	s.platformCount = make(map[string]int)
	s.intentCount = make(map[string]int)
	s.urgencyCount = make(map[string]int)
	s.uniqueUsers = make(map[string]bool)
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
