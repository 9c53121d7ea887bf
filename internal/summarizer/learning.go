package summarizer

import (
	"encoding/json"
	"log"
	"math"
	"os"
	"strings"
	"time"
)

func (s *Summarizer) loadLearning() learningData {
	data := learningData{
		FeedbackHistory:    []FeedbackRecord{},
		PerformanceMetrics: make(map[string]float64),
		TermWeights:        make(map[string]float64),
		LastUpdated:        s.now().Format(time.RFC3339),
	}
	raw, err := os.ReadFile(s.learningFile)
	if os.IsNotExist(err) {
		return data
	}
	if err != nil {
		log.Printf("[Summarizer] WARNING: failed to read learning file: %v", err)
		return data
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("[Summarizer] WARNING: failed to parse learning file: %v", err)
		return learningData{
			FeedbackHistory:    []FeedbackRecord{},
			PerformanceMetrics: make(map[string]float64),
			TermWeights:        make(map[string]float64),
			LastUpdated:        s.now().Format(time.RFC3339),
		}
	}
	if data.FeedbackHistory == nil {
		data.FeedbackHistory = []FeedbackRecord{}
	}
	if data.PerformanceMetrics == nil {
		data.PerformanceMetrics = make(map[string]float64)
	}
	if data.TermWeights == nil {
		data.TermWeights = make(map[string]float64)
	}
	return data
}

func (s *Summarizer) saveLearning() {
	s.learning.TermWeights = s.termWeights
	s.learning.LastUpdated = s.now().Format(time.RFC3339)
	raw, err := json.MarshalIndent(s.learning, "", "  ")
	if err != nil {
		log.Printf("[Summarizer] WARNING: failed to encode learning data: %v", err)
		return
	}
	if err := os.WriteFile(s.learningFile, raw, 0o644); err != nil {
		log.Printf("[Summarizer] WARNING: failed to save learning data: %v", err)
	}
}

// ReceiveFeedback records an upvote/downvote for a produced summary and
// nudges the term weights: summary words move by 0.2, comment words by 0.05,
// in the direction of the vote.
func (s *Summarizer) ReceiveFeedback(summaryID, feedback, comment, summaryText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := FeedbackRecord{
		SummaryID:   summaryID,
		Feedback:    feedback,
		Comment:     comment,
		SummaryText: summaryText,
		Timestamp:   s.now().Format(time.RFC3339),
	}
	s.learning.FeedbackHistory = append(s.learning.FeedbackHistory, entry)
	if len(s.learning.FeedbackHistory) > 200 {
		s.learning.FeedbackHistory = s.learning.FeedbackHistory[len(s.learning.FeedbackHistory)-200:]
	}

	approvals := 0
	for _, e := range s.learning.FeedbackHistory {
		if e.Feedback == "upvote" {
			approvals++
		}
	}
	s.learning.PerformanceMetrics["approval_rate"] = float64(approvals) / float64(len(s.learning.FeedbackHistory))

	summaryDelta, commentDelta := 0.2, 0.05
	if feedback != "upvote" {
		summaryDelta, commentDelta = -0.2, -0.05
	}
	if summaryText != "" {
		s.adjustTerms(summaryText, summaryDelta)
	}
	if comment != "" {
		s.adjustTerms(comment, commentDelta)
	}

	s.saveLearning()
	log.Printf("[Summarizer] Feedback received for %s: %s", summaryID, feedback)
}

func (s *Summarizer) adjustTerms(text string, delta float64) {
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if len(w) < 3 {
			continue
		}
		s.termWeights[w] = math.Round((s.termWeights[w]+delta)*10000) / 10000
	}
}

// GetPerformanceStats returns the learning snapshot.
func (s *Summarizer) GetPerformanceStats() *PerformanceStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.learning.FeedbackHistory
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	out := make([]FeedbackRecord, len(recent))
	copy(out, recent)

	intentKeywords := 0
	for _, patterns := range intentPatterns {
		intentKeywords += len(patterns)
	}

	return &PerformanceStats{
		TotalFeedback:  len(s.learning.FeedbackHistory),
		ApprovalRate:   s.learning.PerformanceMetrics["approval_rate"],
		RecentFeedback: out,
		LastUpdated:    s.now().Format(time.RFC3339),
		Metrics: SummarizerMetrics{
			IntentKeywordsCount:   intentKeywords,
			UrgencyPatternsCount:  len(urgencyIndicators),
			PlatformPatternsCount: len(platformConfigs),
			LearningTerms:         len(s.termWeights),
		},
	}
}
