package summarizer

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"inboxpilot/internal/config"
)

func newTestSummarizer(t *testing.T) *Summarizer {
	t.Helper()
	dir := t.TempDir()
	s := New(config.SummarizerConfig{
		ContextFile:         filepath.Join(dir, "message_context.json"),
		LearningFile:        filepath.Join(dir, "summarizer_learning.json"),
		MaxContextMessages:  3,
		ConfidenceThreshold: 0.6,
	})
	s.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSummarizeUrgentReschedule(t *testing.T) {
	s := newTestSummarizer(t)
	res := s.Summarize(Message{
		UserID:      "bob_friend",
		Platform:    "whatsapp",
		MessageText: "URGENT: please reschedule the demo to tomorrow 9am!!",
		Timestamp:   "2025-06-02T11:30:00Z",
	}, true)

	if res.Urgency != "critical" {
		t.Errorf("urgency = %q, want critical", res.Urgency)
	}
	if res.Type != "urgent" {
		t.Errorf("type = %q, want urgent", res.Type)
	}
	if !strings.HasPrefix(res.Summary, "Urgent:") {
		t.Errorf("summary = %q, want Urgent: prefix", res.Summary)
	}
	if got := len([]rune(res.Summary)); got > 50 {
		t.Errorf("summary length = %d, exceeds whatsapp limit 50", got)
	}
	if res.Confidence <= 0 || res.Confidence > 1 {
		t.Errorf("confidence = %v out of range", res.Confidence)
	}
}

func TestSummarizeQuestion(t *testing.T) {
	s := newTestSummarizer(t)
	res := s.Summarize(Message{
		UserID:      "alice_work",
		Platform:    "email",
		MessageText: "Hey, did the report get done?",
	}, false)

	if res.Intent != "question" {
		t.Errorf("intent = %q, want question", res.Intent)
	}
	if res.Type != "inquiry" {
		t.Errorf("type = %q, want inquiry", res.Type)
	}
	if !strings.HasPrefix(res.Summary, "Question:") {
		t.Errorf("summary = %q, want Question: prefix", res.Summary)
	}
	if !strings.Contains(res.Summary, "report") {
		t.Errorf("summary = %q, lost the subject of the question", res.Summary)
	}
	if strings.Contains(res.Summary, "Hey") {
		t.Errorf("greeting not stripped: %q", res.Summary)
	}
}

func TestSummarizeFollowUpWithContext(t *testing.T) {
	s := newTestSummarizer(t)
	first := s.Summarize(Message{
		UserID:      "alice_work",
		Platform:    "email",
		MessageText: "I will send the quarterly report tonight after the meeting.",
		Timestamp:   "2025-06-02T09:00:00Z",
	}, true)
	if first.ContextUsed {
		t.Error("first message must not see any context")
	}

	second := s.Summarize(Message{
		UserID:      "alice_work",
		Platform:    "email",
		MessageText: "Any update on the report status? still waiting",
		Timestamp:   "2025-06-02T16:45:00Z",
	}, true)
	if !second.ContextUsed {
		t.Error("second message should use stored context")
	}
	if second.Intent != "follow_up" {
		t.Errorf("intent = %q, want follow_up", second.Intent)
	}
	if second.Type != "follow-up" {
		t.Errorf("type = %q, want follow-up", second.Type)
	}
	if len(second.Metadata.ContextInsights) == 0 {
		t.Error("expected context insights for a follow-up")
	}
}

func TestSummarizeSocialInvite(t *testing.T) {
	s := newTestSummarizer(t)
	res := s.Summarize(Message{
		UserID:      "friend",
		Platform:    "whatsapp",
		MessageText: "Anyone interested to join? We could go to the mall and watch the latest movie",
	}, false)

	if res.Intent != "social" {
		t.Errorf("intent = %q, want social", res.Intent)
	}
	if !strings.Contains(res.Summary, "Invite:") {
		t.Errorf("summary = %q, want prebuilt invite", res.Summary)
	}
	if !strings.Contains(res.Summary, "mall shopping") || !strings.Contains(res.Summary, "latest movie") {
		t.Errorf("summary = %q, want both activities", res.Summary)
	}
}

func TestSummarizePlatformLengthLimits(t *testing.T) {
	s := newTestSummarizer(t)
	long := "The engineering review for the infrastructure migration project needs detailed preparation covering networking, storage, rollback procedures and the final cutover checklist before Friday"
	for platform, limit := range map[string]int{"instagram": 40, "whatsapp": 50, "discord": 60, "slack": 75, "teams": 80, "email": 100} {
		res := s.Summarize(Message{UserID: "u", Platform: platform, MessageText: long}, false)
		if got := len([]rune(res.Summary)); got > limit {
			t.Errorf("%s summary length = %d, exceeds limit %d: %q", platform, got, limit, res.Summary)
		}
	}
}

func TestSummarizeUnknownPlatformFallsBackToEmail(t *testing.T) {
	s := newTestSummarizer(t)
	res := s.Summarize(Message{UserID: "u", Platform: "carrier-pigeon", MessageText: "quick note about the invoice"}, false)
	if got := len([]rune(res.Summary)); got > 100 {
		t.Errorf("summary length = %d, want email fallback limit 100", got)
	}
	if !res.PlatformOptimized {
		t.Error("result should be marked platform optimized")
	}
}

func TestContextPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	cfg := config.SummarizerConfig{
		ContextFile:         filepath.Join(dir, "ctx.json"),
		LearningFile:        filepath.Join(dir, "learn.json"),
		MaxContextMessages:  3,
		ConfidenceThreshold: 0.6,
	}
	s1 := New(cfg)
	s1.Summarize(Message{
		UserID:      "alice",
		Platform:    "slack",
		MessageText: "shipping the fix today",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}, true)

	// A fresh instance reloads the stored conversation from disk; the
	// 30-day cleanup must keep a message written just now.
	s2 := New(cfg)
	ctx := s2.GetUserContext("alice", "slack")
	if len(ctx) != 1 || ctx[0].MessageText != "shipping the fix today" {
		t.Errorf("context not persisted: %+v", ctx)
	}
}

func TestContextWindowCap(t *testing.T) {
	s := newTestSummarizer(t)
	for i := 0; i < 10; i++ {
		s.Summarize(Message{
			UserID:      "alice",
			Platform:    "slack",
			MessageText: "message number update",
			Timestamp:   "2025-06-02T10:00:00Z",
		}, true)
	}
	if got := len(s.context.Conversations["alice_slack"]); got != 6 {
		t.Errorf("stored context = %d messages, want capped at 2x window (6)", got)
	}
	if got := len(s.GetUserContext("alice", "slack")); got != 3 {
		t.Errorf("extracted context = %d messages, want window of 3", got)
	}
}

func TestReceiveFeedbackAdjustsTermWeights(t *testing.T) {
	s := newTestSummarizer(t)
	s.ReceiveFeedback("sum-1", "upvote", "good catch", "deadline review friday")
	if w := s.termWeights["deadline"]; w != 0.2 {
		t.Errorf("weight for 'deadline' = %v, want 0.2", w)
	}
	if w := s.termWeights["good"]; w != 0.05 {
		t.Errorf("comment weight for 'good' = %v, want 0.05", w)
	}

	s.ReceiveFeedback("sum-2", "downvote", "", "deadline noise")
	if w := s.termWeights["deadline"]; w != 0.0 {
		t.Errorf("weight for 'deadline' after downvote = %v, want 0.0", w)
	}

	stats := s.GetPerformanceStats()
	if stats.TotalFeedback != 2 {
		t.Errorf("total feedback = %d, want 2", stats.TotalFeedback)
	}
	if stats.ApprovalRate != 0.5 {
		t.Errorf("approval rate = %v, want 0.5", stats.ApprovalRate)
	}
}

func TestTermWeightsInfluenceSentenceChoice(t *testing.T) {
	s := newTestSummarizer(t)
	text := "The weather was nice yesterday evening. Deploy pipeline migration finished successfully."
	baseline := s.generateSummary(text, "email", "informational", "low", nil)

	s.termWeights["weather"] = 25
	s.termWeights["yesterday"] = 25
	biased := s.generateSummary(text, "email", "informational", "low", nil)
	if baseline == biased {
		t.Errorf("term weights had no effect: %q", biased)
	}
	if !strings.Contains(strings.ToLower(biased), "weather") {
		t.Errorf("biased summary = %q, want weather sentence selected", biased)
	}
}

func TestGetStats(t *testing.T) {
	s := newTestSummarizer(t)
	s.Summarize(Message{UserID: "a", Platform: "email", MessageText: "status update on the project?"}, true)
	s.Summarize(Message{UserID: "a", Platform: "email", MessageText: "any progress on the project status?"}, true)
	s.Summarize(Message{UserID: "b", Platform: "slack", MessageText: "thanks, great work"}, true)

	stats := s.GetStats()
	if stats.Processed != 3 {
		t.Errorf("processed = %d, want 3", stats.Processed)
	}
	if stats.UniqueUsers != 2 {
		t.Errorf("unique users = %d, want 2", stats.UniqueUsers)
	}
	if stats.ContextUsed != 1 {
		t.Errorf("context used = %d, want 1 (second message for user a)", stats.ContextUsed)
	}
	if stats.Platforms["email"] != 2 || stats.Platforms["slack"] != 1 {
		t.Errorf("platform counts = %v", stats.Platforms)
	}

	s.ResetStats()
	if s.GetStats().Processed != 0 {
		t.Error("stats not reset")
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First point. Second point! Third point? trailing")
	want := []string{"First point.", "Second point!", "Third point?", "trailing"}
	if len(got) != len(want) {
		t.Fatalf("got %d sentences %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d = %q, want %q", i, got[i], want[i])
		}
	}
	if out := splitSentences("no terminal punctuation"); len(out) != 1 {
		t.Errorf("unterminated text should be one sentence, got %v", out)
	}
}

func TestTruncateAtClause(t *testing.T) {
	in := "Schedule the review session, and bring the migration notes plus the rollout checklist"
	out := truncateAtClause(in, 40)
	if len([]rune(out)) > 40 {
		t.Errorf("truncated length = %d, want <= 40", len([]rune(out)))
	}
	if out != "Schedule the review session" {
		t.Errorf("truncation = %q, want clean clause cut", out)
	}

	hard := truncateAtClause("averyverylongsummarywithoutanyclauseboundarywhatsoever", 20)
	if len([]rune(hard)) > 20 {
		t.Errorf("hard cut length = %d, want <= 20", len([]rune(hard)))
	}
	if !strings.HasSuffix(hard, "...") {
		t.Errorf("hard cut = %q, want ellipsis", hard)
	}
}
