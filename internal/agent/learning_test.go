package agent

import (
	"math"
	"testing"
)

func feedbackRaw() map[string]interface{} {
	return map[string]interface{}{
		"sender":  "customer@corp.com",
		"subject": "billing question",
		"body":    "was my invoice payment processed?",
	}
}

func TestReceiveFeedbackApprove(t *testing.T) {
	a := newTestAgent()
	entry, err := a.ReceiveFeedback(feedbackRaw(), "Reply", "approve", "")
	if err != nil {
		t.Fatalf("ReceiveFeedback: %v", err)
	}
	if entry.Reward != 2.0 {
		t.Errorf("reward = %v, want 2.0", entry.Reward)
	}
	if entry.CorrectAction != "Reply" {
		t.Errorf("correct action = %q, want predicted action on approve", entry.CorrectAction)
	}
	// Empty table: newQ = 0 + 0.1*(2 + 0.95*0 - 0) = 0.2
	if math.Abs(entry.Trace.NewQ-0.2) > 1e-9 {
		t.Errorf("new q = %v, want 0.2", entry.Trace.NewQ)
	}
	if got := a.qValue(entry.Trace.StateKey, "Reply"); math.Abs(got-0.2) > 1e-9 {
		t.Errorf("stored q = %v, want 0.2", got)
	}

	rec := a.memory.SenderMemory["customer@corp.com"]
	if rec == nil || rec.TotalEmails != 1 || rec.ActionCounts["Reply"] != 1 {
		t.Fatalf("sender memory not updated: %+v", rec)
	}
	if rec.LastInteraction == "" {
		t.Error("last interaction timestamp not set")
	}

	if kw := a.memory.KeywordMemory["invoice"]; kw == nil || kw.ActionCounts["Reply"] != 1 {
		t.Errorf("keyword memory for 'invoice' not updated: %+v", kw)
	}
	if len(a.memory.FeedbackHistory) != 1 {
		t.Errorf("feedback history length = %d, want 1", len(a.memory.FeedbackHistory))
	}
}

func TestReceiveFeedbackRejectWithCorrection(t *testing.T) {
	a := newTestAgent()
	entry, err := a.ReceiveFeedback(feedbackRaw(), "Delete", "reject", "Reply")
	if err != nil {
		t.Fatalf("ReceiveFeedback: %v", err)
	}
	if entry.Reward != -2.0 {
		t.Errorf("reward = %v, want -2.0", entry.Reward)
	}
	if entry.CorrectAction != "Reply" {
		t.Errorf("final action = %q, want correction", entry.CorrectAction)
	}
	// Value update targets the predicted action
	if got := a.qValue(entry.Trace.StateKey, "Delete"); math.Abs(got-(-0.2)) > 1e-9 {
		t.Errorf("q for predicted action = %v, want -0.2", got)
	}
	if got := a.qValue(entry.Trace.StateKey, "Reply"); got != 0 {
		t.Errorf("q for correction = %v, want untouched 0", got)
	}
	// Sender and keyword memory target the correction
	rec := a.memory.SenderMemory["customer@corp.com"]
	if rec.ActionCounts["Reply"] != 1 || rec.ActionCounts["Delete"] != 0 {
		t.Errorf("sender counts = %v, want correction counted", rec.ActionCounts)
	}
	if kw := a.memory.KeywordMemory["payment"]; kw == nil || kw.ActionCounts["Reply"] != 1 {
		t.Errorf("keyword memory for 'payment' = %+v, want correction counted", kw)
	}
}

func TestReceiveFeedbackNeutral(t *testing.T) {
	a := newTestAgent()
	entry, err := a.ReceiveFeedback(feedbackRaw(), "Archive", "shrug", "")
	if err != nil {
		t.Fatalf("ReceiveFeedback: %v", err)
	}
	if entry.Reward != 0 || entry.UserFeedback != "neutral" {
		t.Errorf("unrecognized feedback must be neutral with zero reward, got %q / %v", entry.UserFeedback, entry.Reward)
	}
	if got := a.qValue(entry.Trace.StateKey, "Archive"); got != 0 {
		t.Errorf("q = %v, want 0 after neutral feedback on empty table", got)
	}
	// Sender memory still counts the interaction
	if rec := a.memory.SenderMemory["customer@corp.com"]; rec == nil || rec.TotalEmails != 1 {
		t.Errorf("neutral feedback must still update sender memory: %+v", rec)
	}
}

func TestReceiveFeedbackAliases(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"approve", "approve"}, {"up", "approve"}, {"\U0001F44D", "approve"},
		{"thumbs_up", "approve"}, {"true", "approve"},
		{"reject", "reject"}, {"down", "reject"}, {"\U0001F44E", "reject"},
		{"thumbs_down", "reject"}, {"false", "reject"},
		{"meh", "neutral"}, {"", "neutral"},
	}
	for _, c := range cases {
		if got := normalizeFeedback(c.in); got != c.want {
			t.Errorf("normalizeFeedback(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestReceiveFeedbackUnknownAction(t *testing.T) {
	a := newTestAgent()
	if _, err := a.ReceiveFeedback(feedbackRaw(), "Snooze", "approve", ""); err == nil {
		t.Error("unknown predicted action must be rejected")
	}
	if _, err := a.ReceiveFeedback(feedbackRaw(), "Reply", "reject", "Snooze"); err == nil {
		t.Error("unknown correct action must be rejected")
	}
	if len(a.memory.FeedbackHistory) != 0 {
		t.Error("rejected calls must not append history")
	}
}

func TestQValueConvergesUpward(t *testing.T) {
	a := newTestAgent()
	raw := feedbackRaw()
	var prev float64
	for i := 0; i < 10; i++ {
		entry, err := a.ReceiveFeedback(raw, "Reply", "approve", "")
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if entry.Trace.NewQ <= prev {
			t.Fatalf("iteration %d: q %v did not increase from %v", i, entry.Trace.NewQ, prev)
		}
		prev = entry.Trace.NewQ
	}
	// Reject pushes the same state-action back down
	entry, err := a.ReceiveFeedback(raw, "Reply", "reject", "Archive")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if entry.Trace.DeltaQ >= 0 {
		t.Errorf("reject delta = %v, want negative", entry.Trace.DeltaQ)
	}
}

func TestFeedbackHistoryCap(t *testing.T) {
	a := newTestAgent()
	a.maxFeedbackHistory = 5
	for i := 0; i < 12; i++ {
		if _, err := a.ReceiveFeedback(feedbackRaw(), "Reply", "approve", ""); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
	}
	if len(a.memory.FeedbackHistory) != 5 {
		t.Errorf("history length = %d, want capped at 5", len(a.memory.FeedbackHistory))
	}
}

func TestGetStatistics(t *testing.T) {
	a := newTestAgent()
	empty := a.GetStatistics()
	if empty.TotalFeedback != 0 || len(empty.TopActions) != 0 {
		t.Errorf("empty stats = %+v", empty)
	}

	for i := 0; i < 3; i++ {
		if _, err := a.ReceiveFeedback(feedbackRaw(), "Reply", "approve", ""); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := a.ReceiveFeedback(feedbackRaw(), "Delete", "reject", "Archive"); err != nil {
		t.Fatal(err)
	}

	stats := a.GetStatistics()
	if stats.TotalFeedback != 4 {
		t.Errorf("total = %d, want 4", stats.TotalFeedback)
	}
	if stats.ApprovalRate != 0.75 {
		t.Errorf("approval rate = %v, want 0.75", stats.ApprovalRate)
	}
	if len(stats.TopActions) == 0 || stats.TopActions[0].Label != "Reply" || stats.TopActions[0].Count != 3 {
		t.Errorf("top actions = %+v, want Reply x3 first", stats.TopActions)
	}
	if len(stats.TopSenders) != 1 || stats.TopSenders[0].Label != "customer@corp.com" {
		t.Errorf("top senders = %+v", stats.TopSenders)
	}
	if len(stats.RecentPerformance) != 4 {
		t.Errorf("recent performance length = %d, want 4", len(stats.RecentPerformance))
	}
}

func TestImprovementTrace(t *testing.T) {
	a := newTestAgent()
	for i := 0; i < 25; i++ {
		if _, err := a.ReceiveFeedback(feedbackRaw(), "Reply", "approve", ""); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(a.ImprovementTrace(0)); got != 20 {
		t.Errorf("default trace length = %d, want 20", got)
	}
	if got := len(a.ImprovementTrace(5)); got != 5 {
		t.Errorf("trace length = %d, want 5", got)
	}
	trace := a.ImprovementTrace(5)
	if trace[4].Trace.StateKey == "" {
		t.Error("trace entries must carry a state key")
	}
}
