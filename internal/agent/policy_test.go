package agent

import (
	"strings"
	"testing"
)

func TestPredictActionUrgentSupport(t *testing.T) {
	a := newTestAgent()
	pred := a.PredictAction(map[string]interface{}{
		"sender":  "customer@corp.com",
		"subject": "URGENT: checkout is broken!",
		"body":    "Payments fail with an error, we need a fix ASAP. Can you help?",
	})
	if pred.Action != "Reply" {
		t.Errorf("action = %q, want Reply for urgent support question", pred.Action)
	}
	if pred.Confidence < 0.5 || pred.Confidence > 0.98 {
		t.Errorf("confidence = %v, want within [0.5, 0.98]", pred.Confidence)
	}
	if !strings.Contains(pred.Explanation, "intent: support") {
		t.Errorf("explanation missing intent: %q", pred.Explanation)
	}
}

func TestPredictActionSpam(t *testing.T) {
	a := newTestAgent()
	pred := a.PredictAction(map[string]interface{}{
		"sender":  "winner@lotto.biz",
		"subject": "You WIN a free money prize",
		"body":    "Claim your lottery million now, wire transfer available",
	})
	if pred.Action != "Spam" {
		t.Errorf("action = %q, want Spam", pred.Action)
	}
}

func TestPredictActionNewsletter(t *testing.T) {
	a := newTestAgent()
	pred := a.PredictAction(map[string]interface{}{
		"sender":  "news@vendor.com",
		"subject": "Weekly newsletter digest",
		"body":    "Here is this week's blog roundup and release notes.",
	})
	if pred.Action != "Archive" {
		t.Errorf("action = %q, want Archive for newsletter", pred.Action)
	}
}

func TestPredictActionSenderBias(t *testing.T) {
	a := newTestAgent()
	// Sender has more than 5 prior emails, all archived. On an otherwise
	// neutral message the +0.5 sender bias must dominate.
	a.memory.SenderMemory["colleague@corp.com"] = &SenderRecord{
		ActionCounts: map[string]int{"Archive": 6},
		TotalEmails:  6,
	}
	pred := a.PredictAction(map[string]interface{}{
		"sender":  "colleague@corp.com",
		"subject": "notes",
		"body":    "see attached document",
	})
	if pred.Action != "Archive" {
		t.Errorf("action = %q, want Archive from sender history", pred.Action)
	}
	if !strings.Contains(pred.Explanation, "Sender pattern") {
		t.Errorf("explanation missing sender pattern: %q", pred.Explanation)
	}
}

func TestPredictActionSenderBiasConfidenceBonus(t *testing.T) {
	a := newTestAgent()
	raw := map[string]interface{}{
		"sender":  "colleague@corp.com",
		"subject": "notes",
		"body":    "see attached document",
	}
	baseline := a.PredictAction(raw)

	a.memory.SenderMemory["colleague@corp.com"] = &SenderRecord{
		ActionCounts: map[string]int{baseline.Action: 6},
		TotalEmails:  6,
	}
	biased := a.PredictAction(raw)
	if biased.Action != baseline.Action {
		t.Fatalf("sender history for %q changed action to %q", baseline.Action, biased.Action)
	}
	// +0.3 bias bonus and +0.25 frequency term (6/6 * 0.25) saturate the cap
	if biased.Confidence <= baseline.Confidence {
		t.Errorf("confidence %v did not grow from baseline %v", biased.Confidence, baseline.Confidence)
	}
	if biased.Confidence != 0.98 {
		t.Errorf("confidence = %v, want clamped at 0.98", biased.Confidence)
	}
}

func TestConfidenceClamp(t *testing.T) {
	a := newTestAgent()
	state := &FeatureState{
		Sender:       "x@y.com",
		UrgencyScore: 0.9,
		HasQuestion:  true,
		Intent:       "support",
	}
	a.memory.SenderMemory["x@y.com"] = &SenderRecord{
		ActionCounts: map[string]int{"Reply": 100},
		TotalEmails:  100,
	}
	keywords := map[string]bool{"alpha": true, "beta": true, "gamma": true}
	for kw := range keywords {
		a.memory.KeywordMemory[kw] = &KeywordRecord{ActionCounts: map[string]int{"Reply": 1}}
	}
	c := a.calculateConfidence(state, "Reply", keywords, 0.3)
	if c > 0.98 {
		t.Errorf("confidence = %v, want clamped at 0.98", c)
	}
	if c != 0.98 {
		t.Errorf("confidence = %v, want exactly 0.98 when saturated", c)
	}
}

func TestPredictActionDoesNotMutateMemory(t *testing.T) {
	a := newTestAgent()
	raw := map[string]interface{}{
		"sender":  "a@b.com",
		"subject": "hello",
		"body":    "just checking in",
	}
	a.PredictAction(raw)
	if len(a.memory.QTable) != 0 || len(a.memory.SenderMemory) != 0 || len(a.memory.KeywordMemory) != 0 {
		t.Error("prediction must not write to memory")
	}
}

func TestPredictActionExplorationRespected(t *testing.T) {
	a := newTestAgent()
	a.epsilon = 1.0
	seen := map[string]bool{}
	raw := map[string]interface{}{
		"sender":  "a@b.com",
		"subject": "hello",
		"body":    "just checking in",
	}
	for i := 0; i < 200; i++ {
		seen[a.PredictAction(raw).Action] = true
	}
	if len(seen) < len(actions) {
		t.Errorf("with epsilon=1.0 exploration should hit every action, got %d/%d", len(seen), len(actions))
	}
}
