package agent

import (
	"fmt"
	"time"
)

// feedbackAliases maps accepted feedback spellings to their normalized form.
// Anything unrecognized is treated as neutral.
var feedbackAliases = map[string]string{
	"approve":     "approve",
	"up":          "approve",
	"\U0001F44D":  "approve",
	"thumbs_up":   "approve",
	"true":        "approve",
	"reject":      "reject",
	"down":        "reject",
	"\U0001F44E":  "reject",
	"thumbs_down": "reject",
	"false":       "reject",
}

func normalizeFeedback(userFeedback string) string {
	if v, ok := feedbackAliases[userFeedback]; ok {
		return v
	}
	return "neutral"
}

func validAction(action string) bool {
	for _, act := range actions {
		if act == action {
			return true
		}
	}
	return false
}

// ReceiveFeedback applies one learning step: a single-step bootstrapped
// update to the value table (old value of the predicted action plus the max
// over the same state as the future term, not textbook SARSA or Q-learning),
// then the sender and keyword memory increments against the final action.
// The full memory is flushed synchronously before returning.
func (a *Agent) ReceiveFeedback(raw map[string]interface{}, predictedAction, userFeedback, correctAction string) (*FeedbackEntry, error) {
	if !validAction(predictedAction) {
		return nil, fmt.Errorf("unknown action %q", predictedAction)
	}
	if correctAction != "" && !validAction(correctAction) {
		return nil, fmt.Errorf("unknown correct action %q", correctAction)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	normalized := normalizeFeedback(userFeedback)

	state, keywords := a.ExtractFeatures(raw)
	stateKey := StateKey(state)
	sender := state.Sender

	var reward float64
	finalAction := predictedAction
	switch normalized {
	case "approve":
		reward = 2.0
	case "reject":
		reward = -2.0
		if correctAction != "" {
			finalAction = correctAction
		}
	default:
		reward = 0.0
	}

	// Value table update: always against the predicted action
	prevQ := a.qValue(stateKey, predictedAction)
	maxFutureQ := a.qValue(stateKey, actions[0])
	for _, act := range actions[1:] {
		if q := a.qValue(stateKey, act); q > maxFutureQ {
			maxFutureQ = q
		}
	}
	newQ := prevQ + a.learningRate*(reward+a.discountFactor*maxFutureQ-prevQ)
	a.setQValue(stateKey, predictedAction, newQ)

	// Sender memory: always against the final action
	senderRec := a.sender(sender)
	beforeSenderCount := senderRec.ActionCounts[finalAction]
	senderRec.ActionCounts[finalAction]++
	senderRec.TotalEmails++
	senderRec.LastInteraction = a.now().Format(time.RFC3339)
	afterSenderCount := senderRec.ActionCounts[finalAction]

	// Keyword memory: every keyword from the original message
	var updatedKeywords []KeywordDelta
	for _, kw := range sortedKeywords(keywords) {
		rec := a.keyword(kw)
		before := rec.ActionCounts[finalAction]
		rec.ActionCounts[finalAction]++
		rec.ConfidenceScores = append(rec.ConfidenceScores, reward)
		updatedKeywords = append(updatedKeywords, KeywordDelta{Keyword: kw, Before: before, After: before + 1})
	}

	entry := FeedbackEntry{
		Timestamp:       a.now().Format(time.RFC3339),
		Sender:          sender,
		Subject:         firstString(raw, "subject", "title"),
		PredictedAction: predictedAction,
		UserFeedback:    normalized,
		CorrectAction:   finalAction,
		Reward:          reward,
		Confidence:      a.calculateConfidence(state, predictedAction, keywords, 0.0),
		Trace: Trace{
			StateKey:                stateKey,
			PrevQ:                   round4(prevQ),
			NewQ:                    round4(newQ),
			DeltaQ:                  round4(newQ - prevQ),
			SenderActionCountBefore: beforeSenderCount,
			SenderActionCountAfter:  afterSenderCount,
			UpdatedKeywords:         updatedKeywords,
			Intent:                  state.Intent,
			UrgencyScore:            state.UrgencyScore,
		},
	}
	a.memory.FeedbackHistory = append(a.memory.FeedbackHistory, entry)
	if a.maxFeedbackHistory > 0 && len(a.memory.FeedbackHistory) > a.maxFeedbackHistory {
		a.memory.FeedbackHistory = a.memory.FeedbackHistory[len(a.memory.FeedbackHistory)-a.maxFeedbackHistory:]
	}

	a.saveMemory()

	return &entry, nil
}

// ImprovementTrace returns the last N feedback entries with traces.
func (a *Agent) ImprovementTrace(limit int) []FeedbackEntry {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	history := a.memory.FeedbackHistory
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	out := make([]FeedbackEntry, len(history))
	copy(out, history)
	return out
}
