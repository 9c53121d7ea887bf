package agent

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// PredictAction classifies a raw payload and selects a triage action with an
// epsilon-greedy policy shaped by heuristic and sender-history biases. The
// call is a pure read of agent memory; nothing is mutated.
func (a *Agent) PredictAction(raw map[string]interface{}) *Prediction {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, keywords := a.ExtractFeatures(raw)
	stateKey := StateKey(state)
	sender := state.Sender

	// Sender memory bias
	senderBiasAction := ""
	senderBiasBonus := 0.0
	if rec, ok := a.memory.SenderMemory[sender]; ok && rec.TotalEmails > 5 {
		if act, count := mostCommonAction(rec); count > 0 {
			senderBiasAction = act
			senderBiasBonus = 0.3
		}
	}

	var action string
	if a.rng.Float64() < a.epsilon {
		// Exploration: uniform random pick
		action = actions[a.rng.Intn(len(actions))]
	} else {
		qValues := make(map[string]float64, len(actions))
		for _, act := range actions {
			qValues[act] = a.qValue(stateKey, act)
		}

		bias := make(map[string]float64, len(actions))

		// Urgency
		if state.UrgencyScore >= 0.6 {
			bias["Reply"] += 0.4
			bias["Mark Important"] += 0.3
		} else if state.UrgencyScore >= 0.35 {
			bias["Reply"] += 0.2
		}

		// Intent-specific nudges
		switch state.Intent {
		case "support":
			bias["Reply"] += 0.3
		case "billing":
			bias["Reply"] += 0.2
			bias["Mark Important"] += 0.2
		case "meeting":
			bias["Reply"] += 0.2
		case "newsletter":
			bias["Archive"] += 0.3
		case "spam":
			bias["Spam"] += 0.6
			bias["Delete"] += 0.2
		}

		// Questions often require a reply
		if state.HasQuestion {
			bias["Reply"] += 0.25
		}

		// Sender bias
		if senderBiasAction != "" {
			bias[senderBiasAction] += 0.5
		}

		for _, act := range actions {
			qValues[act] += bias[act]
		}

		// Argmax in declared action order, first maximum wins
		action = actions[0]
		best := qValues[action]
		for _, act := range actions[1:] {
			if qValues[act] > best {
				action = act
				best = qValues[act]
			}
		}
	}

	confidence := a.calculateConfidence(state, action, keywords, senderBiasBonus)
	explanation := a.generateExplanation(state, action, keywords, sender)

	return &Prediction{
		Action:      action,
		Confidence:  confidence,
		Explanation: explanation,
		State:       state,
		Keywords:    sortedKeywords(keywords),
	}
}

// calculateConfidence scores how sure the agent is about an action, clamped
// to [0.01, 0.98].
func (a *Agent) calculateConfidence(state *FeatureState, action string, keywords map[string]bool, confidenceBonus float64) float64 {
	baseConfidence := 0.5

	// Sender-based confidence
	if rec, ok := a.memory.SenderMemory[state.Sender]; ok && rec.TotalEmails > 0 {
		actionFrequency := float64(rec.ActionCounts[action]) / math.Max(1, float64(rec.TotalEmails))
		baseConfidence += actionFrequency * 0.25
	}

	// Keyword-based confidence
	keywordConfidence := 0.0
	for kw := range keywords {
		if rec, ok := a.memory.KeywordMemory[kw]; ok && rec.ActionCounts[action] > 0 {
			keywordConfidence += 0.05
		}
	}

	// State-based confidence
	if state.UrgencyScore >= 0.6 && (action == "Reply" || action == "Mark Important") {
		baseConfidence += 0.2
	}
	if state.HasQuestion && action == "Reply" {
		baseConfidence += 0.2
	}
	if state.Intent == "spam" && (action == "Spam" || action == "Delete") {
		baseConfidence += 0.15
	}
	if state.Intent == "newsletter" && action == "Archive" {
		baseConfidence += 0.1
	}

	final := math.Min(0.98, baseConfidence+keywordConfidence+confidenceBonus)
	return round3(math.Max(0.01, final))
}

// generateExplanation builds a human-readable rationale for the action.
func (a *Agent) generateExplanation(state *FeatureState, action string, keywords map[string]bool, sender string) string {
	var explanations []string

	if rec, ok := a.memory.SenderMemory[sender]; ok && rec.TotalEmails > 3 {
		if act, count := mostCommonAction(rec); act == action && count > 0 {
			explanations = append(explanations, fmt.Sprintf("Sender pattern: previously %dx '%s'", count, action))
		}
	}

	if state.UrgencyScore >= 0.6 {
		explanations = append(explanations, "High urgency signals detected")
	} else if state.UrgencyScore >= 0.35 {
		explanations = append(explanations, "Moderate urgency signals detected")
	}
	if state.HasDeadline {
		explanations = append(explanations, "Contains a deadline/time expression")
	}
	if state.HasQuestion {
		explanations = append(explanations, "Contains a question")
	}
	if state.SubjectLength > 50 {
		explanations = append(explanations, "Long subject suggests detailed content")
	}

	explanations = append(explanations, fmt.Sprintf("Detected intent: %s", state.Intent))

	var relevant []string
	for kw := range keywords {
		if _, ok := a.memory.KeywordMemory[kw]; ok {
			relevant = append(relevant, kw)
		}
	}
	if len(relevant) > 0 {
		sort.Strings(relevant)
		if len(relevant) > 3 {
			relevant = relevant[:3]
		}
		explanations = append(explanations, fmt.Sprintf("Known keywords: %s", strings.Join(relevant, ", ")))
	}

	return strings.Join(explanations, "; ")
}
