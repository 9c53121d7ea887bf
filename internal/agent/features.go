package agent

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

var urgencyKeywords = []string{
	"urgent", "asap", "immediately", "now", "right away", "priority", "important",
	"critical", "blocker", "p0", "p1", "high priority", "time sensitive", "rush", "expedite",
	"deadline", "overdue", "escalate", "eod", "eow", "today", "tomorrow", "tonight",
}

// intentOrder fixes the iteration order for scoring and argmax selection.
// Ties go to the earlier entry; this is the documented deterministic
// tie-break for intent classification.
var intentOrder = []string{"support", "billing", "meeting", "status", "sales", "spam", "newsletter"}

var intentKeywords = map[string][]string{
	"support": {
		"issue", "bug", "error", "help", "not working", "broken", "fail", "failing",
		"troubleshoot", "crash", "blocked", "investigate", "fix", "support", "incident",
	},
	"billing": {
		"invoice", "payment", "refund", "billing", "charge", "credit card", "paid", "receipt",
		"quote", "pricing", "cost", "renewal", "subscription", "trial",
	},
	"meeting": {
		"meeting", "schedule", "reschedule", "calendar", "call", "zoom", "teams", "invite",
		"availability", "slot", "time", "sync", "standup", "retro", "catch up",
	},
	"status": {
		"status", "update", "progress", "eta", "follow up", "follow-up", "fyi", "heads up",
		"summary", "report",
	},
	"sales": {
		"demo", "trial", "feature", "capability", "evaluation", "buy", "purchase", "order",
		"discount", "deal", "offer",
	},
	"spam": {
		"win", "lottery", "prize", "free money", "viagra", "casino", "crypto", "investment",
		"million", "billion", "wire", "inherit", "nigerian", "forex", "binary options", "pump",
	},
	"newsletter": {
		"newsletter", "digest", "update", "announcement", "release notes", "blog", "weekly",
	},
}

var deadlineRegexps = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bby\s+(?:eod|eow|tomorrow|today|tonight|monday|tuesday|wednesday|thursday|friday)\b`),
	regexp.MustCompile(`(?i)\bby\s+\d{4}-\d{2}-\d{2}\b`),
	regexp.MustCompile(`(?i)\bby\s+\d{1,2}(?:st|nd|rd|th)?\s+[A-Za-z]+\b`),
	regexp.MustCompile(`(?i)\b(in|within)\s+\d+\s+(min|mins|minutes|hour|hours|day|days|week|weeks)\b`),
}

var (
	capsWordRe = regexp.MustCompile(`\b[A-Z]{3,}\b`)
	wordRe     = regexp.MustCompile(`[A-Za-z']+`)
)

// timeOfDayBucket maps a wall-clock hour to its coarse bucket.
func timeOfDayBucket(t time.Time) string {
	h := t.Hour()
	switch {
	case h < 6:
		return "night"
	case h < 12:
		return "morning"
	case h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}

func detectDeadline(text string) bool {
	for _, rx := range deadlineRegexps {
		if rx.MatchString(text) {
			return true
		}
	}
	return false
}

// urgencyScore returns a score in [0,1] and the contributing signals.
func urgencyScore(text string) (float64, UrgencySignals) {
	t := strings.ToLower(text)
	signals := UrgencySignals{}

	// Keyword hits: up to 0.6, 0.12 per distinct keyword present
	for _, k := range urgencyKeywords {
		if strings.Contains(t, k) {
			signals.KeywordHits++
		}
	}
	score := math.Min(0.6, float64(signals.KeywordHits)*0.12)

	// Exclamations: up to 0.15
	signals.Exclamations = strings.Count(t, "!")
	score += math.Min(0.15, float64(signals.Exclamations)*0.05)

	// All-caps words: up to 0.1
	signals.CapsWords = len(capsWordRe.FindAllString(text, -1))
	score += math.Min(0.1, float64(signals.CapsWords)*0.03)

	// Time expressions: flat bonus
	signals.TimeExpr = detectDeadline(t)
	if signals.TimeExpr {
		score += 0.15
	}

	return math.Min(1.0, score), signals
}

// detectIntent scores the fixed intent set and normalizes the scores to sum
// to 1. With zero keyword hits the distribution falls back to uniform, so the
// sum-to-one invariant holds for any input.
func detectIntent(text string) (string, map[string]float64) {
	t := strings.ToLower(text)
	scores := make(map[string]float64, len(intentOrder))
	total := 0.0
	for _, intent := range intentOrder {
		hits := 0
		weight := 0.0
		for _, k := range intentKeywords[intent] {
			if strings.Contains(t, k) {
				hits++
				weight += math.Min(float64(len(k)), 15) / 15.0
			}
		}
		s := float64(hits)*0.4 + weight*0.6
		scores[intent] = s
		total += s
	}

	norm := make(map[string]float64, len(scores))
	if total == 0 {
		uniform := 1.0 / float64(len(intentOrder))
		for _, intent := range intentOrder {
			norm[intent] = uniform
		}
	} else {
		for intent, s := range scores {
			norm[intent] = s / total
		}
	}

	// Argmax in declaration order, first maximum wins
	best := intentOrder[0]
	bestScore := norm[best]
	for _, intent := range intentOrder[1:] {
		if norm[intent] > bestScore {
			best = intent
			bestScore = norm[intent]
		}
	}
	return best, norm
}

// ExtractFeatures normalizes the raw payload and derives the per-message
// feature state plus the keyword set (lowercase tokens longer than 3 chars).
func (a *Agent) ExtractFeatures(raw map[string]interface{}) (*FeatureState, map[string]bool) {
	data := NormalizeInput(raw)
	combined := data.Subject + "\n" + data.Body

	keywords := make(map[string]bool)
	for _, w := range wordRe.FindAllString(strings.ToLower(combined), -1) {
		if len(w) > 3 {
			keywords[w] = true
		}
	}

	urgency, signals := urgencyScore(combined)
	hasDeadline := detectDeadline(combined)
	hasQuestion := strings.Contains(data.Subject, "?") || strings.Contains(data.Body, "?")
	intent, intentScores := detectIntent(combined)

	senderFreq := 0
	if rec, ok := a.memory.SenderMemory[data.Sender]; ok {
		senderFreq = rec.TotalEmails
	}

	state := &FeatureState{
		Sender:          data.Sender,
		SubjectLength:   len(data.Subject),
		BodyLength:      len(data.Body),
		HasUrgentWords:  urgency >= 0.35,
		UrgencyScore:    round3(urgency),
		HasDeadline:     hasDeadline,
		HasQuestion:     hasQuestion,
		Intent:          intent,
		IntentScores:    intentScores,
		SenderFrequency: senderFreq,
		// Deliberately bucketed from the current wall clock, not the
		// message's own timestamp.
		TimeOfDay:      timeOfDayBucket(a.now()),
		UrgencySignals: signals,
		Platform:       data.Platform,
	}
	return state, keywords
}

// StateKey converts a feature state into the compact string key used to
// index the value table. Identical discrete fields always produce the same
// key.
func StateKey(state *FeatureState) string {
	urgencyBucket := int(state.UrgencyScore * 3) // 0..3
	q := 0
	if state.HasQuestion {
		q = 1
	}
	return fmt.Sprintf("%s|%s|u%d|q%d|%s", state.Sender, state.Intent, urgencyBucket, q, state.TimeOfDay)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func sortedKeywords(keywords map[string]bool) []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
