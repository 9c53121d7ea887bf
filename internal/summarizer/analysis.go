package summarizer

import (
	"math"
	"regexp"
	"strings"
	"time"

	"inboxpilot/internal/schedule"
)

// classifyIntent scores every intent against its pattern set plus verb cues
// and conversation continuity, returning the winning intent and a soft
// confidence in [0.2, 1.0]. Ties resolve to the earlier declared intent.
func (s *Summarizer) classifyIntent(text string, context []ContextMessage) (string, float64) {
	lower := strings.ToLower(text)
	scores := make(map[string]float64, len(intentOrder))

	for _, intent := range intentOrder {
		score := 0.0
		for _, re := range intentPatterns[intent] {
			score += float64(len(re.FindAllString(lower, -1)))
		}
		scores[intent] = score
	}

	// A trailing question mark is a strong question signal; when the message
	// already reads like a social invite the invite wins.
	if strings.HasSuffix(strings.TrimSpace(lower), "?") {
		scores["question"] += 2.0
		if scores["social"] >= 2 {
			scores["social"] += 2.0
		}
	}

	for intent, cues := range actionCues {
		for _, cue := range cues {
			if strings.Contains(lower, cue) {
				scores[intent] += 1.0
				break
			}
		}
	}

	// Continuity with recent conversation boosts follow-up
	if len(context) > 0 {
		recent := context
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		var prev strings.Builder
		for _, m := range recent {
			prev.WriteString(strings.ToLower(m.MessageText))
			prev.WriteString(" ")
		}
		if wordOverlap(lower, prev.String()) > 3 {
			scores["follow_up"] += 1.5
		}
	}

	best := intentOrder[0]
	bestScore := scores[best]
	for _, intent := range intentOrder[1:] {
		if scores[intent] > bestScore {
			best = intent
			bestScore = scores[intent]
		}
	}
	confidence := math.Min(1.0, 0.2+bestScore/5.0)
	return best, confidence
}

// analyzeUrgency combines keyword weights, punctuation, ALL-CAPS tokens, time
// proximity, and context escalation into a labeled urgency level.
func (s *Summarizer) analyzeUrgency(text string, context []ContextMessage) (string, float64) {
	lower := strings.ToLower(text)
	score := 0.0

	for level, patterns := range urgencyIndicators {
		weight := 0.5
		switch level {
		case "high":
			weight = 2.0
		case "medium":
			weight = 1.0
		}
		for _, re := range patterns {
			score += weight * float64(len(re.FindAllString(lower, -1)))
		}
	}

	if n := strings.Count(text, "!"); n >= 1 {
		score += math.Min(3.0, 0.5*float64(n))
	}
	caps := 0
	for _, w := range allCapsRe.FindAllString(text, -1) {
		if w != "LOL" && w != "FYI" {
			caps++
		}
	}
	score += math.Min(2.0, 0.3*float64(caps))

	// Near-term time references raise urgency
	if when, ok := schedule.Parse(text, s.now()); ok {
		delta := when.Sub(s.now())
		if delta > 0 {
			if delta <= 24*time.Hour {
				score += 2.0
			} else if delta <= 72*time.Hour {
				score += 1.0
			}
		}
	}

	// Escalation relative to the recent conversation
	if len(context) > 0 {
		recent := context
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		var prev strings.Builder
		for _, m := range recent {
			prev.WriteString(strings.ToLower(m.MessageText))
			prev.WriteString(" ")
		}
		prevText := prev.String()
		highWords := []string{"urgent", "asap", "immediately", "critical"}
		prevHigh, curHigh := 0, 0
		for _, w := range highWords {
			if strings.Contains(prevText, w) {
				prevHigh++
			}
			if strings.Contains(lower, w) {
				curHigh++
			}
		}
		if curHigh > prevHigh {
			score += 1.0
		}
	}

	switch {
	case score >= 3.5:
		return "critical", math.Min(1.0, 0.6+score/10.0)
	case score >= 2.0:
		return "high", math.Min(1.0, 0.5+score/10.0)
	case score >= 1.0:
		return "medium", math.Min(1.0, 0.4+score/10.0)
	default:
		return "low", 0.3 + math.Min(0.2, score/10.0)
	}
}

var followUpRes = compileAll(
	`update`, `status`, `any news`, `heard back`, `follow up`, `did.*get done`,
)

// analyzeContext derives human-readable insights about how the message
// relates to the recent conversation.
func (s *Summarizer) analyzeContext(text string, context []ContextMessage) []string {
	insights := []string{}
	if len(context) == 0 {
		return insights
	}

	lower := strings.ToLower(text)
	recent := context
	if len(recent) > 3 {
		recent = recent[len(recent)-3:]
	}

	for _, re := range followUpRes {
		if re.MatchString(lower) {
			insights = append(insights, "This appears to be a follow-up to previous conversation")
			break
		}
	}

	urgencyWords := []string{"urgent", "asap", "immediately", "critical", "deadline"}
	curUrgency, prevUrgency := 0, 0
	for _, w := range urgencyWords {
		if strings.Contains(lower, w) {
			curUrgency++
		}
	}
	for _, m := range recent {
		prevText := strings.ToLower(m.MessageText)
		for _, w := range urgencyWords {
			if strings.Contains(prevText, w) {
				prevUrgency++
			}
		}
	}
	if curUrgency > prevUrgency {
		insights = append(insights, "Urgency level has increased compared to previous messages")
	}

	lastText := strings.ToLower(recent[len(recent)-1].MessageText)
	if wordOverlap(lower, lastText) > 2 {
		insights = append(insights, "Continues previous conversation topic")
	}

	positive := []string{"thanks", "great", "good", "excellent", "appreciate"}
	negative := []string{"problem", "issue", "wrong", "error", "disappointed"}
	posHits, negHits := 0, 0
	for _, w := range positive {
		if strings.Contains(lower, w) {
			posHits++
		}
	}
	for _, w := range negative {
		if strings.Contains(lower, w) {
			negHits++
		}
	}
	if posHits > 0 {
		insights = append(insights, "Positive sentiment detected - possibly expressing gratitude")
	} else if negHits > 0 {
		insights = append(insights, "Negative sentiment detected - may indicate frustration")
	}

	return insights
}

func determineMessageType(intent, urgency string) string {
	if urgency == "critical" {
		return "urgent"
	}
	switch intent {
	case "follow_up", "check_progress":
		return "follow-up"
	case "question":
		return "inquiry"
	case "request":
		return "request"
	case "complaint":
		return "complaint"
	case "appreciation":
		return "appreciation"
	case "cancellation":
		return "cancellation"
	case "schedule":
		return "scheduling"
	case "sales":
		return "sales"
	case "delivery":
		return "delivery"
	default:
		return "general"
	}
}

var tokenRe = regexp.MustCompile(`\b\w+\b`)

func wordOverlap(a, b string) int {
	seen := make(map[string]bool)
	for _, w := range tokenRe.FindAllString(a, -1) {
		seen[w] = true
	}
	overlap := 0
	counted := make(map[string]bool)
	for _, w := range tokenRe.FindAllString(b, -1) {
		if seen[w] && !counted[w] {
			overlap++
			counted[w] = true
		}
	}
	return overlap
}
