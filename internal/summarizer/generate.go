package summarizer

import (
	"strings"
)

// generateSummary builds the platform-shaped extractive summary: clean the
// message, pick the highest-scoring sentence, attach the intent/urgency
// prefix and any notable time phrase, then shape for the platform.
func (s *Summarizer) generateSummary(text, platform, intent, urgency string, insights []string) string {
	cfg := platformConfig(platform)
	maxLength := cfg.MaxSummaryLength

	cleaned := cleanMessage(text)
	sentences := splitSentences(cleaned)
	timePhrase := extractTimePhrase(cleaned)

	// Social invites get a prebuilt form instead of an extracted sentence
	prebuilt := ""
	if intent == "social" {
		cl := strings.ToLower(cleaned)
		var activities []string
		if strings.Contains(cl, "mall") || strings.Contains(cl, "shopping") {
			activities = append(activities, "mall shopping")
		}
		for _, k := range []string{"latest movie", "movie", "cinema", "film"} {
			if strings.Contains(cl, k) {
				activities = append(activities, "latest movie")
				break
			}
		}
		phrase := "hangout"
		if len(activities) > 0 {
			phrase = strings.Join(activities, " + ")
		}
		prebuilt = "Invite: " + phrase
		if timePhrase != "" && !strings.Contains(strings.ToLower(prebuilt), strings.ToLower(timePhrase)) {
			prebuilt = prebuilt + " " + timePhrase
		}
	}

	// Term frequencies over content words
	freq := make(map[string]int)
	for _, w := range wordRe.FindAllString(strings.ToLower(cleaned), -1) {
		if len(w) < 3 || stopwords[w] {
			continue
		}
		freq[w]++
	}

	scoreSentence := func(sentence string) float64 {
		sl := strings.ToLower(sentence)
		score := 0.0
		for _, w := range wordRe.FindAllString(sl, -1) {
			if len(w) >= 3 && !stopwords[w] {
				score += float64(freq[w])
				score += s.termWeights[w]
			}
		}
		if actionVerbRe.MatchString(sl) {
			score += 5
		}
		if timePhrase != "" && strings.Contains(sl, strings.ToLower(timePhrase)) {
			score += 3
		}
		if digitRe.MatchString(sl) {
			score += 1
		}
		switch intent {
		case "schedule", "request", "question", "follow_up", "check_progress":
			score += 1
		}
		return score
	}

	best := cleaned
	if len(sentences) > 0 {
		best = sentences[0]
		bestScore := scoreSentence(best)
		for _, sentence := range sentences[1:] {
			if sc := scoreSentence(sentence); sc > bestScore {
				best = sentence
				bestScore = sc
			}
		}
	}

	best = politenessRe.ReplaceAllString(best, "")
	best = strings.Trim(whitespaceRe.ReplaceAllString(best, " "), " ,.-")

	prefix := ""
	switch {
	case urgency == "critical":
		prefix = "Urgent: "
	case intent == "schedule":
		prefix = "Schedule: "
	case intent == "request":
		prefix = "Request: "
	case intent == "question":
		prefix = "Question: "
	case intent == "follow_up" || intent == "check_progress":
		prefix = "Follow-up: "
	case intent == "social":
		prefix = "Invite: "
	}

	summary := prefix + best
	if prebuilt != "" {
		summary = prebuilt
	}

	if timePhrase != "" && !strings.Contains(strings.ToLower(summary), strings.ToLower(timePhrase)) {
		summary = strings.TrimSpace(summary + " " + timePhrase)
	}

	if len(insights) > 0 && (intent == "follow_up" || intent == "check_progress") {
		head := strings.ToLower(insights[0])
		lowerSummary := strings.ToLower(summary)
		if strings.Contains(head, "follow-up") && !strings.HasPrefix(lowerSummary, "follow-up") {
			summary = "Follow-up: " + summary
		} else if strings.Contains(head, "continues previous") && !strings.HasPrefix(lowerSummary, "continuing") {
			summary = "Continuing: " + summary
		}
	}

	if cfg.EmojiFriendly {
		if emoji, ok := emojiMap[intent]; ok {
			summary = emoji + " " + summary
		}
	}

	summary = truncateAtClause(summary, maxLength)

	if cfg.CasualTone {
		summary = strings.ReplaceAll(summary, "Please", "Pls")
		summary = strings.ReplaceAll(summary, "you", "u")
	}

	return summary
}

func cleanMessage(text string) string {
	t := strings.TrimSpace(text)
	t = greetingRe.ReplaceAllString(t, "")
	t = politenessRe.ReplaceAllString(t, "")
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// splitSentences cuts on sentence-final punctuation followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	var current strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			if i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\t' || runes[i+1] == '\n') {
				if s := strings.Trim(current.String(), " -"); s != "" {
					out = append(out, s)
				}
				current.Reset()
				for i+1 < len(runes) && (runes[i+1] == ' ' || runes[i+1] == '\t' || runes[i+1] == '\n') {
					i++
				}
			}
		}
	}
	if s := strings.Trim(current.String(), " -"); s != "" {
		out = append(out, s)
	}
	return out
}

func extractTimePhrase(text string) string {
	for _, re := range timePhraseRes {
		if m := re.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// truncateAtClause enforces the platform length limit, preferring a clause
// boundary over a hard cut. Counts runes so multibyte prefixes survive.
func truncateAtClause(summary string, maxLength int) string {
	if len([]rune(summary)) <= maxLength {
		return summary
	}
	candidate := summary
	if loc := clauseRe.FindStringIndex(summary); loc != nil {
		candidate = strings.TrimSpace(summary[:loc[0]])
	}
	runes := []rune(candidate)
	if len(runes) > maxLength {
		return strings.TrimRight(string(runes[:maxLength-3]), " ") + "..."
	}
	return candidate
}
