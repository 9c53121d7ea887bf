package summarizer

import "regexp"

// platformConfigs holds the per-platform tuning; unknown platforms fall back
// to the email profile.
var platformConfigs = map[string]PlatformConfig{
	"whatsapp":  {MaxSummaryLength: 50, EmojiFriendly: true, CasualTone: true, Abbreviations: true},
	"email":     {MaxSummaryLength: 100},
	"slack":     {MaxSummaryLength: 75, EmojiFriendly: true, CasualTone: true, Abbreviations: true},
	"teams":     {MaxSummaryLength: 80},
	"instagram": {MaxSummaryLength: 40, EmojiFriendly: true, CasualTone: true, Abbreviations: true},
	"discord":   {MaxSummaryLength: 60, EmojiFriendly: true, CasualTone: true, Abbreviations: true},
}

func platformConfig(platform string) PlatformConfig {
	if cfg, ok := platformConfigs[platform]; ok {
		return cfg
	}
	return platformConfigs["email"]
}

// intentOrder fixes iteration order for scoring; the first maximum wins.
var intentOrder = []string{
	"question", "request", "follow_up", "complaint", "appreciation", "urgent",
	"schedule", "sales", "delivery", "cancellation", "social", "check_progress",
}

var intentPatterns = map[string][]*regexp.Regexp{
	"question": compileAll(
		`\?`, `\bwhat\b`, `\bhow\b`, `\bwhen\b`, `\bwhere\b`,
		`\bwhy\b`, `\bwhich\b`, `\bwho\b`, `\bcan you\b`, `\bcould you\b`,
	),
	"request": compileAll(
		`\bplease\b`, `\bcould you\b`, `\bwould you\b`, `\bcan you\b`,
		`\bneed\b`, `\brequire\b`, `\bwant\b`, `\bsend me\b`, `\bshare\b`, `\bprovide\b`,
	),
	"follow_up": compileAll(
		`\bfollow.?up\b`, `\bupdate\b`, `\bstatus\b`, `\bprogress\b`,
		`\bany news\b`, `\bping\b`, `\bnudge\b`, `\bcheck in\b`,
	),
	"complaint": compileAll(
		`\bissue\b`, `\bproblem\b`, `\berror\b`, `\bbug\b`, `\bwrong\b`,
		`\bnot working\b`, `\bbroken\b`, `\bfailed\b`, `\bdisappointed\b`, `\bdelay\b`,
	),
	"appreciation": compileAll(
		`\bthank\b`, `\bthanks\b`, `\bappreciate\b`, `\bgreat\b`,
		`\bawesome\b`, `\bexcellent\b`, `\bgood job\b`, `\bwell done\b`,
	),
	"urgent": compileAll(
		`\burgent\b`, `\basap\b`, `\bemergency\b`, `\bcritical\b`,
		`\bimmediately\b`, `\bright now\b`, `\bdeadline today\b`, `\bblocker\b`,
	),
	"schedule": compileAll(
		`\bmeeting\b`, `\bappointment\b`, `\bschedule\b`, `\bcalendar\b`,
		`\btime\b`, `\bdate\b`, `\btomorrow\b`, `\bnext week\b`, `\breschedule\b`,
	),
	"sales": compileAll(
		`\binvoice\b`, `\bpayment\b`, `\bbilling\b`, `\bpricing\b`, `\bquote\b`, `\bpo\b`,
	),
	"delivery": compileAll(
		`\bship\b`, `\bshipping\b`, `\bdeliver\b`, `\bdelivery\b`, `\btracking\b`,
	),
	"cancellation": compileAll(
		`\bcancel\b`, `\bcancellation\b`, `\brefund\b`, `\breturn\b`,
	),
	"social": compileAll(
		`\banyone interested\b`, `\bjoin\b`, `\bcome\b`, `\bgo to\b`, `\bhang out\b`,
		`\bparty\b`, `\bmall\b`, `\bshopping\b`, `\bmovie\b`, `\bcinema\b`, `\bwatch\b`,
	),
	"check_progress": compileAll(
		`\bprogress\b`, `\bstatus\b`, `\bhow.?s.*going\b`, `\bupdate\b`,
		`\bdone\b`, `\bfinished\b`, `\bcomplete\b`, `\bready\b`,
	),
}

var urgencyIndicators = map[string][]*regexp.Regexp{
	"high": compileAll(
		`\burgent\b`, `\basap\b`, `\bemergency\b`, `\bcritical\b`,
		`\bimmediately\b`, `\bright now\b`, `\bdeadline today\b`, `\bblocker\b`,
	),
	"medium": compileAll(
		`\bsoon\b`, `\bquickly\b`, `\bpriority\b`, `\bimportant\b`,
		`\bdeadline\b`, `\bby tomorrow\b`, `\bthis week\b`,
	),
	"low": compileAll(
		`\bwhen you can\b`, `\bno rush\b`, `\bwhenever\b`,
		`\bno hurry\b`, `\btake your time\b`,
	),
}

var actionCues = map[string][]string{
	"request":   {"need", "require", "please", "share", "send", "provide", "approve", "fix", "resolve"},
	"schedule":  {"schedule", "meeting", "call", "book", "reschedule"},
	"follow_up": {"follow up", "check", "update", "status", "progress"},
}

var emojiMap = map[string]string{
	"question":       "❓",
	"request":        "\U0001F64F",
	"urgent":         "\U0001F6A8",
	"appreciation":   "\U0001F64F",
	"complaint":      "⚠️",
	"social":         "\U0001F44B",
	"follow_up":      "\U0001F504",
	"check_progress": "\U0001F4CA",
}

var (
	wordRe       = regexp.MustCompile(`\b[\w'-]+\b`)
	allCapsRe    = regexp.MustCompile(`\b[A-Z]{3,}\b`)
	greetingRe   = regexp.MustCompile(`(?i)^(hi|hello|hey|dear)\b[,\s:-]*`)
	politenessRe = regexp.MustCompile(`(?i)\b(please|kindly|could you|would you|can you|thanks|thank you)\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	digitRe      = regexp.MustCompile(`\d`)
	actionVerbRe = regexp.MustCompile(`\b(schedule|meeting|call|review|deadline|submit|send|follow up|update|remind|confirm|approve|fix|resolve)\b`)
	clauseRe     = regexp.MustCompile(`(?i),|\band\b|\bbut\b`)
)

var timePhraseRes = compileAll(
	`(?i)\b(today|tomorrow|tonight|this (morning|afternoon|evening))\b`,
	`(?i)\b(next (mon|tue|wed|thu|fri|sat|sun|monday|tuesday|wednesday|thursday|friday|saturday|sunday))\b`,
	`(?i)\b(next (week|month))\b`,
	`(?i)\b(\d{1,2}(:\d{2})?\s?(am|pm))\b`,
	`(?i)\b(\d{1,2}[/-]\d{1,2}([/-]\d{2,4})?)\b`,
)

var stopwords = map[string]bool{}

func init() {
	for _, w := range []string{
		"the", "a", "an", "and", "or", "but", "if", "on", "in", "at", "to", "for", "from", "of", "with",
		"is", "am", "are", "was", "were", "be", "been", "being", "as", "by", "this", "that", "those", "these",
		"it", "its", "we", "you", "your", "our", "i", "me", "my", "they", "them", "their", "he", "she", "his", "her",
		"will", "shall", "would", "could", "should", "can", "may", "might", "do", "does", "did", "have", "has", "had",
		"so", "just", "also", "too", "very", "there", "here", "into", "over", "about", "regarding", "subject",
	} {
		stopwords[w] = true
	}
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
