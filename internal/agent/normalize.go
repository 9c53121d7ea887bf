package agent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	epochRe   = regexp.MustCompile(`^\d{10}(?:\.\d+)?$`)
	htmlTagRe = regexp.MustCompile(`<[a-zA-Z][^>]*>`)
)

// NormalizeInput reduces heterogeneous payloads to the canonical schema
// without assuming a specific platform. Field precedence is
// first-matching-key-wins in the documented order.
func NormalizeInput(raw map[string]interface{}) NormalizedMessage {
	platform := firstString(raw, "platform", "source", "provider")

	// Email-like payloads
	sender := firstString(raw, "sender", "from", "user", "author", "email")
	subject := firstString(raw, "subject", "title", "topic")
	body := firstString(raw, "body", "text", "message", "content", "snippet")

	// HTML bodies (email platforms) are reduced to plain text before any
	// scoring sees them.
	if htmlTagRe.MatchString(body) {
		body = stripHTML(body)
	}

	// Chat-like payloads: use leading body text as pseudo-subject for ranking
	if subject == "" && body != "" {
		if len(body) > 80 {
			subject = body[:80]
		} else {
			subject = body
		}
	}

	ts := normalizeTimestamp(raw)

	return NormalizedMessage{
		Sender:    strings.ToLower(strings.TrimSpace(sender)),
		Subject:   strings.TrimSpace(subject),
		Body:      strings.TrimSpace(body),
		Timestamp: ts,
		Platform:  platform,
		Metadata:  raw,
	}
}

// firstString returns the first present, non-empty value among keys,
// coercing scalars to strings.
func firstString(raw map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case float64:
			return strconv.FormatFloat(val, 'f', -1, 64)
		case int:
			return strconv.Itoa(val)
		case bool:
			// Booleans are never meaningful message fields
			continue
		default:
			s := fmt.Sprintf("%v", val)
			if s != "" {
				return s
			}
		}
	}
	return ""
}

func normalizeTimestamp(raw map[string]interface{}) string {
	var ts interface{}
	for _, k := range []string{"timestamp", "ts", "date", "created_at", "received_at"} {
		if v, ok := raw[k]; ok && v != nil {
			ts = v
			break
		}
	}
	switch v := ts.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
	case int:
		return time.Unix(int64(v), 0).UTC().Format(time.RFC3339)
	case int64:
		return time.Unix(v, 0).UTC().Format(time.RFC3339)
	case string:
		if epochRe.MatchString(v) {
			secs, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return ""
			}
			return time.Unix(int64(secs), 0).UTC().Format(time.RFC3339)
		}
		// Keep as-is if it looks like a date string
		return v
	default:
		return ""
	}
}

func stripHTML(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	doc.Find("script,style").Remove()
	text := doc.Text()
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return body
	}
	return text
}
