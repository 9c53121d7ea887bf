package agent

import (
	"strings"
	"testing"
)

func TestNormalizeInputEmailFields(t *testing.T) {
	raw := map[string]interface{}{
		"from":     "  Alice@Example.COM ",
		"subject":  "Quarterly report",
		"body":     "Attached below.",
		"platform": "email",
	}
	msg := NormalizeInput(raw)
	if msg.Sender != "alice@example.com" {
		t.Errorf("sender = %q, want lowercased trimmed address", msg.Sender)
	}
	if msg.Subject != "Quarterly report" || msg.Body != "Attached below." {
		t.Errorf("unexpected subject/body: %q / %q", msg.Subject, msg.Body)
	}
	if msg.Platform != "email" {
		t.Errorf("platform = %q", msg.Platform)
	}
}

func TestNormalizeInputFieldPrecedence(t *testing.T) {
	raw := map[string]interface{}{
		"sender": "first@x.com",
		"from":   "second@x.com",
		"text":   "hello",
		"body":   "real body",
	}
	msg := NormalizeInput(raw)
	if msg.Sender != "first@x.com" {
		t.Errorf("sender precedence broken: %q", msg.Sender)
	}
	if msg.Body != "real body" {
		t.Errorf("body precedence broken: %q", msg.Body)
	}
}

func TestNormalizeInputChatPseudoSubject(t *testing.T) {
	long := strings.Repeat("a", 200)
	msg := NormalizeInput(map[string]interface{}{
		"user": "bob",
		"text": long,
	})
	if len(msg.Subject) != 80 {
		t.Errorf("pseudo-subject length = %d, want 80", len(msg.Subject))
	}
	short := NormalizeInput(map[string]interface{}{
		"user": "bob",
		"text": "quick one",
	})
	if short.Subject != "quick one" {
		t.Errorf("short pseudo-subject = %q", short.Subject)
	}
}

func TestNormalizeInputEpochTimestamp(t *testing.T) {
	msg := NormalizeInput(map[string]interface{}{
		"sender":    "x@y.com",
		"body":      "hi",
		"timestamp": float64(1735689600), // 2025-01-01T00:00:00Z
	})
	if msg.Timestamp != "2025-01-01T00:00:00Z" {
		t.Errorf("timestamp = %q, want 2025-01-01T00:00:00Z", msg.Timestamp)
	}

	asString := NormalizeInput(map[string]interface{}{
		"sender": "x@y.com",
		"body":   "hi",
		"ts":     "1735689600",
	})
	if asString.Timestamp != "2025-01-01T00:00:00Z" {
		t.Errorf("string epoch timestamp = %q", asString.Timestamp)
	}
}

func TestNormalizeInputStripsHTML(t *testing.T) {
	msg := NormalizeInput(map[string]interface{}{
		"sender": "x@y.com",
		"body":   "<html><style>p{color:red}</style><p>Hello <b>world</b></p></html>",
	})
	if msg.Body != "Hello world" {
		t.Errorf("stripped body = %q, want %q", msg.Body, "Hello world")
	}
	if strings.Contains(msg.Body, "color:red") {
		t.Errorf("style content leaked into body: %q", msg.Body)
	}
}

func TestNormalizeInputMissingEverything(t *testing.T) {
	msg := NormalizeInput(map[string]interface{}{})
	if msg.Sender != "" || msg.Subject != "" || msg.Body != "" || msg.Timestamp != "" {
		t.Errorf("empty payload should normalize to zero values: %+v", msg)
	}
}
