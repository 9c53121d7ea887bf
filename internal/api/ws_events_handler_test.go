package api

import (
	"testing"

	"inboxpilot/internal/flow"
)

// The hub must satisfy the flow package's sink contract.
var _ flow.EventSink = (*EventHub)(nil)

func TestEventHub_PublishWithoutClients(t *testing.T) {
	hub := NewEventHub()
	if hub.ClientCount() != 0 {
		t.Fatalf("fresh hub client count = %d, want 0", hub.ClientCount())
	}
	// Must be a no-op, not a panic
	hub.Publish(flow.DashboardEvent{TaskID: "task_ab12cd34", Status: "processed"})
}
