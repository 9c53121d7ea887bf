package contexttracker

import (
	"testing"
	"time"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr := New(t.TempDir())
	tr.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }
	return tr
}

func interactionAt(ts, platform, msgType, summary string) Interaction {
	return Interaction{Timestamp: ts, Platform: platform, MessageType: msgType, Summary: summary}
}

func TestUpdateContextCounters(t *testing.T) {
	tr := newTestTracker(t)
	tr.UpdateContext("alice", interactionAt("2025-06-01T09:15:00Z", "email", "scheduling", "Schedule: sync meeting tomorrow"))
	tr.UpdateContext("alice", interactionAt("2025-06-01T09:45:00Z", "email", "follow-up", "Follow-up: status update on report"))
	tr.UpdateContext("alice", interactionAt("2025-06-02T10:00:00Z", "slack", "scheduling", "Schedule: calendar invite"))

	insights := tr.GetUserInsights("alice")
	if insights.TotalInteractions != 3 {
		t.Errorf("total interactions = %d, want 3", insights.TotalInteractions)
	}
	if insights.PlatformPreferences["email"] != 2 || insights.PlatformPreferences["slack"] != 1 {
		t.Errorf("platform usage = %v", insights.PlatformPreferences)
	}
	if insights.MessageTypeDistribution["scheduling"] != 2 {
		t.Errorf("message type counts = %v", insights.MessageTypeDistribution)
	}
	if insights.IntentPatterns["scheduling"] < 2 {
		t.Errorf("intent patterns = %v, want scheduling counted from summaries", insights.IntentPatterns)
	}
	if insights.IntentPatterns["type_scheduling"] != 2 {
		t.Errorf("type counter = %v", insights.IntentPatterns)
	}
	if insights.RecentActivityCount != 3 {
		t.Errorf("recent activity = %d, want 3", insights.RecentActivityCount)
	}
	if got := insights.BehavioralInsights["preferred_platform"]; got != "email" {
		t.Errorf("preferred platform = %v, want email", got)
	}
	if got := insights.BehavioralInsights["activity_level"]; got != "low" {
		t.Errorf("activity level = %v, want low for 3 recent messages", got)
	}
}

func TestContextScoreWeights(t *testing.T) {
	tr := newTestTracker(t)
	tr.UpdateContext("bob", interactionAt("2025-06-02T08:00:00Z", "email", "request", "Request: send the contract"))

	ctx := tr.loadContext("bob")
	// 1 recent message: recency 0.1, frequency 1/50, completion neutral 0.5,
	// single platform consistency 1.0
	want := round3(0.1*recencyWeight + 0.02*frequencyWeight + 0.5*completionWeight + 1.0*consistencyWeight)
	if ctx.ContextScore != want {
		t.Errorf("context score = %v, want %v", ctx.ContextScore, want)
	}
}

func TestGetContextScoreTypeBoost(t *testing.T) {
	tr := newTestTracker(t)
	for i := 0; i < 4; i++ {
		tr.UpdateContext("carol", interactionAt("2025-06-02T08:00:00Z", "email", "scheduling", "Schedule: meeting"))
	}
	base := tr.loadContext("carol").ContextScore

	boosted := tr.GetContextScore("carol", "scheduling")
	if boosted <= base {
		t.Errorf("type boost missing: boosted %v <= base %v", boosted, base)
	}
	if boosted > 1.0 {
		t.Errorf("score = %v, want capped at 1.0", boosted)
	}
	other := tr.GetContextScore("carol", "delivery")
	if other != base {
		t.Errorf("unrelated type score = %v, want base %v", other, base)
	}
}

func TestTaskLifecycle(t *testing.T) {
	tr := newTestTracker(t)
	tr.AddTask("dave", TaskEntry{
		TaskID:    "task_ab12cd34",
		TaskType:  "meeting",
		CreatedAt: "2025-06-02T09:00:00Z",
		Platform:  "email",
	}, "scheduled")

	insights := tr.GetUserInsights("dave")
	if insights.TaskSummary.Scheduled != 1 {
		t.Fatalf("scheduled = %d, want 1", insights.TaskSummary.Scheduled)
	}

	if !tr.UpdateTaskStatus("dave", "task_ab12cd34", "completed") {
		t.Fatal("task not found on status update")
	}
	insights = tr.GetUserInsights("dave")
	if insights.TaskSummary.Scheduled != 0 || insights.TaskSummary.Completed != 1 {
		t.Errorf("task summary after completion = %+v", insights.TaskSummary)
	}
	ctx := tr.loadContext("dave")
	if len(ctx.CompletedTasks) != 1 || ctx.CompletedTasks[0].CompletedAt == "" {
		t.Errorf("completed task missing completion timestamp: %+v", ctx.CompletedTasks)
	}
	if got := ctx.BehavioralInsights["task_completion_tendency"]; got != "excellent" {
		t.Errorf("completion tendency = %v, want excellent for 1/1", got)
	}

	if tr.UpdateTaskStatus("dave", "task_missing", "completed") {
		t.Error("unknown task id must return false")
	}
}

func TestHistoryCap(t *testing.T) {
	tr := newTestTracker(t)
	for i := 0; i < 120; i++ {
		tr.UpdateContext("eve", interactionAt("2025-06-02T08:00:00Z", "email", "general", "note"))
	}
	if got := len(tr.loadContext("eve").MessageHistory); got != 100 {
		t.Errorf("history length = %d, want capped at 100", got)
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	tr := New(dir)
	tr.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }
	tr.UpdateContext("frank", interactionAt("2025-06-02T08:00:00Z", "teams", "inquiry", "Question: where is the doc?"))

	tr2 := New(dir)
	tr2.now = tr.now
	insights := tr2.GetUserInsights("frank")
	if insights.TotalInteractions != 1 {
		t.Errorf("reloaded interactions = %d, want 1", insights.TotalInteractions)
	}
	if insights.PlatformPreferences["teams"] != 1 {
		t.Errorf("reloaded platform usage = %v", insights.PlatformPreferences)
	}
}

func TestPlatformTrends(t *testing.T) {
	tr := newTestTracker(t)
	tr.UpdateContext("u1", interactionAt("2025-06-02T08:00:00Z", "email", "request", "Request: invoice copy"))
	tr.UpdateContext("u2", interactionAt("2025-06-02T09:00:00Z", "email", "inquiry", "Question: how to reset?"))
	tr.UpdateContext("u2", interactionAt("2025-06-02T10:00:00Z", "slack", "inquiry", "Question: what about the deploy?"))

	trends := tr.PlatformTrends()
	if trends.TotalUsers != 2 {
		t.Errorf("total users = %d, want 2", trends.TotalUsers)
	}
	if trends.PlatformPopularity["email"] != 2 || trends.PlatformPopularity["slack"] != 1 {
		t.Errorf("platform popularity = %v", trends.PlatformPopularity)
	}
	if trends.MessageTypeTrends["inquiry"] != 2 {
		t.Errorf("message type trends = %v", trends.MessageTypeTrends)
	}
	if trends.AverageContextScore <= 0 {
		t.Errorf("average context score = %v, want positive", trends.AverageContextScore)
	}
}
