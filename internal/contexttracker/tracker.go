// Package contexttracker maintains per-user behavioral context across
// platforms: interaction history, usage counters, task outcomes, and a
// weighted context score that downstream components use to rank work.
package contexttracker

import (
	"encoding/json"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Scoring weights for the overall context score.
const (
	recencyWeight     = 0.3
	frequencyWeight   = 0.25
	completionWeight  = 0.25
	consistencyWeight = 0.2
)

// HistoryEntry is one recorded interaction.
type HistoryEntry struct {
	Timestamp   string `json:"timestamp"`
	Platform    string `json:"platform"`
	MessageType string `json:"message_type"`
	Summary     string `json:"summary"`
}

// TaskEntry is one task tracked inside a user context.
type TaskEntry struct {
	TaskID       string `json:"task_id"`
	TaskType     string `json:"task_type"`
	ScheduledFor string `json:"scheduled_for,omitempty"`
	CreatedAt    string `json:"created_at"`
	Platform     string `json:"platform"`
	CompletedAt  string `json:"completed_at,omitempty"`
	MissedAt     string `json:"missed_at,omitempty"`
}

// UserContext is the full persisted context document for one user.
type UserContext struct {
	UserID               string                 `json:"user_id"`
	CreatedAt            string                 `json:"created_at"`
	LastUpdated          string                 `json:"last_updated"`
	MessageHistory       []HistoryEntry         `json:"message_history"`
	IntentPatterns       map[string]int         `json:"intent_patterns"`
	PlatformUsage        map[string]int         `json:"platform_usage"`
	MessageTypeFrequency map[string]int         `json:"message_type_frequency"`
	ScheduledTasks       []TaskEntry            `json:"scheduled_tasks"`
	MissedTasks          []TaskEntry            `json:"missed_tasks"`
	CompletedTasks       []TaskEntry            `json:"completed_tasks"`
	ResponsePatterns     map[string]int         `json:"response_patterns"`
	PeakActivityHours    map[string]int         `json:"peak_activity_hours"`
	ContextScore         float64                `json:"context_score"`
	BehavioralInsights   map[string]interface{} `json:"behavioral_insights"`
}

// Interaction is the input to UpdateContext.
type Interaction struct {
	Timestamp   string `json:"timestamp"`
	Platform    string `json:"platform"`
	MessageType string `json:"message_type"`
	Summary     string `json:"summary"`
}

// Insights is the aggregate view returned by GetUserInsights.
type Insights struct {
	ContextScore            float64                `json:"context_score"`
	BehavioralInsights      map[string]interface{} `json:"behavioral_insights"`
	PlatformPreferences     map[string]int         `json:"platform_preferences"`
	MessageTypeDistribution map[string]int         `json:"message_type_distribution"`
	IntentPatterns          map[string]int         `json:"intent_patterns"`
	RecentActivityCount     int                    `json:"recent_activity_count"`
	TotalInteractions       int                    `json:"total_interactions"`
	TaskSummary             TaskSummary            `json:"task_summary"`
}

// TaskSummary counts tasks per status bucket.
type TaskSummary struct {
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Missed    int `json:"missed"`
}

// Trends aggregates context data across every known user.
type Trends struct {
	PlatformPopularity  map[string]int `json:"platform_popularity"`
	MessageTypeTrends   map[string]int `json:"message_type_trends"`
	IntentTrends        map[string]int `json:"intent_trends"`
	PeakHours           map[string]int `json:"peak_hours"`
	AverageContextScore float64        `json:"average_context_score"`
	TotalUsers          int            `json:"total_users"`
}

var intentKeywords = map[string][]string{
	"scheduling":          {"meet", "schedule", "appointment", "calendar", "time"},
	"information_seeking": {"what", "how", "when", "where", "why", "info"},
	"task_assignment":     {"need", "complete", "finish", "do", "task"},
	"follow_up":           {"follow", "update", "status", "progress", "check"},
	"urgent_request":      {"urgent", "asap", "immediately", "emergency"},
	"social":              {"hi", "hello", "thanks", "please", "lunch", "coffee"},
}

// Tracker owns the on-disk context directory plus an in-memory cache of
// recently touched contexts.
type Tracker struct {
	mu    sync.Mutex
	dir   string
	cache map[string]*UserContext
	now   func() time.Time
}

func New(dir string) *Tracker {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		log.Printf("[ContextTracker] WARNING: failed to create context dir: %v", err)
	}
	return &Tracker{
		dir:   abs,
		cache: make(map[string]*UserContext),
		now:   time.Now,
	}
}

func (t *Tracker) contextFilePath(userID string) string {
	return filepath.Join(t.dir, userID+"_context.json")
}

func (t *Tracker) defaultContext(userID string) *UserContext {
	now := t.now().UTC().Format(time.RFC3339)
	return &UserContext{
		UserID:               userID,
		CreatedAt:            now,
		LastUpdated:          now,
		MessageHistory:       []HistoryEntry{},
		IntentPatterns:       map[string]int{},
		PlatformUsage:        map[string]int{},
		MessageTypeFrequency: map[string]int{},
		ScheduledTasks:       []TaskEntry{},
		MissedTasks:          []TaskEntry{},
		CompletedTasks:       []TaskEntry{},
		ResponsePatterns:     map[string]int{},
		PeakActivityHours:    map[string]int{},
		BehavioralInsights:   map[string]interface{}{},
	}
}

// loadContext reads a user context from disk, falling back to a freshly
// initialized document which is also written out. Caller holds the mutex.
func (t *Tracker) loadContext(userID string) *UserContext {
	path := t.contextFilePath(userID)
	raw, err := os.ReadFile(path)
	if err != nil {
		ctx := t.defaultContext(userID)
		t.writeContext(userID, ctx)
		return ctx
	}
	ctx := t.defaultContext(userID)
	if err := json.Unmarshal(raw, ctx); err != nil {
		log.Printf("[ContextTracker] WARNING: failed to parse context for %s: %v", userID, err)
		return t.defaultContext(userID)
	}
	ensureContextMaps(ctx)
	return ctx
}

func ensureContextMaps(ctx *UserContext) {
	if ctx.IntentPatterns == nil {
		ctx.IntentPatterns = map[string]int{}
	}
	if ctx.PlatformUsage == nil {
		ctx.PlatformUsage = map[string]int{}
	}
	if ctx.MessageTypeFrequency == nil {
		ctx.MessageTypeFrequency = map[string]int{}
	}
	if ctx.ResponsePatterns == nil {
		ctx.ResponsePatterns = map[string]int{}
	}
	if ctx.PeakActivityHours == nil {
		ctx.PeakActivityHours = map[string]int{}
	}
	if ctx.BehavioralInsights == nil {
		ctx.BehavioralInsights = map[string]interface{}{}
	}
}

func (t *Tracker) writeContext(userID string, ctx *UserContext) {
	ctx.LastUpdated = t.now().UTC().Format(time.RFC3339)
	raw, err := json.MarshalIndent(ctx, "", "  ")
	if err != nil {
		log.Printf("[ContextTracker] WARNING: failed to encode context for %s: %v", userID, err)
		return
	}
	if err := os.WriteFile(t.contextFilePath(userID), raw, 0o644); err != nil {
		log.Printf("[ContextTracker] WARNING: failed to save context for %s: %v", userID, err)
	}
	t.cache[userID] = ctx
}

// UpdateContext records an interaction: history, counters, intent patterns,
// peak hours, and the recomputed score and insights.
func (t *Tracker) UpdateContext(userID string, interaction Interaction) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := t.loadContext(userID)

	ctx.MessageHistory = append(ctx.MessageHistory, HistoryEntry{
		Timestamp:   interaction.Timestamp,
		Platform:    interaction.Platform,
		MessageType: interaction.MessageType,
		Summary:     interaction.Summary,
	})
	if len(ctx.MessageHistory) > 100 {
		ctx.MessageHistory = ctx.MessageHistory[len(ctx.MessageHistory)-100:]
	}

	ctx.PlatformUsage[interaction.Platform]++
	ctx.MessageTypeFrequency[interaction.MessageType]++

	if ts, err := time.Parse(time.RFC3339, interaction.Timestamp); err == nil {
		ctx.PeakActivityHours[strconv.Itoa(ts.UTC().Hour())]++
	}

	summary := strings.ToLower(interaction.Summary)
	for intent, keywords := range intentKeywords {
		for _, kw := range keywords {
			if strings.Contains(summary, kw) {
				ctx.IntentPatterns[intent]++
				break
			}
		}
	}
	ctx.IntentPatterns["type_"+interaction.MessageType]++

	ctx.ContextScore = t.calculateContextScore(ctx)
	ctx.BehavioralInsights = t.behavioralInsights(ctx)

	t.writeContext(userID, ctx)
}

func (t *Tracker) calculateContextScore(ctx *UserContext) float64 {
	recent := 0
	for _, msg := range ctx.MessageHistory {
		if t.isRecent(msg.Timestamp, 7) {
			recent++
		}
	}
	recency := minFloat(float64(recent)/10.0, 1.0)
	frequency := minFloat(float64(len(ctx.MessageHistory))/50.0, 1.0)

	completion := 0.5
	totalTasks := len(ctx.ScheduledTasks) + len(ctx.CompletedTasks) + len(ctx.MissedTasks)
	if totalTasks > 0 {
		completion = float64(len(ctx.CompletedTasks)) / float64(totalTasks)
	}

	consistency := 0.5
	if len(ctx.PlatformUsage) > 0 {
		maxUsage, total := 0, 0
		for _, c := range ctx.PlatformUsage {
			if c > maxUsage {
				maxUsage = c
			}
			total += c
		}
		consistency = float64(maxUsage) / float64(total)
	}

	score := recency*recencyWeight + frequency*frequencyWeight +
		completion*completionWeight + consistency*consistencyWeight
	return round3(score)
}

func (t *Tracker) isRecent(timestamp string, days int) bool {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return false
	}
	return ts.After(t.now().UTC().Add(-time.Duration(days) * 24 * time.Hour))
}

func (t *Tracker) behavioralInsights(ctx *UserContext) map[string]interface{} {
	insights := map[string]interface{}{}

	if top, ok := topKey(ctx.PlatformUsage); ok {
		insights["preferred_platform"] = top
	}
	if top, ok := topKey(ctx.MessageTypeFrequency); ok {
		insights["common_message_type"] = top
	}
	if top, ok := topKey(ctx.PeakActivityHours); ok {
		if hour, err := strconv.Atoi(top); err == nil {
			insights["peak_activity_hour"] = hour
		}
	}
	if top, ok := topKey(ctx.IntentPatterns); ok {
		insights["dominant_intent"] = top
	}

	recent := 0
	for _, msg := range ctx.MessageHistory {
		if t.isRecent(msg.Timestamp, 7) {
			recent++
		}
	}
	switch {
	case recent >= 10:
		insights["activity_level"] = "high"
	case recent >= 5:
		insights["activity_level"] = "medium"
	default:
		insights["activity_level"] = "low"
	}

	totalTasks := len(ctx.ScheduledTasks) + len(ctx.CompletedTasks) + len(ctx.MissedTasks)
	if totalTasks > 0 {
		rate := float64(len(ctx.CompletedTasks)) / float64(totalTasks)
		switch {
		case rate >= 0.8:
			insights["task_completion_tendency"] = "excellent"
		case rate >= 0.6:
			insights["task_completion_tendency"] = "good"
		case rate >= 0.4:
			insights["task_completion_tendency"] = "average"
		default:
			insights["task_completion_tendency"] = "needs_improvement"
		}
	}

	return insights
}

// GetContextScore returns the user's context score adjusted for their
// history with the given task type, capped at 1.0.
func (t *Tracker) GetContextScore(userID, taskType string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := t.loadContext(userID)
	base := ctx.ContextScore
	if len(ctx.MessageHistory) == 0 {
		return base
	}
	typeRatio := float64(ctx.MessageTypeFrequency[taskType]) / float64(len(ctx.MessageHistory))
	return minFloat(base+typeRatio*0.2, 1.0)
}

// GetUserInsights returns the comprehensive view of one user's context.
func (t *Tracker) GetUserInsights(userID string) *Insights {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := t.loadContext(userID)
	recent := 0
	for _, msg := range ctx.MessageHistory {
		if t.isRecent(msg.Timestamp, 7) {
			recent++
		}
	}
	return &Insights{
		ContextScore:            ctx.ContextScore,
		BehavioralInsights:      ctx.BehavioralInsights,
		PlatformPreferences:     ctx.PlatformUsage,
		MessageTypeDistribution: ctx.MessageTypeFrequency,
		IntentPatterns:          ctx.IntentPatterns,
		RecentActivityCount:     recent,
		TotalInteractions:       len(ctx.MessageHistory),
		TaskSummary: TaskSummary{
			Scheduled: len(ctx.ScheduledTasks),
			Completed: len(ctx.CompletedTasks),
			Missed:    len(ctx.MissedTasks),
		},
	}
}

// AddTask records a task under the given status bucket.
func (t *Tracker) AddTask(userID string, task TaskEntry, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := t.loadContext(userID)
	switch status {
	case "completed":
		ctx.CompletedTasks = append(ctx.CompletedTasks, task)
	case "missed":
		ctx.MissedTasks = append(ctx.MissedTasks, task)
	default:
		ctx.ScheduledTasks = append(ctx.ScheduledTasks, task)
	}
	t.writeContext(userID, ctx)
}

// UpdateTaskStatus moves a task between status buckets and recomputes the
// score. Returns false when the task is unknown.
func (t *Tracker) UpdateTaskStatus(userID, taskID, newStatus string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctx := t.loadContext(userID)

	task, found := removeTask(&ctx.ScheduledTasks, taskID)
	if !found {
		task, found = removeTask(&ctx.CompletedTasks, taskID)
	}
	if !found {
		task, found = removeTask(&ctx.MissedTasks, taskID)
	}
	if !found {
		return false
	}

	now := t.now().UTC().Format(time.RFC3339)
	switch newStatus {
	case "completed":
		task.CompletedAt = now
		ctx.CompletedTasks = append(ctx.CompletedTasks, task)
	case "missed":
		task.MissedAt = now
		ctx.MissedTasks = append(ctx.MissedTasks, task)
	case "scheduled":
		ctx.ScheduledTasks = append(ctx.ScheduledTasks, task)
	}

	ctx.ContextScore = t.calculateContextScore(ctx)
	ctx.BehavioralInsights = t.behavioralInsights(ctx)
	t.writeContext(userID, ctx)
	return true
}

// AllUserIDs lists every user with a context file.
func (t *Tracker) AllUserIDs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	entries, err := os.ReadDir(t.dir)
	if err != nil {
		log.Printf("[ContextTracker] WARNING: failed to list context dir: %v", err)
		return nil
	}
	var ids []string
	for _, e := range entries {
		if name := e.Name(); strings.HasSuffix(name, "_context.json") {
			ids = append(ids, strings.TrimSuffix(name, "_context.json"))
		}
	}
	sort.Strings(ids)
	return ids
}

// PlatformTrends aggregates counters and scores across all users.
func (t *Tracker) PlatformTrends() *Trends {
	ids := t.AllUserIDs()

	t.mu.Lock()
	defer t.mu.Unlock()

	trends := &Trends{
		PlatformPopularity: map[string]int{},
		MessageTypeTrends:  map[string]int{},
		IntentTrends:       map[string]int{},
		PeakHours:          map[string]int{},
		TotalUsers:         len(ids),
	}
	totalScore := 0.0
	for _, id := range ids {
		ctx := t.loadContext(id)
		for platform, count := range ctx.PlatformUsage {
			trends.PlatformPopularity[platform] += count
		}
		for msgType, count := range ctx.MessageTypeFrequency {
			trends.MessageTypeTrends[msgType] += count
		}
		for intent, count := range ctx.IntentPatterns {
			trends.IntentTrends[intent] += count
		}
		for hour, count := range ctx.PeakActivityHours {
			trends.PeakHours[hour] += count
		}
		totalScore += ctx.ContextScore
	}
	if len(ids) > 0 {
		trends.AverageContextScore = round3(totalScore / float64(len(ids)))
	}
	return trends
}

// topKey returns the key with the highest count, breaking ties
// lexicographically for stable output.
func topKey(counts map[string]int) (string, bool) {
	if len(counts) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best, true
}

func removeTask(list *[]TaskEntry, taskID string) (TaskEntry, bool) {
	for i, task := range *list {
		if task.TaskID == taskID {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return task, true
		}
	}
	return TaskEntry{}, false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
