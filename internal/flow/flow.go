// Package flow turns summarized platform messages into actionable tasks:
// validation, task typing, priority, schedule extraction, per-user task
// queues, and action recommendations.
package flow

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"inboxpilot/internal/contexttracker"
	"inboxpilot/internal/schedule"
)

// Input is one summarized message handed to the flow.
type Input struct {
	UserID      string `json:"user_id"`
	Platform    string `json:"platform"`
	MessageText string `json:"message_text"`
	Timestamp   string `json:"timestamp"`
	Summary     string `json:"summary"`
	Type        string `json:"type"`
}

// Task is one synthesized actionable item. Persisted both in the per-user
// queue file and, when a database is attached, as a row with the
// recommendations as a JSON column.
type Task struct {
	ID              uint           `gorm:"primarykey" json:"-"`
	UserID          string         `gorm:"index;size:128" json:"user_id"`
	TaskID          string         `gorm:"uniqueIndex;size:32" json:"task_id"`
	Platform        string         `gorm:"size:32" json:"platform"`
	TaskSummary     string         `json:"task_summary"`
	TaskType        string         `gorm:"size:32" json:"task_type"`
	ScheduledFor    string         `gorm:"size:40" json:"scheduled_for,omitempty"`
	Status          string         `gorm:"size:20" json:"status"`
	CreatedAt       string         `gorm:"size:40" json:"created_at"`
	UpdatedAt       string         `gorm:"size:40" json:"updated_at,omitempty"`
	OriginalMessage string         `json:"original_message"`
	Summary         string         `json:"summary"`
	Priority        string         `gorm:"size:10" json:"priority"`
	ContextScore    float64        `json:"context_score"`
	Recommendations datatypes.JSON `json:"recommendations,omitempty"`
}

// Recommendation is one suggested next action for a task.
type Recommendation struct {
	Action      string `json:"action"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// DashboardEvent is the per-task event emitted for live dashboards.
type DashboardEvent struct {
	Timestamp            string  `json:"timestamp"`
	UserID               string  `json:"user_id"`
	TaskID               string  `json:"task_id"`
	Platform             string  `json:"platform"`
	TaskType             string  `json:"task_type"`
	Priority             string  `json:"priority"`
	Status               string  `json:"status"`
	RecommendationsCount int     `json:"recommendations_count"`
	ContextScore         float64 `json:"context_score"`
}

// EventSink receives dashboard events. A nil sink disables emission.
type EventSink interface {
	Publish(event DashboardEvent)
}

// Result is the response for one processed input.
type Result struct {
	Success         bool                    `json:"success"`
	Task            *Task                   `json:"task_entry,omitempty"`
	Recommendations []Recommendation        `json:"recommendations,omitempty"`
	ContextInsights *contexttracker.Insights `json:"context_insights,omitempty"`
}

// PlatformStats aggregates the task queue across all users.
type PlatformStats struct {
	TotalTasks           int            `json:"total_tasks"`
	PlatformDistribution map[string]int `json:"platform_distribution"`
	TypeDistribution     map[string]int `json:"type_distribution"`
	PriorityDistribution map[string]int `json:"priority_distribution"`
	StatusDistribution   map[string]int `json:"status_distribution"`
}

// ValidationError reports which required input fields are missing.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
}

// taskTypeOrder fixes scoring iteration so equal keyword counts always pick
// the same type.
var taskTypeOrder = []string{"meeting", "reminder", "follow-up", "urgent", "action_required", "info"}

var taskTypeKeywords = map[string][]string{
	"meeting":         {"meet", "meeting", "call", "conference", "discuss", "presentation", "demo"},
	"reminder":        {"remind", "remember", "don't forget", "deadline", "due", "schedule"},
	"follow-up":       {"follow up", "check", "update", "status", "progress", "follow-up"},
	"urgent":          {"urgent", "asap", "immediately", "emergency", "critical", "important"},
	"action_required": {"need", "required", "must", "should", "action", "complete", "finish"},
	"info":            {"info", "information", "fyi", "notice", "announcement", "update"},
}

// Handler is the flow integrator. It owns the per-user task queue and talks
// to the context tracker; database and event sink are optional collaborators.
type Handler struct {
	mu sync.Mutex

	tracker   *contexttracker.Tracker
	queueFile string
	queue     map[string][]*Task
	db        *gorm.DB
	events    EventSink

	now   func() time.Time
	newID func() string
}

func New(tracker *contexttracker.Tracker, queueFile string, db *gorm.DB, events EventSink) *Handler {
	h := &Handler{
		tracker:   tracker,
		queueFile: queueFile,
		queue:     make(map[string][]*Task),
		db:        db,
		events:    events,
		now:       time.Now,
		newID: func() string {
			return "task_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
		},
	}
	h.loadQueue()
	return h
}

func (h *Handler) loadQueue() {
	raw, err := os.ReadFile(h.queueFile)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		log.Printf("[Flow] WARNING: failed to read task queue: %v", err)
		return
	}
	if err := json.Unmarshal(raw, &h.queue); err != nil {
		log.Printf("[Flow] WARNING: failed to parse task queue: %v", err)
		h.queue = make(map[string][]*Task)
	}
}

func (h *Handler) saveQueue() {
	raw, err := json.MarshalIndent(h.queue, "", "  ")
	if err != nil {
		log.Printf("[Flow] WARNING: failed to encode task queue: %v", err)
		return
	}
	if err := os.WriteFile(h.queueFile, raw, 0o644); err != nil {
		log.Printf("[Flow] WARNING: failed to save task queue: %v", err)
	}
}

func validateInput(in Input) error {
	var missing []string
	if in.UserID == "" {
		missing = append(missing, "user_id")
	}
	if in.Platform == "" {
		missing = append(missing, "platform")
	}
	if in.MessageText == "" {
		missing = append(missing, "message_text")
	}
	if in.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if in.Summary == "" {
		missing = append(missing, "summary")
	}
	if in.Type == "" {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Process turns one summarized message into a queued task with
// recommendations and refreshed context insights.
func (h *Handler) Process(in Input) (*Result, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	h.tracker.UpdateContext(in.UserID, contexttracker.Interaction{
		Timestamp:   in.Timestamp,
		Platform:    in.Platform,
		MessageType: in.Type,
		Summary:     in.Summary,
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	taskID := h.newID()
	scheduledFor := h.extractScheduleInfo(in.MessageText, in.Timestamp)
	taskType := classifyTaskType(in.MessageText, in.Summary, in.Type)
	createdAt := h.now().UTC().Format(time.RFC3339)

	task := &Task{
		UserID:          in.UserID,
		TaskID:          taskID,
		Platform:        in.Platform,
		TaskSummary:     extractTaskSummary(in.Summary, in.MessageText),
		TaskType:        taskType,
		ScheduledFor:    scheduledFor,
		Status:          "pending",
		CreatedAt:       createdAt,
		OriginalMessage: in.MessageText,
		Summary:         in.Summary,
		Priority:        calculatePriority(in.MessageText, taskType),
		ContextScore:    h.tracker.GetContextScore(in.UserID, taskType),
	}

	recommendations := generateRecommendations(task)
	if raw, err := json.Marshal(recommendations); err == nil {
		task.Recommendations = raw
	}

	h.queue[in.UserID] = append(h.queue[in.UserID], task)
	h.saveQueue()

	if h.db != nil {
		if err := h.db.Create(task).Error; err != nil {
			log.Printf("[Flow] WARNING: failed to persist task %s: %v", taskID, err)
		}
	}

	h.tracker.AddTask(in.UserID, contexttracker.TaskEntry{
		TaskID:       taskID,
		TaskType:     taskType,
		ScheduledFor: scheduledFor,
		CreatedAt:    createdAt,
		Platform:     in.Platform,
	}, "scheduled")

	if h.events != nil {
		h.events.Publish(DashboardEvent{
			Timestamp:            createdAt,
			UserID:               task.UserID,
			TaskID:               task.TaskID,
			Platform:             task.Platform,
			TaskType:             task.TaskType,
			Priority:             task.Priority,
			Status:               "processed",
			RecommendationsCount: len(recommendations),
			ContextScore:         task.ContextScore,
		})
	}

	log.Printf("[Flow] Created task %s (%s/%s) for %s", taskID, taskType, task.Priority, in.UserID)

	return &Result{
		Success:         true,
		Task:            task,
		Recommendations: recommendations,
		ContextInsights: h.tracker.GetUserInsights(in.UserID),
	}, nil
}

// extractScheduleInfo resolves a schedule expression in the message against
// its own timestamp. Returns "" when nothing parseable is present.
func (h *Handler) extractScheduleInfo(messageText, timestamp string) string {
	base, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		base = h.now().UTC()
	}
	when, ok := schedule.Parse(messageText, base)
	if !ok {
		return ""
	}
	return when.UTC().Format(time.RFC3339)
}

// classifyTaskType scores the fixed type set over message plus summary. The
// upstream suggestion wins whenever it has at least one keyword hit.
func classifyTaskType(messageText, summary, suggestedType string) string {
	text := strings.ToLower(messageText + " " + summary)

	scores := make(map[string]int, len(taskTypeOrder))
	for _, taskType := range taskTypeOrder {
		for _, kw := range taskTypeKeywords[taskType] {
			if strings.Contains(text, kw) {
				scores[taskType]++
			}
		}
	}

	if scores[suggestedType] > 0 {
		return suggestedType
	}

	best := taskTypeOrder[0]
	for _, taskType := range taskTypeOrder[1:] {
		if scores[taskType] > scores[best] {
			best = taskType
		}
	}
	if scores[best] > 0 {
		return best
	}
	return suggestedType
}

func extractTaskSummary(summary, messageText string) string {
	if trimmed := strings.TrimSpace(summary); trimmed != "" {
		cleaned := strings.ToLower(trimmed)
		for _, prefix := range []string{"request for ", "need to ", "should ", "must ", "please "} {
			if strings.HasPrefix(cleaned, prefix) {
				cleaned = cleaned[len(prefix):]
				break
			}
		}
		return capitalize(cleaned)
	}

	sentences := strings.SplitN(messageText, ".", 2)
	first := sentences[0]
	if len(first) > 100 {
		return first[:100] + "..."
	}
	if first != "" {
		return first
	}
	if len(messageText) > 50 {
		messageText = messageText[:50]
	}
	return "Task from " + messageText + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func calculatePriority(messageText, taskType string) string {
	lower := strings.ToLower(messageText)
	for _, w := range []string{"urgent", "asap", "immediately", "critical", "emergency"} {
		if strings.Contains(lower, w) {
			return "high"
		}
	}
	if taskType == "urgent" {
		return "high"
	}
	for _, w := range []string{"important", "soon", "deadline", "meeting"} {
		if strings.Contains(lower, w) {
			return "medium"
		}
	}
	if taskType == "meeting" {
		return "medium"
	}
	return "low"
}

// GetUserTasks returns a user's tasks, optionally filtered by status.
func (h *Handler) GetUserTasks(userID, status string) []*Task {
	h.mu.Lock()
	defer h.mu.Unlock()

	tasks := h.queue[userID]
	out := make([]*Task, 0, len(tasks))
	for _, task := range tasks {
		if status == "" || task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

// UpdateTaskStatus changes a task's status in the queue (and database when
// attached) and mirrors terminal states into the context tracker.
func (h *Handler) UpdateTaskStatus(userID, taskID, newStatus string) bool {
	h.mu.Lock()
	var updated *Task
	for _, task := range h.queue[userID] {
		if task.TaskID == taskID {
			task.Status = newStatus
			task.UpdatedAt = h.now().UTC().Format(time.RFC3339)
			updated = task
			break
		}
	}
	if updated != nil {
		h.saveQueue()
		if h.db != nil {
			err := h.db.Model(&Task{}).Where("task_id = ?", taskID).
				Updates(map[string]interface{}{"status": newStatus, "updated_at": updated.UpdatedAt}).Error
			if err != nil {
				log.Printf("[Flow] WARNING: failed to update task %s in db: %v", taskID, err)
			}
		}
	}
	h.mu.Unlock()

	if updated == nil {
		return false
	}
	switch newStatus {
	case "completed", "missed":
		h.tracker.UpdateTaskStatus(userID, taskID, newStatus)
	}
	return true
}

// GetPlatformStats aggregates the whole queue.
func (h *Handler) GetPlatformStats() *PlatformStats {
	h.mu.Lock()
	defer h.mu.Unlock()

	stats := &PlatformStats{
		PlatformDistribution: map[string]int{},
		TypeDistribution:     map[string]int{},
		PriorityDistribution: map[string]int{},
		StatusDistribution:   map[string]int{},
	}
	for _, tasks := range h.queue {
		for _, task := range tasks {
			stats.TotalTasks++
			stats.PlatformDistribution[task.Platform]++
			stats.TypeDistribution[task.TaskType]++
			stats.PriorityDistribution[task.Priority]++
			stats.StatusDistribution[task.Status]++
		}
	}
	return stats
}
