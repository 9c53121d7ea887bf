package flow

import "strings"

var typeRecommendations = map[string][]Recommendation{
	"meeting": {
		{Action: "calendar_block", Description: "Block time in calendar", Priority: "high"},
		{Action: "prepare_agenda", Description: "Prepare meeting agenda", Priority: "medium"},
		{Action: "send_confirmation", Description: "Send meeting confirmation", Priority: "medium"},
	},
	"reminder": {
		{Action: "set_reminder", Description: "Set reminder notification", Priority: "high"},
		{Action: "add_to_todo", Description: "Add to todo list", Priority: "medium"},
	},
	"follow-up": {
		{Action: "schedule_followup", Description: "Schedule follow-up time", Priority: "medium"},
		{Action: "gather_info", Description: "Gather required information", Priority: "high"},
	},
	"action_required": {
		{Action: "create_subtasks", Description: "Break down into actionable subtasks", Priority: "high"},
		{Action: "assign_owner", Description: "Assign responsible owner", Priority: "high"},
	},
	"complaint": {
		{Action: "acknowledge_issue", Description: "Acknowledge and gather details", Priority: "high"},
		{Action: "create_bug_ticket", Description: "Open bug/ticket with reproduction steps", Priority: "high"},
	},
	"sales": {
		{Action: "prepare_quote", Description: "Prepare quote/pricing details", Priority: "medium"},
		{Action: "followup_customer", Description: "Follow up with customer", Priority: "medium"},
	},
	"delivery": {
		{Action: "check_tracking", Description: "Check shipment tracking and ETA", Priority: "medium"},
		{Action: "notify_recipient", Description: "Notify recipient of delivery status", Priority: "low"},
	},
	"cancellation": {
		{Action: "confirm_cancellation", Description: "Confirm cancellation with stakeholder", Priority: "high"},
		{Action: "process_refund", Description: "Process refund/return if applicable", Priority: "medium"},
	},
	"info": {
		{Action: "document_info", Description: "Record key details in knowledge base", Priority: "low"},
	},
}

var scheduleHintWords = []string{"schedule", "meeting", "call", "tomorrow", "next", "am", "pm"}

// generateRecommendations builds the action list for a task: type-specific
// actions, an immediate-attention marker for high priority, a calendar step
// when a time was parsed (or a parse suggestion when one seems present), and
// a minimal default set when nothing else applies.
func generateRecommendations(task *Task) []Recommendation {
	var recs []Recommendation
	recs = append(recs, typeRecommendations[task.TaskType]...)

	if task.Priority == "high" {
		recs = append([]Recommendation{{
			Action:      "immediate_attention",
			Description: "Requires immediate attention",
			Priority:    "critical",
		}}, recs...)
	}

	if task.ScheduledFor != "" {
		recs = append(recs, Recommendation{
			Action:      "calendar_reminder",
			Description: "Set calendar reminder for " + task.ScheduledFor,
			Priority:    "high",
		})
	} else {
		summaryLower := strings.ToLower(task.TaskSummary)
		for _, hint := range scheduleHintWords {
			if strings.Contains(summaryLower, hint) {
				recs = append(recs, Recommendation{
					Action:      "suggest_schedule_parse",
					Description: "Extract/confirm time and add to calendar",
					Priority:    "medium",
				})
				break
			}
		}
	}

	if len(recs) == 0 {
		recs = []Recommendation{
			{Action: "add_to_todo", Description: "Add to general todo list", Priority: "low"},
			{Action: "clarify_requirements", Description: "Clarify scope and next steps", Priority: "medium"},
		}
	}
	return recs
}
