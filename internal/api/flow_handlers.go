package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inboxpilot/internal/flow"
)

type TaskStatusRequest struct {
	Status string `json:"status"`
}

var allowedTaskStatuses = map[string]bool{
	"pending":     true,
	"in_progress": true,
	"completed":   true,
	"missed":      true,
	"cancelled":   true,
}

// POST /flow/process
func FlowProcessHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in flow.Input
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		res, err := svc.Flow.Process(in)
		if err != nil {
			var verr *flow.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": verr.Error(), "missing": verr.Missing}})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{"message": "Failed to process message"}})
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GET /flow/tasks/:userId?status=pending
func ListTasksHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		tasks := svc.Flow.GetUserTasks(c.Param("userId"), c.Query("status"))
		c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
	}
}

// PUT /flow/tasks/:userId/:taskId/status
func UpdateTaskStatusHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TaskStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || !allowedTaskStatuses[req.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "status must be one of pending, in_progress, completed, missed, cancelled"}})
			return
		}
		if !svc.Flow.UpdateTaskStatus(c.Param("userId"), c.Param("taskId"), req.Status) {
			c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Task not found"}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"updated": true, "status": req.Status})
	}
}

// GET /flow/stats
func FlowStatsHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Flow.GetPlatformStats())
	}
}
