package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AgentFeedbackRequest struct {
	Message         map[string]interface{} `json:"message"`
	PredictedAction string                 `json:"predicted_action"`
	Feedback        string                 `json:"feedback"`
	CorrectAction   string                 `json:"correct_action"`
}

// POST /agent/predict
// Body is the raw platform payload; the agent normalizes it itself.
func PredictHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var raw map[string]interface{}
		if err := c.ShouldBindJSON(&raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		pred := svc.Agent.PredictAction(raw)
		c.JSON(http.StatusOK, pred)
	}
}

// POST /agent/feedback
func AgentFeedbackHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AgentFeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.PredictedAction == "" || req.Feedback == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "predicted_action and feedback required"}})
			return
		}
		entry, err := svc.Agent.ReceiveFeedback(req.Message, req.PredictedAction, req.Feedback, req.CorrectAction)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": err.Error()}})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recorded": true, "entry": entry})
	}
}

// GET /agent/stats
func AgentStatsHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Agent.GetStatistics())
	}
}

// GET /agent/trace?limit=20
func AgentTraceHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}
		c.JSON(http.StatusOK, gin.H{"trace": svc.Agent.ImprovementTrace(limit)})
	}
}
