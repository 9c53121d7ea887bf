package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inboxpilot/internal/summarizer"
)

type SummarizeRequest struct {
	summarizer.Message
	UseContext *bool `json:"use_context"`
}

type BatchSummarizeRequest struct {
	Messages   []summarizer.Message `json:"messages"`
	UseContext *bool                `json:"use_context"`
}

type SummarizerFeedbackRequest struct {
	SummaryID   string `json:"summary_id"`
	Feedback    string `json:"feedback"`
	Comment     string `json:"comment"`
	SummaryText string `json:"summary_text"`
}

func useContextOrDefault(flag *bool) bool {
	if flag == nil {
		return true
	}
	return *flag
}

// POST /summarize
func SummarizeHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.MessageText == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "message_text required"}})
			return
		}
		res := svc.Summarizer.Summarize(req.Message, useContextOrDefault(req.UseContext))
		c.JSON(http.StatusOK, res)
	}
}

// POST /summarize/batch
func BatchSummarizeHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req BatchSummarizeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if len(req.Messages) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "messages required"}})
			return
		}
		results := svc.Summarizer.BatchSummarize(req.Messages, useContextOrDefault(req.UseContext))
		c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
	}
}

// POST /summarize/feedback
func SummarizerFeedbackHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SummarizerFeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "Invalid request"}})
			return
		}
		if req.SummaryID == "" || req.Feedback == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": "summary_id and feedback required"}})
			return
		}
		svc.Summarizer.ReceiveFeedback(req.SummaryID, req.Feedback, req.Comment, req.SummaryText)
		c.JSON(http.StatusOK, gin.H{"recorded": true})
	}
}

// GET /summarizer/stats
func SummarizerStatsHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"usage":       svc.Summarizer.GetStats(),
			"performance": svc.Summarizer.GetPerformanceStats(),
		})
	}
}

// GET /summarizer/context/:userId/:platform
func UserContextHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		messages := svc.Summarizer.GetUserContext(c.Param("userId"), c.Param("platform"))
		c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
	}
}
