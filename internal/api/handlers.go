package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inboxpilot/internal/config"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"agent": gin.H{
				"learning_rate":   cfg.Agent.LearningRate,
				"discount_factor": cfg.Agent.DiscountFactor,
				"epsilon":         cfg.Agent.Epsilon,
				"queue_enabled":   cfg.Agent.Queue.Enabled,
			},
			"summarizer": gin.H{
				"max_context_messages": cfg.Summarizer.MaxContextMessages,
				"confidence_threshold": cfg.Summarizer.ConfidenceThreshold,
			},
		})
	}
}
