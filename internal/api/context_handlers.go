package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /context/:userId
func UserInsightsHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Tracker.GetUserInsights(c.Param("userId")))
	}
}

// GET /context/:userId/score?type=scheduling
func ContextScoreHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		score := svc.Tracker.GetContextScore(c.Param("userId"), c.Query("type"))
		c.JSON(http.StatusOK, gin.H{"user_id": c.Param("userId"), "context_score": score})
	}
}

// GET /trends
func TrendsHandler(svc *Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Tracker.PlatformTrends())
	}
}
