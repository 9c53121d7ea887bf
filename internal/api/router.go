package api

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"inboxpilot/internal/agent"
	"inboxpilot/internal/auth"
	"inboxpilot/internal/config"
	"inboxpilot/internal/contexttracker"
	"inboxpilot/internal/flow"
	"inboxpilot/internal/summarizer"
)

// Services bundles the domain collaborators the handlers dispatch to.
type Services struct {
	Agent      *agent.Agent
	Summarizer *summarizer.Summarizer
	Tracker    *contexttracker.Tracker
	Flow       *flow.Handler
	Events     *EventHub
}

func SetupRouter(cfg *config.Config, rdb *redis.Client, svc *Services) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/inboxpilot" or any custom path, always starts with '/'

	// API routes
	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb, false), LogoutHandler(rdb))
		group.GET("/auth/me", auth.AuthMiddleware(cfg, rdb, false), MeHandler())

		// --- Triage agent ---
		group.POST("/agent/predict", auth.AuthMiddleware(cfg, rdb, false), PredictHandler(svc))
		group.POST("/agent/feedback", auth.AuthMiddleware(cfg, rdb, false), AgentFeedbackHandler(svc))
		group.GET("/agent/stats", auth.AuthMiddleware(cfg, rdb, false), AgentStatsHandler(svc))
		group.GET("/agent/trace", auth.AuthMiddleware(cfg, rdb, false), AgentTraceHandler(svc))

		// --- Summarizer ---
		group.POST("/summarize", auth.AuthMiddleware(cfg, rdb, false), SummarizeHandler(svc))
		group.POST("/summarize/batch", auth.AuthMiddleware(cfg, rdb, false), BatchSummarizeHandler(svc))
		group.POST("/summarize/feedback", auth.AuthMiddleware(cfg, rdb, false), SummarizerFeedbackHandler(svc))
		group.GET("/summarizer/stats", auth.AuthMiddleware(cfg, rdb, false), SummarizerStatsHandler(svc))
		group.GET("/summarizer/context/:userId/:platform", auth.AuthMiddleware(cfg, rdb, false), UserContextHandler(svc))

		// --- Task flow ---
		group.POST("/flow/process", auth.AuthMiddleware(cfg, rdb, false), FlowProcessHandler(svc))
		group.GET("/flow/tasks/:userId", auth.AuthMiddleware(cfg, rdb, false), ListTasksHandler(svc))
		group.PUT("/flow/tasks/:userId/:taskId/status", auth.AuthMiddleware(cfg, rdb, false), UpdateTaskStatusHandler(svc))
		group.GET("/flow/stats", auth.AuthMiddleware(cfg, rdb, true), FlowStatsHandler(svc))

		// --- User context ---
		group.GET("/context/:userId", auth.AuthMiddleware(cfg, rdb, false), UserInsightsHandler(svc))
		group.GET("/context/:userId/score", auth.AuthMiddleware(cfg, rdb, false), ContextScoreHandler(svc))
		group.GET("/trends", auth.AuthMiddleware(cfg, rdb, true), TrendsHandler(svc))

		// --- Live dashboard events WebSocket ---
		group.GET("/ws/events", WSEventsHandler(cfg, svc))
	}
	return r
}
