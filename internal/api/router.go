package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/config"
	"github.com/content-pipeline-api/internal/events"
	"github.com/content-pipeline-api/internal/keywords"
	"github.com/content-pipeline-api/internal/metrics"
	"github.com/content-pipeline-api/internal/records"
)

// PromptPinger is the connectivity check the langfuse diagnostics route needs.
type PromptPinger interface {
	Ping(ctx context.Context, promptName string) error
}

// Deps holds everything the router's handlers depend on.
type Deps struct {
	Store    records.ContentStore
	Emitter  events.Emitter
	Deduper  *events.Deduper
	Keywords keywords.Researcher
	Prompts  PromptPinger
	Metrics  *metrics.Metrics
}

// NewRouter creates and configures the Gin router
func NewRouter(deps *Deps, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	webhookHandler := NewWebhookHandler(deps, log)
	keywordHandler := NewKeywordHandler(deps.Keywords, log)
	diagnosticsHandler := NewDiagnosticsHandler(deps.Store, deps.Prompts, log)

	// Health check and metrics
	router.GET("/health", healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Everything under /api is gated by the shared webhook secret
	apiGroup := router.Group("/api")
	apiGroup.Use(secretMiddleware(cfg.Webhook.Secret, deps.Metrics, log))
	{
		webhook := apiGroup.Group("/webhook")
		{
			webhook.POST("/start", webhookHandler.Start)
			webhook.POST("/outline-approved", webhookHandler.OutlineApproved)
			webhook.POST("/draft-approved", webhookHandler.DraftApproved)
			webhook.POST("/batch", webhookHandler.Batch)
		}

		keyword := apiGroup.Group("/keyword")
		{
			keyword.POST("/research", keywordHandler.Research)
			keyword.POST("/cluster", keywordHandler.Cluster)
			keyword.POST("/generate-title", keywordHandler.GenerateTitle)
			keyword.POST("/promote", keywordHandler.Promote)
			keyword.POST("/gap-scan", keywordHandler.GapScan)
		}

		diagnostics := apiGroup.Group("/diagnostics")
		{
			diagnostics.GET("/airtable", diagnosticsHandler.Airtable)
			diagnostics.GET("/langfuse", diagnosticsHandler.Langfuse)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// secretMiddleware rejects requests without the shared webhook secret
func secretMiddleware(secret string, m *metrics.Metrics, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-Webhook-Secret")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			if m != nil {
				m.WebhookRequests.WithLabelValues(c.FullPath(), "unauthorized").Inc()
			}
			respondError(c, log, apperrors.NewAuthError("invalid or missing webhook secret"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Webhook-Secret")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
