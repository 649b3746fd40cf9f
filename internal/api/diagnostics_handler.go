package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/records"
)

// DiagnosticsHandler exposes read-only connectivity checks against the two
// main collaborators. Not part of the workflow contract; operators use these
// to verify credentials after configuration changes.
type DiagnosticsHandler struct {
	store   records.ContentStore
	prompts PromptPinger
	log     zerolog.Logger
}

// NewDiagnosticsHandler creates a new DiagnosticsHandler
func NewDiagnosticsHandler(store records.ContentStore, prompts PromptPinger, log zerolog.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		store:   store,
		prompts: prompts,
		log:     log.With().Str("handler", "diagnostics").Logger(),
	}
}

// Airtable handles GET /api/diagnostics/airtable[?recordId=]
func (h *DiagnosticsHandler) Airtable(c *gin.Context) {
	recordID := c.Query("recordId")
	if err := records.Ping(c.Request.Context(), h.store, recordID); err != nil {
		h.log.Warn().Err(err).Msg("Airtable diagnostics failed")
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Langfuse handles GET /api/diagnostics/langfuse[?promptName=]
func (h *DiagnosticsHandler) Langfuse(c *gin.Context) {
	promptName := c.Query("promptName")
	if err := h.prompts.Ping(c.Request.Context(), promptName); err != nil {
		h.log.Warn().Err(err).Msg("Langfuse diagnostics failed")
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
