package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/keywords"
)

// KeywordHandler exposes the research subsystem.
type KeywordHandler struct {
	service keywords.Researcher
	log     zerolog.Logger
}

// NewKeywordHandler creates a new KeywordHandler
func NewKeywordHandler(service keywords.Researcher, log zerolog.Logger) *KeywordHandler {
	return &KeywordHandler{
		service: service,
		log:     log.With().Str("handler", "keyword").Logger(),
	}
}

// Research handles POST /api/keyword/research
func (h *KeywordHandler) Research(c *gin.Context) {
	var req struct {
		SeedKeyword string `json:"seedKeyword"`
		Limit       int    `json:"limit,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperrors.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}

	result, err := h.service.Research(c.Request.Context(), req.SeedKeyword, req.Limit)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cluster handles POST /api/keyword/cluster
func (h *KeywordHandler) Cluster(c *gin.Context) {
	var req struct {
		KeywordIDs []string `json:"keywordIds,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperrors.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}

	idea, err := h.service.Cluster(c.Request.Context(), req.KeywordIDs)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

// GenerateTitle handles POST /api/keyword/generate-title
func (h *KeywordHandler) GenerateTitle(c *gin.Context) {
	var req struct {
		IdeaID string `json:"ideaId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IdeaID == "" {
		respondError(c, h.log, apperrors.NewValidationError("ideaId", "ideaId is required"))
		return
	}

	idea, err := h.service.GenerateTitles(c.Request.Context(), req.IdeaID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, idea)
}

// Promote handles POST /api/keyword/promote
func (h *KeywordHandler) Promote(c *gin.Context) {
	var req struct {
		IdeaID string `json:"ideaId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IdeaID == "" {
		respondError(c, h.log, apperrors.NewValidationError("ideaId", "ideaId is required"))
		return
	}

	itemID, err := h.service.Promote(c.Request.Context(), req.IdeaID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contentItemId": itemID})
}

// GapScan handles POST /api/keyword/gap-scan
func (h *KeywordHandler) GapScan(c *gin.Context) {
	var req struct {
		CompetitorKeywords []string `json:"competitorKeywords"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, apperrors.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}

	entries, err := h.service.GapScan(c.Request.Context(), req.CompetitorKeywords)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
