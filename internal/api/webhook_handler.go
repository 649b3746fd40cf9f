package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/events"
	"github.com/content-pipeline-api/internal/metrics"
	"github.com/content-pipeline-api/internal/models"
	"github.com/content-pipeline-api/internal/records"
	"github.com/content-pipeline-api/internal/validation"
)

// WebhookHandler turns status-change webhooks from the record store into
// internal events. Exactly one event is emitted per valid call; duplicate
// deliveries inside the dedupe window are suppressed.
type WebhookHandler struct {
	store   records.ContentStore
	emitter events.Emitter
	deduper *events.Deduper
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(deps *Deps, log zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		store:   deps.Store,
		emitter: deps.Emitter,
		deduper: deps.Deduper,
		metrics: deps.Metrics,
		log:     log.With().Str("handler", "webhook").Logger(),
	}
}

// Start handles POST /api/webhook/start. The payload already carries
// everything the outline stage needs, so it is emitted verbatim.
func (h *WebhookHandler) Start(c *gin.Context) {
	var payload models.StartPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.fail(c, "start", apperrors.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}
	if err := validation.ValidateStart(&payload); err != nil {
		h.fail(c, "start", err)
		return
	}

	h.emit(c, "start", models.EventPipelineStart, payload.RecordID, payload)
}

// OutlineApproved handles POST /api/webhook/outline-approved. The minimal
// payload is enriched from the stored record: the webhook body may be stale,
// so title and content type are re-read and re-checked before the draft
// stage is triggered.
func (h *WebhookHandler) OutlineApproved(c *gin.Context) {
	var payload models.OutlineApprovedPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.fail(c, "outline-approved", apperrors.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}
	if err := validation.ValidateOutlineApproved(&payload); err != nil {
		h.fail(c, "outline-approved", err)
		return
	}

	fields, err := h.store.GetItemFields(c.Request.Context(), payload.RecordID)
	if err != nil {
		h.fail(c, "outline-approved", err)
		return
	}
	if err := validation.RequireText(fields, models.FieldTitle); err != nil {
		h.fail(c, "outline-approved", err)
		return
	}
	if err := validation.RequireText(fields, models.FieldContentType); err != nil {
		h.fail(c, "outline-approved", err)
		return
	}

	event := models.OutlineApprovedEvent{
		OutlineApprovedPayload: payload,
		Title:                  models.StringField(fields, models.FieldTitle),
		ContentType:            models.StringField(fields, models.FieldContentType),
		IndustryID:             models.FirstLink(fields, models.FieldIndustry),
		PersonaID:              models.FirstLink(fields, models.FieldPersona),
		Keywords:               models.StringField(fields, models.FieldKeywords),
		RunTraceID:             models.StringField(fields, models.FieldRunTraceID),
	}
	h.emit(c, "outline-approved", models.EventOutlineApproved, payload.RecordID, event)
}

// DraftApproved handles POST /api/webhook/draft-approved. Finalize only
// needs draft and feedback, so no enrichment beyond an existence check.
func (h *WebhookHandler) DraftApproved(c *gin.Context) {
	var payload models.DraftApprovedPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.fail(c, "draft-approved", apperrors.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}
	if err := validation.ValidateDraftApproved(&payload); err != nil {
		h.fail(c, "draft-approved", err)
		return
	}

	if _, err := h.store.GetItemFields(c.Request.Context(), payload.RecordID); err != nil {
		h.fail(c, "draft-approved", err)
		return
	}

	h.emit(c, "draft-approved", models.EventDraftApproved, payload.RecordID, payload)
}

// Batch handles POST /api/webhook/batch.
func (h *WebhookHandler) Batch(c *gin.Context) {
	var payload models.BatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.fail(c, "batch", apperrors.NewValidationError("body", "invalid request body: "+err.Error()))
		return
	}
	if err := validation.ValidateBatch(&payload); err != nil {
		h.fail(c, "batch", err)
		return
	}

	// Batch dedupe keys on the full id list so two different batches that
	// happen to share a first record id are not conflated.
	h.emit(c, "batch", models.EventBatchTrigger, strings.Join(payload.RecordIDs, ","), payload)
}

// emit suppresses duplicates, emits exactly one event, and writes the
// success response. The dedupe key is marked only after a successful emit:
// a failed emit returns an error status and the client's retry must go
// through, not be swallowed as a duplicate.
func (h *WebhookHandler) emit(c *gin.Context, route, eventName, dedupeKey string, data any) {
	key := dedupeKey + "|" + eventName
	if h.deduper != nil && h.deduper.Seen(key) {
		h.count(route, "deduplicated")
		h.log.Info().Str("dedupe_key", dedupeKey).Str("event", eventName).Msg("Duplicate webhook suppressed")
		c.JSON(http.StatusOK, gin.H{"success": true, "deduplicated": true})
		return
	}

	if err := h.emitter.Emit(c.Request.Context(), eventName, data); err != nil {
		h.fail(c, route, err)
		return
	}
	if h.deduper != nil {
		h.deduper.Mark(key)
	}

	if h.metrics != nil {
		h.metrics.EventsEmitted.WithLabelValues(eventName).Inc()
	}
	h.count(route, "ok")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *WebhookHandler) fail(c *gin.Context, route string, err error) {
	h.count(route, "error")
	respondError(c, h.log, err)
}

func (h *WebhookHandler) count(route, outcome string) {
	if h.metrics != nil {
		h.metrics.WebhookRequests.WithLabelValues(route, outcome).Inc()
	}
}
