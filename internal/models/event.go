package models

// Event names routed through the event emitter. Each webhook route emits
// exactly one event per valid call.
const (
	EventPipelineStart   = "pipeline.start"
	EventOutlineApproved = "outline.approved"
	EventDraftApproved   = "draft.approved"
	EventBatchTrigger    = "batch.trigger"
)

// StartPayload is the body of POST /api/webhook/start and, verbatim, the
// data of the pipeline.start event.
type StartPayload struct {
	RecordID    string `json:"recordId"`
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	IndustryID  string `json:"industryId,omitempty"`
	PersonaID   string `json:"personaId,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
}

// OutlineApprovedPayload is the minimal body of POST /api/webhook/outline-approved.
type OutlineApprovedPayload struct {
	RecordID string `json:"recordId"`
	Outline  string `json:"outline"`
	Feedback string `json:"feedback,omitempty"`
}

// OutlineApprovedEvent is the enriched outline.approved event. The gateway
// merges the minimal webhook payload with fields re-fetched from the record
// store, so the draft stage can run without another item lookup.
type OutlineApprovedEvent struct {
	OutlineApprovedPayload
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	IndustryID  string `json:"industryId,omitempty"`
	PersonaID   string `json:"personaId,omitempty"`
	Keywords    string `json:"keywords,omitempty"`
	RunTraceID  string `json:"runTraceId,omitempty"`
}

// DraftApprovedPayload is the body of POST /api/webhook/draft-approved and,
// verbatim, the data of the draft.approved event. Finalize needs nothing
// beyond draft and feedback.
type DraftApprovedPayload struct {
	RecordID string `json:"recordId"`
	Draft    string `json:"draft"`
	Feedback string `json:"feedback,omitempty"`
}

// BatchPayload is the body of POST /api/webhook/batch and the data of the
// batch.trigger event.
type BatchPayload struct {
	RecordIDs []string `json:"recordIds"`
	Action    string   `json:"action"`
}

// MaxBatchSize caps how many record ids one batch webhook may carry.
const MaxBatchSize = 100
