package models

// Status represents the workflow status of a content item.
// Transitions only ever move forward through the chain, or to StatusError.
type Status string

const (
	StatusDraft           Status = "Draft"
	StatusReady           Status = "Ready"
	StatusGenerating      Status = "Generating"
	StatusOutlineReview   Status = "OutlineReview"
	StatusOutlineApproved Status = "OutlineApproved"
	StatusDrafting        Status = "Drafting"
	StatusDraftReview     Status = "DraftReview"
	StatusDraftApproved   Status = "DraftApproved"
	StatusComplete        Status = "Complete"
	StatusError           Status = "Error"
)

// Airtable field names for the Content Items table. These are part of the
// external contract: case- and space-sensitive.
const (
	FieldTitle           = "Title"
	FieldContentType     = "Content Type"
	FieldKeywords        = "Keywords"
	FieldStatus          = "Status"
	FieldOutline         = "Outline"
	FieldOutlineFeedback = "Outline Feedback"
	FieldDraft           = "Draft"
	FieldDraftFeedback   = "Draft Feedback"
	FieldFinalContent    = "Final Content"
	FieldIndustry        = "Industry"
	FieldPersona         = "Persona"
	FieldRunTraceID      = "Run Trace ID"
)

// ContentItem is the unit of work moving through the pipeline. It is created
// and status-advanced by humans in the record store; stage functions only
// write content fields and forward status transitions.
type ContentItem struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	ContentType     string `json:"contentType"`
	Keywords        string `json:"keywords,omitempty"`
	Status          Status `json:"status"`
	Outline         string `json:"outline,omitempty"`
	OutlineFeedback string `json:"outlineFeedback,omitempty"`
	Draft           string `json:"draft,omitempty"`
	DraftFeedback   string `json:"draftFeedback,omitempty"`
	FinalContent    string `json:"finalContent,omitempty"`
	IndustryID      string `json:"industryId,omitempty"`
	PersonaID       string `json:"personaId,omitempty"`
	RunTraceID      string `json:"runTraceId,omitempty"`
}

// ContentItemFromFields builds a ContentItem from a raw record fields map.
// Linked-record fields arrive as arrays of record ids; only the first link
// is used.
func ContentItemFromFields(id string, fields map[string]any) *ContentItem {
	return &ContentItem{
		ID:              id,
		Title:           StringField(fields, FieldTitle),
		ContentType:     StringField(fields, FieldContentType),
		Keywords:        StringField(fields, FieldKeywords),
		Status:          Status(StringField(fields, FieldStatus)),
		Outline:         StringField(fields, FieldOutline),
		OutlineFeedback: StringField(fields, FieldOutlineFeedback),
		Draft:           StringField(fields, FieldDraft),
		DraftFeedback:   StringField(fields, FieldDraftFeedback),
		FinalContent:    StringField(fields, FieldFinalContent),
		IndustryID:      FirstLink(fields, FieldIndustry),
		PersonaID:       FirstLink(fields, FieldPersona),
		RunTraceID:      StringField(fields, FieldRunTraceID),
	}
}

// StringField returns the named field as a string, or "" when the field is
// absent or not a string.
func StringField(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}

// FirstLink returns the first record id of a linked-record field, or "".
func FirstLink(fields map[string]any, name string) string {
	links, ok := fields[name].([]any)
	if !ok || len(links) == 0 {
		return ""
	}
	id, _ := links[0].(string)
	return id
}

// Industry is a read-only reference entity describing a target industry.
type Industry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PainPoints  string `json:"painPoints,omitempty"`
}

// Persona is a read-only reference entity describing a target reader.
type Persona struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Goals      string `json:"goals,omitempty"`
	Objections string `json:"objections,omitempty"`
}

// ContextArtifact is a named long-lived text block (voice guidelines, brand
// style, ...) maintained in the record store. Active artifacts are merged
// into the prompt variable map by their type key.
type ContextArtifact struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	TypeKey string `json:"typeKey"`
	Content string `json:"content"`
	Active  bool   `json:"active"`
}
