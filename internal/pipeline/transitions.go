package pipeline

import "github.com/content-pipeline-api/internal/models"

// Stage describes one row of the workflow transition table: which event
// triggers it, which statuses it moves through, and its retry bound. The
// table is data so an alternate driver could be built over the same chain.
type Stage struct {
	Name          string
	Trigger       string
	WorkingStatus models.Status
	DoneStatus    models.Status
	PromptPrefix  string
	MaxAttempts   int
}

// Stage names, also used as metric labels.
const (
	StageOutline  = "outline"
	StageDraft    = "draft"
	StageFinalize = "finalize"
)

// Transitions is the full outline → draft → finalize chain. Forward motion
// between stages is driven by humans flipping Status in the record store;
// each approval re-enters through the webhook gateway as a fresh event.
var Transitions = []Stage{
	{
		Name:          StageOutline,
		Trigger:       models.EventPipelineStart,
		WorkingStatus: models.StatusGenerating,
		DoneStatus:    models.StatusOutlineReview,
		PromptPrefix:  "outline",
		MaxAttempts:   3,
	},
	{
		Name:          StageDraft,
		Trigger:       models.EventOutlineApproved,
		WorkingStatus: models.StatusDrafting,
		DoneStatus:    models.StatusDraftReview,
		PromptPrefix:  "draft",
		MaxAttempts:   3,
	},
	{
		Name:          StageFinalize,
		Trigger:       models.EventDraftApproved,
		DoneStatus:    models.StatusComplete,
		PromptPrefix:  "finalize",
		MaxAttempts:   3,
	},
}

// StageByTrigger returns the table row for an event name.
func StageByTrigger(event string) (Stage, bool) {
	for _, stage := range Transitions {
		if stage.Trigger == event {
			return stage, true
		}
	}
	return Stage{}, false
}
