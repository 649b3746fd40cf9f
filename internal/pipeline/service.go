// Package pipeline implements the stage functions of the content workflow:
// outline, draft, and finalize. Each stage is stateless between calls, runs
// to completion on one event, and terminates after persisting its output.
// Waiting for human approval happens outside the process: the next approval
// arrives as a fresh webhook.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/config"
	"github.com/content-pipeline-api/internal/contextbuilder"
	"github.com/content-pipeline-api/internal/events"
	"github.com/content-pipeline-api/internal/llm"
	"github.com/content-pipeline-api/internal/metrics"
	"github.com/content-pipeline-api/internal/models"
	"github.com/content-pipeline-api/internal/prompts"
	"github.com/content-pipeline-api/internal/records"
)

// Service runs the stage functions.
type Service struct {
	store     records.ContentStore
	compiler  prompts.Compiler
	generator llm.Generator
	assembler *contextbuilder.Assembler
	metrics   *metrics.Metrics
	cfg       config.AnthropicConfig
	log       zerolog.Logger
}

// NewService creates the stage function service.
func NewService(
	store records.ContentStore,
	compiler prompts.Compiler,
	generator llm.Generator,
	assembler *contextbuilder.Assembler,
	m *metrics.Metrics,
	cfg config.AnthropicConfig,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:     store,
		compiler:  compiler,
		generator: generator,
		assembler: assembler,
		metrics:   m,
		cfg:       cfg,
		log:       log.With().Str("service", "pipeline").Logger(),
	}
}

// Register binds the stage functions to their trigger events with the retry
// bounds from the transition table, and installs the terminal failure hook
// that persists Status=Error. Without that hook an exhausted retry would
// leave the record stuck in its working status with the failure visible only
// on the runtime's dashboard.
func (s *Service) Register(d *events.Dispatcher) {
	for _, stage := range Transitions {
		stage := stage
		d.Register(stage.Trigger, stage.MaxAttempts, func(ctx context.Context, data json.RawMessage) error {
			return s.handle(ctx, stage, data)
		})
	}
	d.SetFailureHook(s.MarkFailed)
}

func (s *Service) handle(ctx context.Context, stage Stage, data json.RawMessage) error {
	switch stage.Name {
	case StageOutline:
		var ev models.StartPayload
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to decode %s event: %w", stage.Trigger, err)
		}
		return s.GenerateOutline(ctx, ev)
	case StageDraft:
		var ev models.OutlineApprovedEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to decode %s event: %w", stage.Trigger, err)
		}
		return s.GenerateDraft(ctx, ev)
	case StageFinalize:
		var ev models.DraftApprovedPayload
		if err := json.Unmarshal(data, &ev); err != nil {
			return fmt.Errorf("failed to decode %s event: %w", stage.Trigger, err)
		}
		return s.Finalize(ctx, ev)
	}
	return fmt.Errorf("unknown stage %q", stage.Name)
}

// GenerateOutline handles pipeline.start: mark the item Generating, build
// the outline prompt, generate, and persist the outline for review.
func (s *Service) GenerateOutline(ctx context.Context, ev models.StartPayload) error {
	traceID := uuid.New().String()
	log := s.log.With().Str("stage", StageOutline).Str("record_id", ev.RecordID).Str("trace_id", traceID).Logger()

	// Safe to re-run on retry: the status write is idempotent.
	err := s.store.UpdateItem(ctx, ev.RecordID, map[string]any{
		models.FieldStatus:     string(models.StatusGenerating),
		models.FieldRunTraceID: traceID,
	})
	if err != nil {
		return fmt.Errorf("failed to mark item generating: %w", err)
	}

	vars, err := s.assembler.Assemble(ctx, ev.ContentType, ev.IndustryID, ev.PersonaID)
	if err != nil {
		return fmt.Errorf("failed to assemble context: %w", err)
	}
	vars["title"] = ev.Title
	vars["keywords"] = ev.Keywords

	prompt, err := s.compiler.Compile(ctx, promptName(StageOutline, ev.ContentType), vars)
	if err != nil {
		return err
	}

	result, err := s.generator.Generate(ctx, llm.Request{
		Prompt:    prompt,
		MaxTokens: s.cfg.OutlineMaxTokens,
		Stage:     StageOutline,
		TraceID:   traceID,
	})
	if err != nil {
		return err
	}
	s.countTokens(StageOutline, result)

	err = s.store.UpdateItem(ctx, ev.RecordID, map[string]any{
		models.FieldOutline: result.Text,
		models.FieldStatus:  string(models.StatusOutlineReview),
	})
	if err != nil {
		return fmt.Errorf("failed to persist outline: %w", err)
	}

	s.countRun(StageOutline, "success")
	log.Info().Int64("output_tokens", result.OutputTokens).Msg("Outline generated")
	return nil
}

// GenerateDraft handles outline.approved. The event carries the full item
// context from the gateway's enrichment, so no item lookup is needed here.
func (s *Service) GenerateDraft(ctx context.Context, ev models.OutlineApprovedEvent) error {
	// The outline stage minted the trace id; the whole chain shares it.
	traceID := ev.RunTraceID
	if traceID == "" {
		traceID = ev.RecordID
	}
	log := s.log.With().Str("stage", StageDraft).Str("record_id", ev.RecordID).Str("trace_id", traceID).Logger()

	err := s.store.UpdateItem(ctx, ev.RecordID, map[string]any{
		models.FieldStatus: string(models.StatusDrafting),
	})
	if err != nil {
		return fmt.Errorf("failed to mark item drafting: %w", err)
	}

	vars, err := s.assembler.Assemble(ctx, ev.ContentType, ev.IndustryID, ev.PersonaID)
	if err != nil {
		return fmt.Errorf("failed to assemble context: %w", err)
	}
	vars["title"] = ev.Title
	vars["keywords"] = ev.Keywords
	vars["outline"] = ev.Outline
	vars["outlineFeedback"] = ev.Feedback

	prompt, err := s.compiler.Compile(ctx, promptName(StageDraft, ev.ContentType), vars)
	if err != nil {
		return err
	}

	result, err := s.generator.Generate(ctx, llm.Request{
		Prompt:    prompt,
		MaxTokens: s.cfg.DraftMaxTokens,
		Stage:     StageDraft,
		TraceID:   traceID,
	})
	if err != nil {
		return err
	}
	s.countTokens(StageDraft, result)

	err = s.store.UpdateItem(ctx, ev.RecordID, map[string]any{
		models.FieldDraft:  result.Text,
		models.FieldStatus: string(models.StatusDraftReview),
	})
	if err != nil {
		return fmt.Errorf("failed to persist draft: %w", err)
	}

	s.countRun(StageDraft, "success")
	log.Info().Int64("output_tokens", result.OutputTokens).Msg("Draft generated")
	return nil
}

// Finalize handles draft.approved. With blank feedback the approved draft is
// the final content verbatim and no generation runs; with feedback a revision
// pass runs through the finalize prompt.
func (s *Service) Finalize(ctx context.Context, ev models.DraftApprovedPayload) error {
	log := s.log.With().Str("stage", StageFinalize).Str("record_id", ev.RecordID).Logger()

	if strings.TrimSpace(ev.Feedback) == "" {
		err := s.store.UpdateItem(ctx, ev.RecordID, map[string]any{
			models.FieldFinalContent: ev.Draft,
			models.FieldStatus:       string(models.StatusComplete),
		})
		if err != nil {
			return fmt.Errorf("failed to persist final content: %w", err)
		}
		s.countRun(StageFinalize, "success")
		log.Info().Msg("Draft promoted to final content without revision")
		return nil
	}

	// The draft.approved event is not enriched, so the revision path looks
	// the item up for its content type and references.
	item, err := s.store.GetItem(ctx, ev.RecordID)
	if err != nil {
		return err
	}

	vars, err := s.assembler.Assemble(ctx, item.ContentType, item.IndustryID, item.PersonaID)
	if err != nil {
		return fmt.Errorf("failed to assemble context: %w", err)
	}
	vars["title"] = item.Title
	vars["draft"] = ev.Draft
	vars["draftFeedback"] = ev.Feedback

	prompt, err := s.compiler.Compile(ctx, promptName(StageFinalize, item.ContentType), vars)
	if err != nil {
		return err
	}

	result, err := s.generator.Generate(ctx, llm.Request{
		Prompt:    prompt,
		MaxTokens: s.cfg.FinalizeMaxTokens,
		Stage:     StageFinalize,
		TraceID:   item.RunTraceID,
	})
	if err != nil {
		return err
	}
	s.countTokens(StageFinalize, result)

	err = s.store.UpdateItem(ctx, ev.RecordID, map[string]any{
		models.FieldFinalContent: result.Text,
		models.FieldStatus:       string(models.StatusComplete),
	})
	if err != nil {
		return fmt.Errorf("failed to persist final content: %w", err)
	}

	s.countRun(StageFinalize, "success")
	log.Info().Int64("output_tokens", result.OutputTokens).Msg("Final content generated from feedback")
	return nil
}

// MarkFailed persists Status=Error after a stage exhausts its retries.
func (s *Service) MarkFailed(ctx context.Context, eventName, recordID string, cause error) {
	stage, ok := StageByTrigger(eventName)
	if ok {
		s.countRun(stage.Name, "error")
	}
	if recordID == "" {
		return
	}
	err := s.store.UpdateItem(ctx, recordID, map[string]any{
		models.FieldStatus: string(models.StatusError),
	})
	if err != nil {
		s.log.Error().Err(err).Str("record_id", recordID).Msg("Failed to mark item as errored")
		return
	}
	s.log.Warn().Str("record_id", recordID).Str("event", eventName).AnErr("cause", cause).Msg("Item marked as errored")
}

func promptName(prefix, contentType string) string {
	return prefix + "-" + contentType
}

func (s *Service) countRun(stage, result string) {
	if s.metrics != nil {
		s.metrics.StageRuns.WithLabelValues(stage, result).Inc()
	}
}

func (s *Service) countTokens(stage string, result *llm.Result) {
	if s.metrics == nil {
		return
	}
	s.metrics.LLMTokens.WithLabelValues(stage, "input").Add(float64(result.InputTokens))
	s.metrics.LLMTokens.WithLabelValues(stage, "output").Add(float64(result.OutputTokens))
}
