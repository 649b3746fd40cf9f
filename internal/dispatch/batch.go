// Package dispatch fans a batch.trigger event out into independent
// pipeline.start events plus a bulk status update.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/events"
	"github.com/content-pipeline-api/internal/models"
	"github.com/content-pipeline-api/internal/records"
)

// ItemFailure records one item that could not be dispatched.
type ItemFailure struct {
	RecordID string `json:"recordId"`
	Reason   string `json:"reason"`
}

// Result summarizes one batch run.
type Result struct {
	Started []string      `json:"started"`
	Failed  []ItemFailure `json:"failed,omitempty"`
}

// BatchDispatcher consumes batch.trigger events.
type BatchDispatcher struct {
	store   records.ContentStore
	emitter events.Emitter
	log     zerolog.Logger
}

// NewBatchDispatcher creates a BatchDispatcher.
func NewBatchDispatcher(store records.ContentStore, emitter events.Emitter, log zerolog.Logger) *BatchDispatcher {
	return &BatchDispatcher{
		store:   store,
		emitter: emitter,
		log:     log.With().Str("service", "batch").Logger(),
	}
}

// Register binds the batch handler. The handler is not retried: a re-run
// would re-emit start events for items already dispatched.
func (b *BatchDispatcher) Register(d *events.Dispatcher) {
	d.Register(models.EventBatchTrigger, 1, func(ctx context.Context, data json.RawMessage) error {
		var payload models.BatchPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("failed to decode batch event: %w", err)
		}
		_, err := b.Run(ctx, payload)
		return err
	})
}

// Run loads each item, emits one pipeline.start per item, then bulk-updates
// the dispatched items to Generating. A failing item is isolated: it is
// recorded and the rest of the batch proceeds.
func (b *BatchDispatcher) Run(ctx context.Context, payload models.BatchPayload) (*Result, error) {
	result := &Result{}

	for _, recordID := range payload.RecordIDs {
		item, err := b.store.GetItem(ctx, recordID)
		if err != nil {
			b.log.Warn().Err(err).Str("record_id", recordID).Msg("Skipping item: fetch failed")
			result.Failed = append(result.Failed, ItemFailure{RecordID: recordID, Reason: err.Error()})
			continue
		}

		start := models.StartPayload{
			RecordID:    item.ID,
			Title:       item.Title,
			ContentType: item.ContentType,
			IndustryID:  item.IndustryID,
			PersonaID:   item.PersonaID,
			Keywords:    item.Keywords,
		}
		if err := b.emitter.Emit(ctx, models.EventPipelineStart, start); err != nil {
			b.log.Warn().Err(err).Str("record_id", recordID).Msg("Skipping item: emit failed")
			result.Failed = append(result.Failed, ItemFailure{RecordID: recordID, Reason: err.Error()})
			continue
		}
		result.Started = append(result.Started, recordID)
	}

	if len(result.Started) > 0 {
		if err := b.store.BatchUpdateStatus(ctx, result.Started, models.StatusGenerating); err != nil {
			return result, fmt.Errorf("failed to bulk-update batch status: %w", err)
		}
	}

	b.log.Info().
		Str("action", payload.Action).
		Int("started", len(result.Started)).
		Int("failed", len(result.Failed)).
		Msg("Batch dispatched")
	return result, nil
}
