package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/dispatch"
	"github.com/content-pipeline-api/internal/mocks"
	"github.com/content-pipeline-api/internal/models"
)

func TestBatchRunEmitsPerItem(t *testing.T) {
	store := mocks.NewMockContentStore()
	store.Items["rec1"] = map[string]any{
		models.FieldTitle:       "First",
		models.FieldContentType: "blog",
		models.FieldKeywords:    "alpha",
	}
	store.Items["rec2"] = map[string]any{
		models.FieldTitle:       "Second",
		models.FieldContentType: "whitepaper",
		models.FieldIndustry:    []any{"recInd1"},
	}
	emitter := &mocks.MockEmitter{}

	b := dispatch.NewBatchDispatcher(store, emitter, zerolog.Nop())
	result, err := b.Run(context.Background(), models.BatchPayload{
		RecordIDs: []string{"rec1", "rec2"},
		Action:    "generate",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Started) != 2 || len(result.Failed) != 0 {
		t.Fatalf("Expected 2 started and 0 failed, got %+v", result)
	}

	emitted := emitter.Emitted()
	if len(emitted) != 2 {
		t.Fatalf("Expected 2 start events, got %d", len(emitted))
	}
	for _, ev := range emitted {
		if ev.Name != models.EventPipelineStart {
			t.Errorf("Expected pipeline.start, got %s", ev.Name)
		}
	}
	// Each event carries that item's own fields
	second := emitted[1].Data.(models.StartPayload)
	if second.RecordID != "rec2" || second.ContentType != "whitepaper" || second.IndustryID != "recInd1" {
		t.Errorf("Start payload not built from item fields: %+v", second)
	}

	// One bulk status update covering the dispatched items
	if len(store.BatchStatusCalls) != 1 || len(store.BatchStatusCalls[0]) != 2 {
		t.Errorf("Expected one bulk update for 2 items, got %v", store.BatchStatusCalls)
	}
	if store.FieldsOf("rec1")[models.FieldStatus] != string(models.StatusGenerating) {
		t.Errorf("Expected rec1 moved to Generating")
	}
}

func TestBatchRunIsolatesFailures(t *testing.T) {
	store := mocks.NewMockContentStore()
	store.Items["rec1"] = map[string]any{models.FieldTitle: "First", models.FieldContentType: "blog"}
	// rec2 does not exist
	store.Items["rec3"] = map[string]any{models.FieldTitle: "Third", models.FieldContentType: "blog"}
	emitter := &mocks.MockEmitter{}

	b := dispatch.NewBatchDispatcher(store, emitter, zerolog.Nop())
	result, err := b.Run(context.Background(), models.BatchPayload{
		RecordIDs: []string{"rec1", "rec2", "rec3"},
		Action:    "generate",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Started) != 2 {
		t.Errorf("Expected the other items to proceed, got started=%v", result.Started)
	}
	if len(result.Failed) != 1 || result.Failed[0].RecordID != "rec2" {
		t.Errorf("Expected rec2 isolated as failed, got %+v", result.Failed)
	}
	if len(emitter.Emitted()) != 2 {
		t.Errorf("Expected 2 events for the surviving items, got %d", len(emitter.Emitted()))
	}
	// The failed item is excluded from the bulk status update
	if len(store.BatchStatusCalls) != 1 || len(store.BatchStatusCalls[0]) != 2 {
		t.Errorf("Expected bulk update for 2 items, got %v", store.BatchStatusCalls)
	}
}

func TestBatchRunEmitFailure(t *testing.T) {
	store := mocks.NewMockContentStore()
	store.Items["rec1"] = map[string]any{models.FieldTitle: "First", models.FieldContentType: "blog"}
	emitter := &mocks.MockEmitter{
		EmitFunc: func(ctx context.Context, name string, data any) error {
			return errors.New("dispatcher is shut down")
		},
	}

	b := dispatch.NewBatchDispatcher(store, emitter, zerolog.Nop())
	result, err := b.Run(context.Background(), models.BatchPayload{
		RecordIDs: []string{"rec1"},
		Action:    "generate",
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Started) != 0 || len(result.Failed) != 1 {
		t.Errorf("Expected emit failure recorded, got %+v", result)
	}
	// No status update when nothing started
	if len(store.BatchStatusCalls) != 0 {
		t.Errorf("Expected no bulk update, got %v", store.BatchStatusCalls)
	}
}
