package records

import (
	"context"

	"github.com/content-pipeline-api/internal/models"
)

// Table names in the content base.
const (
	TableContentItems     = "Content Items"
	TableIndustries       = "Industries"
	TablePersonas         = "Personas"
	TableContextArtifacts = "Context Artifacts"
)

// ContentStore defines the record operations the pipeline needs.
type ContentStore interface {
	GetItem(ctx context.Context, id string) (*models.ContentItem, error)
	GetItemFields(ctx context.Context, id string) (map[string]any, error)
	UpdateItem(ctx context.Context, id string, fields map[string]any) error
	BatchUpdateStatus(ctx context.Context, ids []string, status models.Status) error
	CreateItem(ctx context.Context, fields map[string]any) (string, error)
	GetIndustry(ctx context.Context, id string) (*models.Industry, error)
	GetPersona(ctx context.Context, id string) (*models.Persona, error)
	ListActiveArtifacts(ctx context.Context) ([]models.ContextArtifact, error)
}

// contentStore is the Airtable-backed ContentStore.
type contentStore struct {
	client *Client
}

// Verify interface compliance
var _ ContentStore = (*contentStore)(nil)

// NewContentStore creates a ContentStore over the given base client.
func NewContentStore(client *Client) ContentStore {
	return &contentStore{client: client}
}

func (s *contentStore) GetItem(ctx context.Context, id string) (*models.ContentItem, error) {
	rec, err := s.client.GetRecord(ctx, TableContentItems, id)
	if err != nil {
		return nil, err
	}
	return models.ContentItemFromFields(rec.ID, rec.Fields), nil
}

// GetItemFields returns the raw fields map. The webhook gateway validates
// Title and Content Type on the raw map so it can distinguish a missing
// field from a wrong-typed one from a blank one.
func (s *contentStore) GetItemFields(ctx context.Context, id string) (map[string]any, error) {
	rec, err := s.client.GetRecord(ctx, TableContentItems, id)
	if err != nil {
		return nil, err
	}
	return rec.Fields, nil
}

func (s *contentStore) UpdateItem(ctx context.Context, id string, fields map[string]any) error {
	return s.client.UpdateRecord(ctx, TableContentItems, id, fields)
}

func (s *contentStore) BatchUpdateStatus(ctx context.Context, ids []string, status models.Status) error {
	updates := make([]RecordUpdate, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, RecordUpdate{
			ID:     id,
			Fields: map[string]any{models.FieldStatus: string(status)},
		})
	}
	return s.client.BatchUpdate(ctx, TableContentItems, updates)
}

func (s *contentStore) CreateItem(ctx context.Context, fields map[string]any) (string, error) {
	return s.client.CreateRecord(ctx, TableContentItems, fields)
}

func (s *contentStore) GetIndustry(ctx context.Context, id string) (*models.Industry, error) {
	rec, err := s.client.GetRecord(ctx, TableIndustries, id)
	if err != nil {
		return nil, err
	}
	return &models.Industry{
		ID:          rec.ID,
		Name:        models.StringField(rec.Fields, "Name"),
		Description: models.StringField(rec.Fields, "Description"),
		PainPoints:  models.StringField(rec.Fields, "Pain Points"),
	}, nil
}

func (s *contentStore) GetPersona(ctx context.Context, id string) (*models.Persona, error) {
	rec, err := s.client.GetRecord(ctx, TablePersonas, id)
	if err != nil {
		return nil, err
	}
	return &models.Persona{
		ID:         rec.ID,
		Name:       models.StringField(rec.Fields, "Name"),
		Goals:      models.StringField(rec.Fields, "Goals"),
		Objections: models.StringField(rec.Fields, "Objections"),
	}, nil
}

func (s *contentStore) ListActiveArtifacts(ctx context.Context) ([]models.ContextArtifact, error) {
	recs, err := s.client.ListRecords(ctx, TableContextArtifacts, "{Active} = TRUE()")
	if err != nil {
		return nil, err
	}
	artifacts := make([]models.ContextArtifact, 0, len(recs))
	for _, rec := range recs {
		artifacts = append(artifacts, models.ContextArtifact{
			ID:      rec.ID,
			Name:    models.StringField(rec.Fields, "Name"),
			TypeKey: models.StringField(rec.Fields, "Type"),
			Content: models.StringField(rec.Fields, "Content"),
			Active:  true,
		})
	}
	return artifacts, nil
}

// Ping verifies connectivity and credentials against the content base. With
// a record id it fetches that record; otherwise it lists a page of items.
func (s *contentStore) ping(ctx context.Context, recordID string) error {
	if recordID != "" {
		_, err := s.client.GetRecord(ctx, TableContentItems, recordID)
		return err
	}
	_, err := s.client.ListRecords(ctx, TableContentItems, "")
	return err
}

// Ping exposes a connectivity check for the diagnostics endpoint.
func Ping(ctx context.Context, store ContentStore, recordID string) error {
	if cs, ok := store.(*contentStore); ok {
		return cs.ping(ctx, recordID)
	}
	if recordID != "" {
		_, err := store.GetItemFields(ctx, recordID)
		return err
	}
	_, err := store.ListActiveArtifacts(ctx)
	return err
}
