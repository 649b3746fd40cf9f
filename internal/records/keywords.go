package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/models"
)

// Table names in the keyword research base.
const (
	TableKeywordBank  = "Keyword Bank"
	TableContentIdeas = "Content Ideas"
)

// KeywordStore defines the record operations the research subsystem needs.
type KeywordStore interface {
	FindKeyword(ctx context.Context, keyword string) (*models.Keyword, error)
	CreateKeyword(ctx context.Context, kw *models.Keyword) (string, error)
	UpdateKeyword(ctx context.Context, kw *models.Keyword) error
	ListUnclustered(ctx context.Context) ([]models.Keyword, error)
	ListKeywords(ctx context.Context) ([]models.Keyword, error)
	GetKeywords(ctx context.Context, ids []string) ([]models.Keyword, error)
	GetIdea(ctx context.Context, id string) (*models.ContentIdea, error)
	CreateIdea(ctx context.Context, idea *models.ContentIdea) (string, error)
	UpdateIdea(ctx context.Context, id string, fields map[string]any) error
}

type keywordStore struct {
	client *Client
}

// Verify interface compliance
var _ KeywordStore = (*keywordStore)(nil)

// NewKeywordStore creates a KeywordStore over the given base client.
func NewKeywordStore(client *Client) KeywordStore {
	return &keywordStore{client: client}
}

// FindKeyword returns the bank entry matching the keyword text, or nil when
// the keyword is not banked yet.
func (s *keywordStore) FindKeyword(ctx context.Context, keyword string) (*models.Keyword, error) {
	formula := fmt.Sprintf("{%s} = %s", models.FieldKeyword, escapeFormulaString(keyword))
	recs, err := s.client.ListRecords(ctx, TableKeywordBank, formula)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	kw := keywordFromRecord(recs[0])
	return &kw, nil
}

func (s *keywordStore) CreateKeyword(ctx context.Context, kw *models.Keyword) (string, error) {
	return s.client.CreateRecord(ctx, TableKeywordBank, keywordFields(kw))
}

func (s *keywordStore) UpdateKeyword(ctx context.Context, kw *models.Keyword) error {
	if kw.ID == "" {
		return apperrors.NewValidationError("id", "keyword id is required for update")
	}
	return s.client.UpdateRecord(ctx, TableKeywordBank, kw.ID, keywordFields(kw))
}

func (s *keywordStore) ListUnclustered(ctx context.Context) ([]models.Keyword, error) {
	formula := fmt.Sprintf("{%s} = BLANK()", models.FieldCluster)
	return s.listWithFormula(ctx, formula)
}

func (s *keywordStore) ListKeywords(ctx context.Context) ([]models.Keyword, error) {
	return s.listWithFormula(ctx, "")
}

func (s *keywordStore) GetKeywords(ctx context.Context, ids []string) ([]models.Keyword, error) {
	keywords := make([]models.Keyword, 0, len(ids))
	for _, id := range ids {
		rec, err := s.client.GetRecord(ctx, TableKeywordBank, id)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, keywordFromRecord(*rec))
	}
	return keywords, nil
}

func (s *keywordStore) listWithFormula(ctx context.Context, formula string) ([]models.Keyword, error) {
	recs, err := s.client.ListRecords(ctx, TableKeywordBank, formula)
	if err != nil {
		return nil, err
	}
	keywords := make([]models.Keyword, 0, len(recs))
	for _, rec := range recs {
		keywords = append(keywords, keywordFromRecord(rec))
	}
	return keywords, nil
}

func (s *keywordStore) GetIdea(ctx context.Context, id string) (*models.ContentIdea, error) {
	rec, err := s.client.GetRecord(ctx, TableContentIdeas, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError("content idea", id)
		}
		return nil, err
	}
	return &models.ContentIdea{
		ID:             rec.ID,
		PrimaryKeyword: models.StringField(rec.Fields, models.FieldPrimaryKeyword),
		KeywordIDs:     linkIDs(rec.Fields, models.FieldMemberKeywords),
		SuggestedType:  models.StringField(rec.Fields, models.FieldSuggestedType),
		TitleOptions:   splitLines(models.StringField(rec.Fields, models.FieldTitleOptions)),
		ContentAngles:  splitLines(models.StringField(rec.Fields, models.FieldContentAngles)),
		Status:         models.StringField(rec.Fields, models.FieldStatus),
	}, nil
}

func (s *keywordStore) CreateIdea(ctx context.Context, idea *models.ContentIdea) (string, error) {
	fields := map[string]any{
		models.FieldPrimaryKeyword: idea.PrimaryKeyword,
		models.FieldMemberKeywords: idea.KeywordIDs,
	}
	if idea.SuggestedType != "" {
		fields[models.FieldSuggestedType] = idea.SuggestedType
	}
	if idea.Status != "" {
		fields[models.FieldStatus] = idea.Status
	}
	if idea.RawResponse != "" {
		fields[models.FieldRawResponse] = idea.RawResponse
	}
	return s.client.CreateRecord(ctx, TableContentIdeas, fields)
}

func (s *keywordStore) UpdateIdea(ctx context.Context, id string, fields map[string]any) error {
	return s.client.UpdateRecord(ctx, TableContentIdeas, id, fields)
}

func keywordFromRecord(rec Record) models.Keyword {
	return models.Keyword{
		ID:               rec.ID,
		Keyword:          models.StringField(rec.Fields, models.FieldKeyword),
		SearchVolume:     intField(rec.Fields, models.FieldSearchVolume),
		Difficulty:       intField(rec.Fields, models.FieldDifficulty),
		Intent:           models.StringField(rec.Fields, models.FieldIntent),
		SERPFeatures:     splitLines(models.StringField(rec.Fields, models.FieldSERPFeatures)),
		Trend:            models.StringField(rec.Fields, models.FieldTrend),
		OpportunityScore: floatField(rec.Fields, models.FieldOpportunityScore),
		QuickWinScore:    floatField(rec.Fields, models.FieldQuickWinScore),
		ClusterID:        models.FirstLink(rec.Fields, models.FieldCluster),
		Status:           models.KeywordStatus(models.StringField(rec.Fields, models.FieldStatus)),
	}
}

func keywordFields(kw *models.Keyword) map[string]any {
	fields := map[string]any{
		models.FieldKeyword:          kw.Keyword,
		models.FieldSearchVolume:     kw.SearchVolume,
		models.FieldDifficulty:       kw.Difficulty,
		models.FieldOpportunityScore: kw.OpportunityScore,
		models.FieldQuickWinScore:    kw.QuickWinScore,
	}
	if kw.Intent != "" {
		fields[models.FieldIntent] = kw.Intent
	}
	if len(kw.SERPFeatures) > 0 {
		fields[models.FieldSERPFeatures] = joinLines(kw.SERPFeatures)
	}
	if kw.Trend != "" {
		fields[models.FieldTrend] = kw.Trend
	}
	if kw.ClusterID != "" {
		fields[models.FieldCluster] = []string{kw.ClusterID}
	}
	if kw.Status != "" {
		fields[models.FieldStatus] = string(kw.Status)
	}
	return fields
}

func intField(fields map[string]any, name string) int {
	switch v := fields[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func floatField(fields map[string]any, name string) float64 {
	switch v := fields[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Multi-value text fields are stored newline-separated.

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func linkIDs(fields map[string]any, name string) []string {
	raw, ok := fields[name].([]any)
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, entry := range raw {
		if id, ok := entry.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}
