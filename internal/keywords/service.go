// Package keywords implements the research subsystem: keyword expansion and
// scoring, LLM-assisted clustering, title generation, and promotion of a
// cluster into a content item.
package keywords

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/llm"
	"github.com/content-pipeline-api/internal/models"
	"github.com/content-pipeline-api/internal/records"
	"github.com/content-pipeline-api/internal/seo"
)

// ResearchResult summarizes one research run.
type ResearchResult struct {
	Seed    string `json:"seed"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Fetched int    `json:"fetched"`
}

// GapEntry is one keyword a competitor targets that the bank lacks or ranks
// weakly for.
type GapEntry struct {
	Keyword string  `json:"keyword"`
	Known   bool    `json:"known"`
	Score   float64 `json:"score,omitempty"`
}

// Researcher defines the interface for the research subsystem operations.
type Researcher interface {
	Research(ctx context.Context, seed string, limit int) (*ResearchResult, error)
	Cluster(ctx context.Context, keywordIDs []string) (*models.ContentIdea, error)
	GenerateTitles(ctx context.Context, ideaID string) (*models.ContentIdea, error)
	Promote(ctx context.Context, ideaID string) (string, error)
	GapScan(ctx context.Context, competitorKeywords []string) ([]GapEntry, error)
}

// Service runs the research subsystem operations.
type Service struct {
	store     records.KeywordStore
	content   records.ContentStore
	seoClient seo.MetricsClient
	generator llm.Generator
	log       zerolog.Logger
}

// Verify interface compliance
var _ Researcher = (*Service)(nil)

// NewService creates the research service.
func NewService(
	store records.KeywordStore,
	content records.ContentStore,
	seoClient seo.MetricsClient,
	generator llm.Generator,
	log zerolog.Logger,
) *Service {
	return &Service{
		store:     store,
		content:   content,
		seoClient: seoClient,
		generator: generator,
		log:       log.With().Str("service", "keywords").Logger(),
	}
}

// Research expands a seed keyword through the SEO API, scores each result,
// and upserts keyword bank entries.
func (s *Service) Research(ctx context.Context, seed string, limit int) (*ResearchResult, error) {
	if strings.TrimSpace(seed) == "" {
		return nil, apperrors.NewValidationError("seedKeyword", "seedKeyword is required")
	}

	metrics, err := s.seoClient.KeywordSuggestions(ctx, seed, limit)
	if err != nil {
		return nil, err
	}

	result := &ResearchResult{Seed: seed, Fetched: len(metrics)}
	for _, m := range metrics {
		kw := models.Keyword{
			Keyword:          m.Keyword,
			SearchVolume:     m.SearchVolume,
			Difficulty:       m.Difficulty,
			Intent:           m.Intent,
			SERPFeatures:     m.SERPFeatures,
			Trend:            m.Trend,
			OpportunityScore: OpportunityScore(m.SearchVolume, m.Difficulty, m.SERPFeatures),
			QuickWinScore:    QuickWinScore(m.SearchVolume, m.Difficulty),
			Status:           models.KeywordStatusNew,
		}

		existing, err := s.store.FindKeyword(ctx, m.Keyword)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if _, err := s.store.CreateKeyword(ctx, &kw); err != nil {
				return nil, err
			}
			result.Created++
			continue
		}

		kw.ID = existing.ID
		kw.ClusterID = existing.ClusterID
		kw.Status = existing.Status
		if err := s.store.UpdateKeyword(ctx, &kw); err != nil {
			return nil, err
		}
		result.Updated++
	}

	s.log.Info().Str("seed", seed).Int("created", result.Created).Int("updated", result.Updated).Msg("Research completed")
	return result, nil
}

// Cluster asks the LLM to select 3-6 related keywords from the candidate
// set (the given ids, or all unclustered keywords) and creates a content
// idea linking them.
func (s *Service) Cluster(ctx context.Context, keywordIDs []string) (*models.ContentIdea, error) {
	var candidates []models.Keyword
	var err error
	if len(keywordIDs) > 0 {
		candidates, err = s.store.GetKeywords(ctx, keywordIDs)
	} else {
		candidates, err = s.store.ListUnclustered(ctx)
	}
	if err != nil {
		return nil, err
	}
	if len(candidates) < 3 {
		return nil, apperrors.NewValidationError("keywordIds",
			fmt.Sprintf("clustering needs at least 3 candidate keywords, have %d", len(candidates)))
	}

	var lines strings.Builder
	byID := make(map[string]models.Keyword, len(candidates))
	for _, kw := range candidates {
		byID[kw.ID] = kw
		fmt.Fprintf(&lines, "%s: %s (%d, %d)\n", kw.ID, kw.Keyword, kw.SearchVolume, kw.Difficulty)
	}

	result, err := s.generator.Generate(ctx, llm.Request{
		Prompt:    fmt.Sprintf(clusterPrompt, lines.String()),
		MaxTokens: 1024,
		Stage:     "cluster",
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		PrimaryKeyword       string   `json:"primaryKeyword"`
		KeywordIDs           []string `json:"keywordIds"`
		SuggestedContentType string   `json:"suggestedContentType"`
	}
	if err := ExtractJSON(result.Text, &parsed); err != nil {
		// Default shape: keep the run usable and the raw response auditable.
		s.log.Warn().Err(err).Msg("Cluster response was not parseable, falling back to defaults")
		parsed.PrimaryKeyword = candidates[0].Keyword
		parsed.KeywordIDs = nil
		parsed.SuggestedContentType = "blog"
	}

	// Only ids from the candidate set count; the LLM sometimes invents them.
	memberIDs := make([]string, 0, len(parsed.KeywordIDs))
	for _, id := range parsed.KeywordIDs {
		if _, ok := byID[id]; ok {
			memberIDs = append(memberIDs, id)
		}
	}
	if len(memberIDs) == 0 {
		limit := 3
		if len(candidates) < limit {
			limit = len(candidates)
		}
		for _, kw := range candidates[:limit] {
			memberIDs = append(memberIDs, kw.ID)
		}
	}

	idea := &models.ContentIdea{
		PrimaryKeyword: parsed.PrimaryKeyword,
		KeywordIDs:     memberIDs,
		SuggestedType:  parsed.SuggestedContentType,
		RawResponse:    result.Text,
		Status:         "New",
	}
	ideaID, err := s.store.CreateIdea(ctx, idea)
	if err != nil {
		return nil, err
	}
	idea.ID = ideaID

	for _, id := range memberIDs {
		kw := byID[id]
		kw.ClusterID = ideaID
		kw.Status = models.KeywordStatusClustered
		if err := s.store.UpdateKeyword(ctx, &kw); err != nil {
			return nil, err
		}
	}

	s.log.Info().Str("idea_id", ideaID).Int("members", len(memberIDs)).Msg("Cluster created")
	return idea, nil
}

// GenerateTitles asks the LLM for title options and content angles for an
// existing idea and persists them on the idea record.
func (s *Service) GenerateTitles(ctx context.Context, ideaID string) (*models.ContentIdea, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return nil, err
	}

	members, err := s.store.GetKeywords(ctx, idea.KeywordIDs)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(members))
	for _, kw := range members {
		texts = append(texts, "- "+kw.Keyword)
	}

	result, err := s.generator.Generate(ctx, llm.Request{
		Prompt:    fmt.Sprintf(titlesPrompt, idea.PrimaryKeyword, strings.Join(texts, "\n")),
		MaxTokens: 1024,
		Stage:     "titles",
	})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Titles []string `json:"titles"`
		Angles []string `json:"angles"`
	}
	if err := ExtractJSON(result.Text, &parsed); err != nil {
		s.log.Warn().Err(err).Str("idea_id", ideaID).Msg("Titles response was not parseable, falling back to defaults")
		parsed.Titles = []string{idea.PrimaryKeyword}
		parsed.Angles = nil
	}

	fields := map[string]any{
		models.FieldTitleOptions: strings.Join(parsed.Titles, "\n"),
		models.FieldRawResponse:  result.Text,
	}
	if len(parsed.Angles) > 0 {
		fields[models.FieldContentAngles] = strings.Join(parsed.Angles, "\n")
	}
	if err := s.store.UpdateIdea(ctx, ideaID, fields); err != nil {
		return nil, err
	}

	idea.TitleOptions = parsed.Titles
	idea.ContentAngles = parsed.Angles
	idea.RawResponse = result.Text
	return idea, nil
}

// Promote copies a cluster's selected fields into a new content item in
// Draft status and marks the idea promoted.
func (s *Service) Promote(ctx context.Context, ideaID string) (string, error) {
	idea, err := s.store.GetIdea(ctx, ideaID)
	if err != nil {
		return "", err
	}

	title := idea.PrimaryKeyword
	if len(idea.TitleOptions) > 0 {
		title = idea.TitleOptions[0]
	}
	contentType := idea.SuggestedType
	if contentType == "" {
		contentType = "blog"
	}

	members, err := s.store.GetKeywords(ctx, idea.KeywordIDs)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(members))
	for _, kw := range members {
		texts = append(texts, kw.Keyword)
	}

	itemID, err := s.content.CreateItem(ctx, map[string]any{
		models.FieldTitle:       title,
		models.FieldContentType: contentType,
		models.FieldKeywords:    strings.Join(texts, ", "),
		models.FieldStatus:      string(models.StatusDraft),
	})
	if err != nil {
		return "", err
	}

	if err := s.store.UpdateIdea(ctx, ideaID, map[string]any{models.FieldStatus: "Promoted"}); err != nil {
		return "", err
	}

	s.log.Info().Str("idea_id", ideaID).Str("item_id", itemID).Msg("Idea promoted to content item")
	return itemID, nil
}

// GapScan reports which competitor keywords are missing from the bank, and
// the current score for those already banked.
func (s *Service) GapScan(ctx context.Context, competitorKeywords []string) ([]GapEntry, error) {
	if len(competitorKeywords) == 0 {
		return nil, apperrors.NewValidationError("competitorKeywords", "competitorKeywords is required")
	}

	banked, err := s.store.ListKeywords(ctx)
	if err != nil {
		return nil, err
	}
	byText := make(map[string]models.Keyword, len(banked))
	for _, kw := range banked {
		byText[strings.ToLower(kw.Keyword)] = kw
	}

	entries := make([]GapEntry, 0, len(competitorKeywords))
	for _, keyword := range competitorKeywords {
		kw, ok := byText[strings.ToLower(strings.TrimSpace(keyword))]
		entry := GapEntry{Keyword: keyword, Known: ok}
		if ok {
			entry.Score = kw.OpportunityScore
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
