package keywords_test

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/keywords"
	"github.com/content-pipeline-api/internal/llm"
	"github.com/content-pipeline-api/internal/mocks"
	"github.com/content-pipeline-api/internal/models"
	"github.com/content-pipeline-api/internal/seo"
)

func newService(t *testing.T) (*keywords.Service, *mocks.MockKeywordStore, *mocks.MockContentStore, *mocks.MockSEOClient, *mocks.MockGenerator) {
	t.Helper()
	store := mocks.NewMockKeywordStore()
	content := mocks.NewMockContentStore()
	seoClient := &mocks.MockSEOClient{}
	generator := &mocks.MockGenerator{}
	svc := keywords.NewService(store, content, seoClient, generator, zerolog.Nop())
	return svc, store, content, seoClient, generator
}

func TestResearchUpsertsKeywords(t *testing.T) {
	svc, store, _, seoClient, _ := newService(t)

	// One keyword already banked, assigned to a cluster
	existingID, _ := store.CreateKeyword(context.Background(), &models.Keyword{
		Keyword:   "crm software",
		ClusterID: "idea1",
		Status:    models.KeywordStatusClustered,
	})

	seoClient.SuggestionsFunc = func(ctx context.Context, seed string, limit int) ([]seo.KeywordMetrics, error) {
		return []seo.KeywordMetrics{
			{Keyword: "crm software", SearchVolume: 8000, Difficulty: 60},
			{Keyword: "best crm for startups", SearchVolume: 900, Difficulty: 25, SERPFeatures: []string{"featured_snippet"}},
		}, nil
	}

	result, err := svc.Research(context.Background(), "crm", 50)
	if err != nil {
		t.Fatalf("Research failed: %v", err)
	}
	if result.Fetched != 2 || result.Created != 1 || result.Updated != 1 {
		t.Errorf("Expected fetched=2 created=1 updated=1, got %+v", result)
	}

	// The refreshed entry keeps its id, cluster, and status
	updated := store.Keywords[existingID]
	if updated.ClusterID != "idea1" || updated.Status != models.KeywordStatusClustered {
		t.Errorf("Refresh clobbered cluster assignment: %+v", updated)
	}
	if updated.SearchVolume != 8000 {
		t.Errorf("Expected refreshed volume 8000, got %d", updated.SearchVolume)
	}

	// The new entry gets scores computed
	fresh, _ := store.FindKeyword(context.Background(), "best crm for startups")
	if fresh == nil {
		t.Fatal("Expected new keyword to be created")
	}
	wantScore := keywords.OpportunityScore(900, 25, []string{"featured_snippet"})
	if fresh.OpportunityScore != wantScore {
		t.Errorf("Expected opportunity score %.2f, got %.2f", wantScore, fresh.OpportunityScore)
	}
	if fresh.Status != models.KeywordStatusNew {
		t.Errorf("Expected status New, got %q", fresh.Status)
	}
}

func TestResearchRequiresSeed(t *testing.T) {
	svc, _, _, _, _ := newService(t)

	if _, err := svc.Research(context.Background(), "   ", 10); err == nil {
		t.Error("Expected validation error for blank seed")
	}
}

func TestClusterFiltersInventedIDs(t *testing.T) {
	svc, store, _, _, generator := newService(t)

	ctx := context.Background()
	var ids []string
	for _, text := range []string{"crm software", "crm tools", "crm pricing", "crm reviews"} {
		id, _ := store.CreateKeyword(ctx, &models.Keyword{Keyword: text, Status: models.KeywordStatusNew})
		ids = append(ids, id)
	}

	generator.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		// Response names two real candidates and one invented id
		return &llm.Result{Text: `{"primaryKeyword": "crm software", "keywordIds": ["` +
			ids[0] + `", "` + ids[1] + `", "recInvented"], "suggestedContentType": "comparison"}`}, nil
	}

	idea, err := svc.Cluster(ctx, ids)
	if err != nil {
		t.Fatalf("Cluster failed: %v", err)
	}
	if len(idea.KeywordIDs) != 2 {
		t.Errorf("Expected invented id filtered out, got members %v", idea.KeywordIDs)
	}
	if idea.PrimaryKeyword != "crm software" || idea.SuggestedType != "comparison" {
		t.Errorf("Parsed fields not carried to idea: %+v", idea)
	}

	// Members are marked clustered and linked to the idea
	for _, id := range idea.KeywordIDs {
		kw := store.Keywords[id]
		if kw.ClusterID != idea.ID || kw.Status != models.KeywordStatusClustered {
			t.Errorf("Member %s not marked clustered: %+v", id, kw)
		}
	}
	// Non-members untouched
	if store.Keywords[ids[3]].ClusterID != "" {
		t.Errorf("Non-member keyword was clustered: %+v", store.Keywords[ids[3]])
	}
}

func TestClusterUnparseableResponseFallsBack(t *testing.T) {
	svc, store, _, _, generator := newService(t)

	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		store.CreateKeyword(ctx, &models.Keyword{Keyword: text})
	}
	generator.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: "Sorry, I cannot produce JSON today."}, nil
	}

	idea, err := svc.Cluster(ctx, nil)
	if err != nil {
		t.Fatalf("Expected fallback instead of error, got: %v", err)
	}
	if len(idea.KeywordIDs) == 0 {
		t.Error("Expected fallback members, got none")
	}
	if idea.RawResponse != "Sorry, I cannot produce JSON today." {
		t.Errorf("Raw response not preserved for audit: %q", idea.RawResponse)
	}
}

func TestClusterNeedsThreeCandidates(t *testing.T) {
	svc, store, _, _, _ := newService(t)

	ctx := context.Background()
	id1, _ := store.CreateKeyword(ctx, &models.Keyword{Keyword: "a"})
	id2, _ := store.CreateKeyword(ctx, &models.Keyword{Keyword: "b"})

	if _, err := svc.Cluster(ctx, []string{id1, id2}); err == nil {
		t.Error("Expected error with fewer than 3 candidates")
	}
}

func TestGenerateTitlesPersistsOptions(t *testing.T) {
	svc, store, _, _, generator := newService(t)

	ctx := context.Background()
	kwID, _ := store.CreateKeyword(ctx, &models.Keyword{Keyword: "crm software"})
	ideaID, _ := store.CreateIdea(ctx, &models.ContentIdea{
		PrimaryKeyword: "crm software",
		KeywordIDs:     []string{kwID},
	})

	generator.GenerateFunc = func(ctx context.Context, req llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: `{"titles": ["Best CRM Software in 2026", "CRM Buyer's Guide"], "angles": ["comparison", "checklist"]}`}, nil
	}

	idea, err := svc.GenerateTitles(ctx, ideaID)
	if err != nil {
		t.Fatalf("GenerateTitles failed: %v", err)
	}
	if len(idea.TitleOptions) != 2 || idea.TitleOptions[0] != "Best CRM Software in 2026" {
		t.Errorf("Expected parsed titles, got %v", idea.TitleOptions)
	}

	update := store.IdeaUpdates[ideaID]
	if update == nil {
		t.Fatal("Expected idea record updated")
	}
	titles, _ := update[models.FieldTitleOptions].(string)
	if !strings.Contains(titles, "CRM Buyer's Guide") {
		t.Errorf("Persisted titles missing option: %q", titles)
	}
}

func TestPromoteCreatesDraftItem(t *testing.T) {
	svc, store, content, _, _ := newService(t)

	ctx := context.Background()
	kw1, _ := store.CreateKeyword(ctx, &models.Keyword{Keyword: "crm software"})
	kw2, _ := store.CreateKeyword(ctx, &models.Keyword{Keyword: "crm pricing"})
	ideaID, _ := store.CreateIdea(ctx, &models.ContentIdea{
		PrimaryKeyword: "crm software",
		KeywordIDs:     []string{kw1, kw2},
		SuggestedType:  "comparison",
		TitleOptions:   []string{"Best CRM Software in 2026"},
	})

	itemID, err := svc.Promote(ctx, ideaID)
	if err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	if itemID == "" {
		t.Fatal("Expected a created item id")
	}

	if len(content.Created) != 1 {
		t.Fatalf("Expected 1 content item created, got %d", len(content.Created))
	}
	fields := content.Created[0]
	if fields[models.FieldTitle] != "Best CRM Software in 2026" {
		t.Errorf("Expected first title option as title, got %v", fields[models.FieldTitle])
	}
	if fields[models.FieldContentType] != "comparison" {
		t.Errorf("Expected suggested content type, got %v", fields[models.FieldContentType])
	}
	if fields[models.FieldStatus] != string(models.StatusDraft) {
		t.Errorf("Expected new item in Draft status, got %v", fields[models.FieldStatus])
	}
	keywordsField, _ := fields[models.FieldKeywords].(string)
	if !strings.Contains(keywordsField, "crm pricing") {
		t.Errorf("Expected member keywords joined, got %q", keywordsField)
	}

	if store.IdeaUpdates[ideaID][models.FieldStatus] != "Promoted" {
		t.Errorf("Expected idea marked Promoted, got %+v", store.IdeaUpdates[ideaID])
	}
}

func TestPromoteFallsBackToPrimaryKeyword(t *testing.T) {
	svc, store, content, _, _ := newService(t)

	ctx := context.Background()
	ideaID, _ := store.CreateIdea(ctx, &models.ContentIdea{PrimaryKeyword: "crm software"})

	if _, err := svc.Promote(ctx, ideaID); err != nil {
		t.Fatalf("Promote failed: %v", err)
	}
	fields := content.Created[0]
	if fields[models.FieldTitle] != "crm software" {
		t.Errorf("Expected primary keyword as title fallback, got %v", fields[models.FieldTitle])
	}
	if fields[models.FieldContentType] != "blog" {
		t.Errorf("Expected default content type blog, got %v", fields[models.FieldContentType])
	}
}

func TestGapScan(t *testing.T) {
	svc, store, _, _, _ := newService(t)

	ctx := context.Background()
	store.CreateKeyword(ctx, &models.Keyword{Keyword: "CRM Software", OpportunityScore: 72.5})

	entries, err := svc.GapScan(ctx, []string{"crm software", "erp systems"})
	if err != nil {
		t.Fatalf("GapScan failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	// Membership is case-insensitive
	if !entries[0].Known || entries[0].Score != 72.5 {
		t.Errorf("Expected banked keyword matched case-insensitively: %+v", entries[0])
	}
	if entries[1].Known {
		t.Errorf("Expected gap for unbanked keyword: %+v", entries[1])
	}
}
