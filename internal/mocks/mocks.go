// Package mocks provides hand-rolled test doubles for the service's
// collaborator interfaces.
package mocks

import (
	"context"
	"sync"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/events"
	"github.com/content-pipeline-api/internal/keywords"
	"github.com/content-pipeline-api/internal/llm"
	"github.com/content-pipeline-api/internal/models"
	"github.com/content-pipeline-api/internal/prompts"
	"github.com/content-pipeline-api/internal/records"
	"github.com/content-pipeline-api/internal/seo"
)

// MockContentStore is an in-memory ContentStore keyed by record id.
type MockContentStore struct {
	mu sync.Mutex

	Items      map[string]map[string]any
	Industries map[string]*models.Industry
	Personas   map[string]*models.Persona
	Artifacts  []models.ContextArtifact

	// Updates records every UpdateItem call in order.
	Updates []map[string]any
	// BatchStatusCalls records the id slices passed to BatchUpdateStatus.
	BatchStatusCalls [][]string
	Created          []map[string]any

	GetErr    error
	UpdateErr error
}

// Verify interface compliance
var _ records.ContentStore = (*MockContentStore)(nil)

func NewMockContentStore() *MockContentStore {
	return &MockContentStore{
		Items:      make(map[string]map[string]any),
		Industries: make(map[string]*models.Industry),
		Personas:   make(map[string]*models.Persona),
	}
}

func (m *MockContentStore) GetItem(ctx context.Context, id string) (*models.ContentItem, error) {
	fields, err := m.GetItemFields(ctx, id)
	if err != nil {
		return nil, err
	}
	return models.ContentItemFromFields(id, fields), nil
}

func (m *MockContentStore) GetItemFields(ctx context.Context, id string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	fields, ok := m.Items[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Content Items record", id)
	}
	return fields, nil
}

func (m *MockContentStore) UpdateItem(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	existing, ok := m.Items[id]
	if !ok {
		existing = make(map[string]any)
		m.Items[id] = existing
	}
	recorded := map[string]any{"_id": id}
	for k, v := range fields {
		existing[k] = v
		recorded[k] = v
	}
	m.Updates = append(m.Updates, recorded)
	return nil
}

func (m *MockContentStore) BatchUpdateStatus(ctx context.Context, ids []string, status models.Status) error {
	m.mu.Lock()
	m.BatchStatusCalls = append(m.BatchStatusCalls, ids)
	m.mu.Unlock()
	for _, id := range ids {
		if err := m.UpdateItem(ctx, id, map[string]any{models.FieldStatus: string(status)}); err != nil {
			return err
		}
	}
	return nil
}

func (m *MockContentStore) CreateItem(ctx context.Context, fields map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := "recCreated" + string(rune('A'+len(m.Created)))
	m.Created = append(m.Created, fields)
	m.Items[id] = fields
	return id, nil
}

func (m *MockContentStore) GetIndustry(ctx context.Context, id string) (*models.Industry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	industry, ok := m.Industries[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Industries record", id)
	}
	return industry, nil
}

func (m *MockContentStore) GetPersona(ctx context.Context, id string) (*models.Persona, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	persona, ok := m.Personas[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("Personas record", id)
	}
	return persona, nil
}

func (m *MockContentStore) ListActiveArtifacts(ctx context.Context) ([]models.ContextArtifact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Artifacts, nil
}

// FieldsOf returns the current fields of an item, for assertions.
func (m *MockContentStore) FieldsOf(id string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Items[id]
}

// MockCompiler is a Compiler returning a canned template.
type MockCompiler struct {
	CompileFunc func(ctx context.Context, name string, vars map[string]string) (string, error)
	Calls       []string
	LastVars    map[string]string
	mu          sync.Mutex
}

// Verify interface compliance
var _ prompts.Compiler = (*MockCompiler)(nil)

func (m *MockCompiler) Compile(ctx context.Context, name string, vars map[string]string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, name)
	m.LastVars = vars
	m.mu.Unlock()
	if m.CompileFunc != nil {
		return m.CompileFunc(ctx, name, vars)
	}
	return "compiled:" + name, nil
}

// MockGenerator is a Generator returning canned text.
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, req llm.Request) (*llm.Result, error)
	Requests     []llm.Request
	mu           sync.Mutex
}

// Verify interface compliance
var _ llm.Generator = (*MockGenerator)(nil)

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (*llm.Result, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return &llm.Result{Text: "generated text", Model: "mock", InputTokens: 10, OutputTokens: 20}, nil
}

// MockEmitter records emitted events.
type MockEmitter struct {
	EmitFunc func(ctx context.Context, name string, data any) error
	Events   []EmittedEvent
	mu       sync.Mutex
}

// EmittedEvent is one recorded Emit call.
type EmittedEvent struct {
	Name string
	Data any
}

// Verify interface compliance
var _ events.Emitter = (*MockEmitter)(nil)

func (m *MockEmitter) Emit(ctx context.Context, name string, data any) error {
	if m.EmitFunc != nil {
		if err := m.EmitFunc(ctx, name, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.Events = append(m.Events, EmittedEvent{Name: name, Data: data})
	m.mu.Unlock()
	return nil
}

// Emitted returns a copy of the recorded events.
func (m *MockEmitter) Emitted() []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmittedEvent, len(m.Events))
	copy(out, m.Events)
	return out
}

// MockSEOClient is a MetricsClient returning canned suggestions.
type MockSEOClient struct {
	SuggestionsFunc func(ctx context.Context, seed string, limit int) ([]seo.KeywordMetrics, error)
	Seeds           []string
}

// Verify interface compliance
var _ seo.MetricsClient = (*MockSEOClient)(nil)

func (m *MockSEOClient) KeywordSuggestions(ctx context.Context, seed string, limit int) ([]seo.KeywordMetrics, error) {
	m.Seeds = append(m.Seeds, seed)
	if m.SuggestionsFunc != nil {
		return m.SuggestionsFunc(ctx, seed, limit)
	}
	return nil, nil
}

// MockKeywordStore is an in-memory KeywordStore.
type MockKeywordStore struct {
	mu sync.Mutex

	Keywords map[string]*models.Keyword
	Ideas    map[string]*models.ContentIdea

	IdeaUpdates map[string]map[string]any
	nextID      int
}

// Verify interface compliance
var _ records.KeywordStore = (*MockKeywordStore)(nil)

func NewMockKeywordStore() *MockKeywordStore {
	return &MockKeywordStore{
		Keywords:    make(map[string]*models.Keyword),
		Ideas:       make(map[string]*models.ContentIdea),
		IdeaUpdates: make(map[string]map[string]any),
	}
}

func (m *MockKeywordStore) FindKeyword(ctx context.Context, keyword string) (*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, kw := range m.Keywords {
		if kw.Keyword == keyword {
			copied := *kw
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *MockKeywordStore) CreateKeyword(ctx context.Context, kw *models.Keyword) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := kw.ID
	if id == "" {
		id = "kw" + string(rune('0'+m.nextID))
	}
	copied := *kw
	copied.ID = id
	m.Keywords[id] = &copied
	return id, nil
}

func (m *MockKeywordStore) UpdateKeyword(ctx context.Context, kw *models.Keyword) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *kw
	m.Keywords[kw.ID] = &copied
	return nil
}

func (m *MockKeywordStore) ListUnclustered(ctx context.Context) ([]models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Keyword
	for _, kw := range m.Keywords {
		if kw.ClusterID == "" {
			out = append(out, *kw)
		}
	}
	return out, nil
}

func (m *MockKeywordStore) ListKeywords(ctx context.Context) ([]models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Keyword
	for _, kw := range m.Keywords {
		out = append(out, *kw)
	}
	return out, nil
}

func (m *MockKeywordStore) GetKeywords(ctx context.Context, ids []string) ([]models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Keyword, 0, len(ids))
	for _, id := range ids {
		kw, ok := m.Keywords[id]
		if !ok {
			return nil, apperrors.NewNotFoundError("Keyword Bank record", id)
		}
		out = append(out, *kw)
	}
	return out, nil
}

func (m *MockKeywordStore) GetIdea(ctx context.Context, id string) (*models.ContentIdea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idea, ok := m.Ideas[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("content idea", id)
	}
	copied := *idea
	return &copied, nil
}

func (m *MockKeywordStore) CreateIdea(ctx context.Context, idea *models.ContentIdea) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := "idea" + string(rune('0'+m.nextID))
	copied := *idea
	copied.ID = id
	m.Ideas[id] = &copied
	return id, nil
}

func (m *MockKeywordStore) UpdateIdea(ctx context.Context, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Ideas[id]; !ok {
		return apperrors.NewNotFoundError("content idea", id)
	}
	update := m.IdeaUpdates[id]
	if update == nil {
		update = make(map[string]any)
		m.IdeaUpdates[id] = update
	}
	for k, v := range fields {
		update[k] = v
	}
	return nil
}

// MockResearcher is a Researcher with function fields.
type MockResearcher struct {
	ResearchFunc       func(ctx context.Context, seed string, limit int) (*keywords.ResearchResult, error)
	ClusterFunc        func(ctx context.Context, keywordIDs []string) (*models.ContentIdea, error)
	GenerateTitlesFunc func(ctx context.Context, ideaID string) (*models.ContentIdea, error)
	PromoteFunc        func(ctx context.Context, ideaID string) (string, error)
	GapScanFunc        func(ctx context.Context, competitorKeywords []string) ([]keywords.GapEntry, error)
}

// Verify interface compliance
var _ keywords.Researcher = (*MockResearcher)(nil)

func (m *MockResearcher) Research(ctx context.Context, seed string, limit int) (*keywords.ResearchResult, error) {
	if m.ResearchFunc != nil {
		return m.ResearchFunc(ctx, seed, limit)
	}
	return &keywords.ResearchResult{Seed: seed}, nil
}

func (m *MockResearcher) Cluster(ctx context.Context, keywordIDs []string) (*models.ContentIdea, error) {
	if m.ClusterFunc != nil {
		return m.ClusterFunc(ctx, keywordIDs)
	}
	return &models.ContentIdea{}, nil
}

func (m *MockResearcher) GenerateTitles(ctx context.Context, ideaID string) (*models.ContentIdea, error) {
	if m.GenerateTitlesFunc != nil {
		return m.GenerateTitlesFunc(ctx, ideaID)
	}
	return &models.ContentIdea{ID: ideaID}, nil
}

func (m *MockResearcher) Promote(ctx context.Context, ideaID string) (string, error) {
	if m.PromoteFunc != nil {
		return m.PromoteFunc(ctx, ideaID)
	}
	return "recPromoted", nil
}

func (m *MockResearcher) GapScan(ctx context.Context, competitorKeywords []string) ([]keywords.GapEntry, error) {
	if m.GapScanFunc != nil {
		return m.GapScanFunc(ctx, competitorKeywords)
	}
	return nil, nil
}

// MockPromptPinger fakes the langfuse diagnostics check.
type MockPromptPinger struct {
	PingFunc func(ctx context.Context, promptName string) error
}

func (m *MockPromptPinger) Ping(ctx context.Context, promptName string) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx, promptName)
	}
	return nil
}
