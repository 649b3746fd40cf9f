package records

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/config"
	"github.com/content-pipeline-api/internal/models"
)

func newTestClient(server *httptest.Server) *Client {
	return NewClient(config.AirtableConfig{
		APIKey:  "key-test",
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, "appBase1", zerolog.Nop())
}

func TestGetRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/appBase1/Content%20Items/rec123" {
			t.Errorf("Unexpected path %s", r.URL.EscapedPath())
		}
		if r.Header.Get("Authorization") != "Bearer key-test" {
			t.Error("Expected bearer auth header")
		}
		w.Write([]byte(`{"id": "rec123", "fields": {"Title": "Ten Tips", "Status": "Ready"}}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	rec, err := client.GetRecord(context.Background(), TableContentItems, "rec123")
	if err != nil {
		t.Fatalf("GetRecord failed: %v", err)
	}
	if rec.ID != "rec123" || rec.Fields["Title"] != "Ten Tips" {
		t.Errorf("Record not decoded: %+v", rec)
	}
}

func TestGetRecordNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(server)
	_, err := client.GetRecord(context.Background(), TableContentItems, "recMissing")
	if !apperrors.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
}

func TestListRecordsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("filterByFormula") != "{Active} = TRUE()" {
			t.Errorf("Formula not forwarded: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("offset") == "" {
			w.Write([]byte(`{"records": [{"id": "rec1", "fields": {}}, {"id": "rec2", "fields": {}}], "offset": "page2"}`))
			return
		}
		w.Write([]byte(`{"records": [{"id": "rec3", "fields": {}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	recs, err := client.ListRecords(context.Background(), TableContextArtifacts, "{Active} = TRUE()")
	if err != nil {
		t.Fatalf("ListRecords failed: %v", err)
	}
	if len(recs) != 3 || recs[2].ID != "rec3" {
		t.Errorf("Expected 3 records across pages, got %+v", recs)
	}
}

func TestBatchUpdateChunks(t *testing.T) {
	var chunks [][]RecordUpdate
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("Expected PATCH, got %s", r.Method)
		}
		var body struct {
			Records []RecordUpdate `json:"records"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		chunks = append(chunks, body.Records)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	updates := make([]RecordUpdate, 25)
	for i := range updates {
		updates[i] = RecordUpdate{
			ID:     fmt.Sprintf("rec%d", i),
			Fields: map[string]any{models.FieldStatus: string(models.StatusGenerating)},
		}
	}

	client := newTestClient(server)
	if err := client.BatchUpdate(context.Background(), TableContentItems, updates); err != nil {
		t.Fatalf("BatchUpdate failed: %v", err)
	}

	// 25 updates at a 10-record API limit means chunks of 10, 10, 5
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 10 || len(chunks[1]) != 10 || len(chunks[2]) != 5 {
		t.Errorf("Unexpected chunk sizes: %d, %d, %d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}
}

func TestCreateRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		var body struct {
			Fields map[string]any `json:"fields"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Fields[models.FieldTitle] != "New Item" {
			t.Errorf("Fields not forwarded: %v", body.Fields)
		}
		w.Write([]byte(`{"id": "recNew", "fields": {}}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	id, err := client.CreateRecord(context.Background(), TableContentItems, map[string]any{
		models.FieldTitle: "New Item",
	})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if id != "recNew" {
		t.Errorf("Expected recNew, got %q", id)
	}
}

func TestEscapeFormulaString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"crm software", "'crm software'"},
		{"bob's crm", `'bob\'s crm'`},
		{"", "''"},
	}

	for _, tt := range tests {
		if got := escapeFormulaString(tt.in); got != tt.want {
			t.Errorf("escapeFormulaString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeywordRoundtripMapping(t *testing.T) {
	rec := Record{
		ID: "kw1",
		Fields: map[string]any{
			models.FieldKeyword:          "crm software",
			models.FieldSearchVolume:     float64(8000),
			models.FieldDifficulty:       float64(62),
			models.FieldSERPFeatures:     "featured_snippet\npeople_also_ask",
			models.FieldOpportunityScore: 52.5,
			models.FieldCluster:          []any{"idea1"},
			models.FieldStatus:           "Clustered",
		},
	}

	kw := keywordFromRecord(rec)
	if kw.ID != "kw1" || kw.Keyword != "crm software" {
		t.Errorf("Identity fields not mapped: %+v", kw)
	}
	if kw.SearchVolume != 8000 || kw.Difficulty != 62 {
		t.Errorf("Numeric fields not mapped: %+v", kw)
	}
	if len(kw.SERPFeatures) != 2 || kw.SERPFeatures[1] != "people_also_ask" {
		t.Errorf("SERP features not split: %v", kw.SERPFeatures)
	}
	if kw.ClusterID != "idea1" || kw.Status != models.KeywordStatusClustered {
		t.Errorf("Cluster link not mapped: %+v", kw)
	}

	fields := keywordFields(&kw)
	if fields[models.FieldSERPFeatures] != "featured_snippet\npeople_also_ask" {
		t.Errorf("SERP features not joined: %v", fields[models.FieldSERPFeatures])
	}
	link, ok := fields[models.FieldCluster].([]string)
	if !ok || len(link) != 1 || link[0] != "idea1" {
		t.Errorf("Cluster link not written as linked record: %v", fields[models.FieldCluster])
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"one", 1},
		{"one\ntwo", 2},
		{"one\n\n  \ntwo\n", 2},
	}

	for _, tt := range tests {
		if got := splitLines(tt.in); len(got) != tt.want {
			t.Errorf("splitLines(%q) = %v, want %d entries", tt.in, got, tt.want)
		}
	}
}
