package seo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/config"
)

func newTestClient(server *httptest.Server) *Client {
	return NewClient(config.SEOConfig{
		Login:             "login",
		Password:          "password",
		BaseURL:           server.URL,
		MaxConcurrency:    2,
		RequestsPerSecond: 100,
		Timeout:           5 * time.Second,
	}, zerolog.Nop())
}

func TestKeywordSuggestions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/dataforseo_labs/google/keyword_suggestions/live" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "login" || pass != "password" {
			t.Error("Expected basic auth")
		}

		var body []map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if len(body) != 1 || body[0]["keyword"] != "crm" {
			t.Errorf("Unexpected request body: %v", body)
		}

		w.Write([]byte(`{"tasks": [{"result": [{"items": [
			{
				"keyword": "crm software",
				"keyword_info": {
					"search_volume": 8000,
					"monthly_searches": [{"search_volume": 9000}, {"search_volume": 7000}]
				},
				"keyword_properties": {"keyword_difficulty": 62},
				"search_intent_info": {"main_intent": "commercial"},
				"serp_info": {"serp_item_types": ["featured_snippet", "people_also_ask"]}
			},
			{
				"keyword": "crm pricing",
				"keyword_info": {"search_volume": 1200},
				"keyword_properties": {"keyword_difficulty": 30}
			}
		]}]}]}`))
	}))
	defer server.Close()

	client := newTestClient(server)
	metrics, err := client.KeywordSuggestions(context.Background(), "crm", 50)
	if err != nil {
		t.Fatalf("KeywordSuggestions failed: %v", err)
	}
	if len(metrics) != 2 {
		t.Fatalf("Expected 2 keywords, got %d", len(metrics))
	}

	first := metrics[0]
	if first.Keyword != "crm software" || first.SearchVolume != 8000 || first.Difficulty != 62 {
		t.Errorf("Metrics not mapped: %+v", first)
	}
	if first.Intent != "commercial" {
		t.Errorf("Expected commercial intent, got %q", first.Intent)
	}
	if len(first.SERPFeatures) != 2 || first.SERPFeatures[0] != "featured_snippet" {
		t.Errorf("SERP features not mapped: %v", first.SERPFeatures)
	}
	// Newest month (9000) above oldest (7000)
	if first.Trend != "rising" {
		t.Errorf("Expected rising trend, got %q", first.Trend)
	}

	// No monthly series means no trend
	if metrics[1].Trend != "" {
		t.Errorf("Expected empty trend without monthly data, got %q", metrics[1].Trend)
	}
}

func TestKeywordSuggestionsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer server.Close()

	client := newTestClient(server)
	if _, err := client.KeywordSuggestions(context.Background(), "crm", 10); err == nil {
		t.Error("Expected error on non-200 response")
	}
}

func TestTrendFromMonthly(t *testing.T) {
	build := func(volumes ...int) suggestion {
		var s suggestion
		for _, v := range volumes {
			s.KeywordInfo.MonthlySearches = append(s.KeywordInfo.MonthlySearches,
				struct {
					SearchVolume int `json:"search_volume"`
				}{v})
		}
		return s
	}

	tests := []struct {
		name    string
		volumes []int
		want    string
	}{
		{"rising", []int{900, 500, 400}, "rising"},
		{"falling", []int{300, 500, 900}, "falling"},
		{"stable", []int{500, 700, 500}, "stable"},
		{"single month", []int{500}, ""},
		{"no data", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trendFromMonthly(build(tt.volumes...)); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
