// Package seo is a narrow client for the DataForSEO Labs API, used by the
// keyword research subsystem.
package seo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/config"
)

// KeywordMetrics is one keyword with the metrics the research flow scores.
type KeywordMetrics struct {
	Keyword      string
	SearchVolume int
	Difficulty   int
	Intent       string
	SERPFeatures []string
	Trend        string
}

// MetricsClient fetches keyword metrics.
type MetricsClient interface {
	KeywordSuggestions(ctx context.Context, seed string, limit int) ([]KeywordMetrics, error)
}

// Client is the DataForSEO-backed MetricsClient. The API meters by request,
// so calls pass through both a fixed concurrency cap and a request rate
// limiter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	login      string
	password   string
	sem        chan struct{}
	limiter    *rate.Limiter
	requests   prometheus.Counter
	log        zerolog.Logger
}

// Verify interface compliance
var _ MetricsClient = (*Client)(nil)

// NewClient creates a DataForSEO client from config.
func NewClient(cfg config.SEOConfig, log zerolog.Logger) *Client {
	maxConcurrency := cfg.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		login:      cfg.Login,
		password:   cfg.Password,
		sem:        make(chan struct{}, maxConcurrency),
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		log:        log.With().Str("client", "dataforseo").Logger(),
	}
}

// SetRequestCounter counts every API request issued, for billing visibility.
func (c *Client) SetRequestCounter(counter prometheus.Counter) {
	c.requests = counter
}

// suggestion mirrors the fields this service reads from a Labs response item.
type suggestion struct {
	Keyword     string `json:"keyword"`
	KeywordInfo struct {
		SearchVolume    int `json:"search_volume"`
		MonthlySearches []struct {
			SearchVolume int `json:"search_volume"`
		} `json:"monthly_searches"`
	} `json:"keyword_info"`
	KeywordProperties struct {
		KeywordDifficulty int `json:"keyword_difficulty"`
	} `json:"keyword_properties"`
	SearchIntentInfo struct {
		MainIntent string `json:"main_intent"`
	} `json:"search_intent_info"`
	SERPInfo struct {
		SERPItemTypes []string `json:"serp_item_types"`
	} `json:"serp_info"`
}

// KeywordSuggestions expands a seed keyword into related keywords with
// metrics, up to limit entries.
func (c *Client) KeywordSuggestions(ctx context.Context, seed string, limit int) ([]KeywordMetrics, error) {
	if limit <= 0 {
		limit = 20
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.sem }()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	requestBody := []map[string]any{{
		"keyword":           seed,
		"limit":             limit,
		"include_serp_info": true,
	}}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	requestURL := c.baseURL + "/v3/dataforseo_labs/google/keyword_suggestions/live"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.login, c.password)
	req.Header.Set("Content-Type", "application/json")

	if c.requests != nil {
		c.requests.Inc()
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamError("dataforseo", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("dataforseo", fmt.Errorf("failed to read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewUpstreamError("dataforseo",
			fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body)))
	}

	var envelope struct {
		Tasks []struct {
			Result []struct {
				Items []suggestion `json:"items"`
			} `json:"result"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, apperrors.NewUpstreamError("dataforseo", fmt.Errorf("failed to decode response: %w", err))
	}

	var metrics []KeywordMetrics
	for _, task := range envelope.Tasks {
		for _, result := range task.Result {
			for _, item := range result.Items {
				metrics = append(metrics, KeywordMetrics{
					Keyword:      item.Keyword,
					SearchVolume: item.KeywordInfo.SearchVolume,
					Difficulty:   item.KeywordProperties.KeywordDifficulty,
					Intent:       item.SearchIntentInfo.MainIntent,
					SERPFeatures: item.SERPInfo.SERPItemTypes,
					Trend:        trendFromMonthly(item),
				})
			}
		}
	}

	c.log.Debug().Str("seed", seed).Int("keywords", len(metrics)).Msg("Keyword suggestions fetched")
	return metrics, nil
}

// trendFromMonthly classifies the recent volume direction from the monthly
// series, newest first in the API response.
func trendFromMonthly(item suggestion) string {
	monthly := item.KeywordInfo.MonthlySearches
	if len(monthly) < 2 {
		return ""
	}
	newest := monthly[0].SearchVolume
	oldest := monthly[len(monthly)-1].SearchVolume
	switch {
	case newest > oldest:
		return "rising"
	case newest < oldest:
		return "falling"
	default:
		return "stable"
	}
}
