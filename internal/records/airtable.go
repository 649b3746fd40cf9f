// Package records is a narrow facade over the Airtable REST API for the
// tables this service reads and writes. All workflow state lives in
// Airtable; this package never caches records.
package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/config"
)

// Airtable accepts at most this many records per batch update call.
const batchLimit = 10

// Record is one Airtable record: an opaque id plus a raw fields map.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// RecordUpdate addresses one record in a batch update.
type RecordUpdate struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Client talks to one Airtable base.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	baseID     string
	log        zerolog.Logger
}

// NewClient creates a Client for the given base.
func NewClient(cfg config.AirtableConfig, baseID string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		baseID:     baseID,
		log:        log.With().Str("client", "airtable").Logger(),
	}
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(table))
}

// doJSON performs a JSON request against the base and decodes the response
// into out when out is non-nil.
func (c *Client) doJSON(ctx context.Context, method, requestURL string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("airtable", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamError("airtable", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError("record", requestURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewUpstreamError("airtable",
			fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(respBody)))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return apperrors.NewUpstreamError("airtable", fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

// GetRecord fetches a single record by id.
func (c *Client) GetRecord(ctx context.Context, table, id string) (*Record, error) {
	var rec Record
	if err := c.doJSON(ctx, http.MethodGet, c.tableURL(table)+"/"+id, nil, &rec); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFoundError(table+" record", id)
		}
		return nil, err
	}
	return &rec, nil
}

// ListRecords fetches all records matching an optional filterByFormula,
// following pagination offsets.
func (c *Client) ListRecords(ctx context.Context, table, filterFormula string) ([]Record, error) {
	var all []Record
	offset := ""

	for {
		query := url.Values{}
		if filterFormula != "" {
			query.Set("filterByFormula", filterFormula)
		}
		if offset != "" {
			query.Set("offset", offset)
		}
		requestURL := c.tableURL(table)
		if encoded := query.Encode(); encoded != "" {
			requestURL += "?" + encoded
		}

		var page struct {
			Records []Record `json:"records"`
			Offset  string   `json:"offset"`
		}
		if err := c.doJSON(ctx, http.MethodGet, requestURL, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)

		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// UpdateRecord patches the given fields on one record. Last writer wins;
// Airtable has no optimistic-concurrency check.
func (c *Client) UpdateRecord(ctx context.Context, table, id string, fields map[string]any) error {
	body := map[string]any{"fields": fields}
	return c.doJSON(ctx, http.MethodPatch, c.tableURL(table)+"/"+id, body, nil)
}

// BatchUpdate patches many records, chunked to Airtable's per-call limit.
func (c *Client) BatchUpdate(ctx context.Context, table string, updates []RecordUpdate) error {
	for start := 0; start < len(updates); start += batchLimit {
		end := start + batchLimit
		if end > len(updates) {
			end = len(updates)
		}
		body := map[string]any{"records": updates[start:end]}
		if err := c.doJSON(ctx, http.MethodPatch, c.tableURL(table), body, nil); err != nil {
			return fmt.Errorf("batch update chunk %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// CreateRecord creates a record and returns its new id.
func (c *Client) CreateRecord(ctx context.Context, table string, fields map[string]any) (string, error) {
	var rec Record
	body := map[string]any{"fields": fields}
	if err := c.doJSON(ctx, http.MethodPost, c.tableURL(table), body, &rec); err != nil {
		return "", err
	}
	return rec.ID, nil
}

// escapeFormulaString quotes a value for use inside a filterByFormula
// single-quoted string literal.
func escapeFormulaString(value string) string {
	escaped := ""
	for _, r := range value {
		if r == '\'' {
			escaped += "\\'"
			continue
		}
		escaped += string(r)
	}
	return "'" + escaped + "'"
}
