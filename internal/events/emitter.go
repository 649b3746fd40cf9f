// Package events delivers internal events. The webhook gateway emits exactly
// one event per valid call; stage functions consume them.
package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/config"
)

// Emitter delivers one named event. Emission is at-most-once per call; a
// retried webhook re-emits.
type Emitter interface {
	Emit(ctx context.Context, name string, data any) error
}

// envelope is the wire shape accepted by the durable runtime's ingest
// endpoint.
type envelope struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"ts"`
}

// IngestClient posts events to the durable runtime's ingest endpoint, keyed
// by the configured event key.
type IngestClient struct {
	httpClient *http.Client
	ingestURL  string
	log        zerolog.Logger
}

// Verify interface compliance
var _ Emitter = (*IngestClient)(nil)

// NewIngestClient creates an IngestClient from config.
func NewIngestClient(cfg config.EventsConfig, log zerolog.Logger) *IngestClient {
	ingestURL := strings.TrimRight(cfg.IngestURL, "/")
	if cfg.EventKey != "" {
		ingestURL += "/e/" + cfg.EventKey
	}
	return &IngestClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		ingestURL:  ingestURL,
		log:        log.With().Str("client", "event-ingest").Logger(),
	}
}

// Emit posts one event envelope.
func (c *IngestClient) Emit(ctx context.Context, name string, data any) error {
	payload, err := json.Marshal(envelope{
		ID:        uuid.New().String(),
		Name:      name,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event %q: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.ingestURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("event-ingest", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewUpstreamError("event-ingest",
			fmt.Errorf("ingest returned %d for event %q", resp.StatusCode, name))
	}

	c.log.Debug().Str("event", name).Msg("Event forwarded to durable runtime")
	return nil
}
