// Package prompts resolves named prompt templates from Langfuse and compiles
// them against a variable map.
package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/config"
)

// Compiler resolves a template name plus variables into a final prompt string.
type Compiler interface {
	Compile(ctx context.Context, name string, vars map[string]string) (string, error)
}

// Client is the Langfuse-backed Compiler.
type Client struct {
	httpClient *http.Client
	host       string
	publicKey  string
	secretKey  string
	log        zerolog.Logger
}

// Verify interface compliance
var _ Compiler = (*Client)(nil)

// NewClient creates a Langfuse prompt client.
func NewClient(cfg config.LangfuseConfig, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		host:       strings.TrimRight(cfg.Host, "/"),
		publicKey:  cfg.PublicKey,
		secretKey:  cfg.SecretKey,
		log:        log.With().Str("client", "langfuse").Logger(),
	}
}

// Compile fetches the production version of the named prompt and substitutes
// {{variable}} placeholders from vars.
func (c *Client) Compile(ctx context.Context, name string, vars map[string]string) (string, error) {
	template, err := c.fetchPrompt(ctx, name)
	if err != nil {
		return "", err
	}
	return Substitute(template, vars), nil
}

func (c *Client) fetchPrompt(ctx context.Context, name string) (string, error) {
	requestURL := fmt.Sprintf("%s/api/public/v2/prompts/%s", c.host, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewUpstreamError("langfuse", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstreamError("langfuse", fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode == http.StatusNotFound {
		return "", apperrors.NewNotFoundError("prompt", name)
	}
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewUpstreamError("langfuse",
			fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body)))
	}

	var prompt struct {
		Name   string          `json:"name"`
		Type   string          `json:"type"`
		Prompt json.RawMessage `json:"prompt"`
	}
	if err := json.Unmarshal(body, &prompt); err != nil {
		return "", apperrors.NewUpstreamError("langfuse", fmt.Errorf("failed to decode response: %w", err))
	}

	// Text prompts are a JSON string; chat prompts are a message array. Chat
	// messages are flattened in order.
	var text string
	if err := json.Unmarshal(prompt.Prompt, &text); err == nil {
		return text, nil
	}
	var messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(prompt.Prompt, &messages); err != nil {
		return "", apperrors.NewUpstreamError("langfuse", fmt.Errorf("unrecognized prompt shape for %q", name))
	}
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, msg.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Ping verifies connectivity and credentials. With a prompt name it fetches
// that prompt; otherwise it hits the health endpoint.
func (c *Client) Ping(ctx context.Context, promptName string) error {
	if promptName != "" {
		_, err := c.fetchPrompt(ctx, promptName)
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+"/api/public/health", nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamError("langfuse", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewUpstreamError("langfuse", fmt.Errorf("health check returned %d", resp.StatusCode))
	}
	return nil
}

// Substitute replaces {{variable}} placeholders in template with values from
// vars. Unknown placeholders are left untouched so a malformed template is
// visible in the generated output rather than silently blanked.
func Substitute(template string, vars map[string]string) string {
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}
