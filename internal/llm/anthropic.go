// Package llm wraps the Anthropic Messages API behind a narrow Generator
// interface so stage functions and tests never touch the SDK directly.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/content-pipeline-api/internal/apperrors"
	"github.com/content-pipeline-api/internal/config"
)

// Request is one generation call.
type Request struct {
	Prompt    string
	MaxTokens int
	// Stage and TraceID are attached as metadata for observability; they do
	// not affect generation.
	Stage   string
	TraceID string
}

// Result carries the generated text plus token usage.
type Result struct {
	Text         string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// AnthropicGenerator is the production Generator.
type AnthropicGenerator struct {
	client anthropic.Client
	model  string
	log    zerolog.Logger
}

// Verify interface compliance
var _ Generator = (*AnthropicGenerator)(nil)

// NewAnthropicGenerator creates a Generator using the configured model.
func NewAnthropicGenerator(cfg config.AnthropicConfig, log zerolog.Logger) *AnthropicGenerator {
	return &AnthropicGenerator{
		client: anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
		log:    log.With().Str("client", "anthropic").Logger(),
	}
}

// Generate runs one Messages call and returns the concatenated text blocks.
func (g *AnthropicGenerator) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.MaxTokens <= 0 {
		req.MaxTokens = 4096
	}

	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Metadata: anthropic.MetadataParam{
			UserID: anthropic.String(req.TraceID),
		},
	})
	if err != nil {
		return nil, apperrors.NewUpstreamError("anthropic", err)
	}

	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, apperrors.NewUpstreamError("anthropic",
			fmt.Errorf("response contained no text blocks (stop reason %q)", message.StopReason))
	}

	g.log.Debug().
		Str("stage", req.Stage).
		Str("trace_id", req.TraceID).
		Int64("input_tokens", message.Usage.InputTokens).
		Int64("output_tokens", message.Usage.OutputTokens).
		Msg("Generation completed")

	return &Result{
		Text:         text.String(),
		Model:        string(message.Model),
		InputTokens:  message.Usage.InputTokens,
		OutputTokens: message.Usage.OutputTokens,
	}, nil
}
