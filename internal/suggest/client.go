// Package suggest implements the suggestion backend boundary: it sends the
// user's workflow description to an OpenAI-compatible chat endpoint and
// returns the raw package suggestions found in the reply.
package suggest

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/echo-systems/echo/internal/recommender"
)

const systemPrompt = `You are a software package recommendation assistant.
Given a description of a user's workflow, suggest packages they might find
useful. Respond with a JSON array only, no prose. Each element must have the
shape {"package": "<name>", "reason": "<one sentence>", "confidence": <0..1>}.`

// Config holds the connection settings for the suggestion backend.
type Config struct {
	Endpoint string // base URL, e.g. "https://api.openai.com/v1"
	Model    string // model name, e.g. "gpt-4o-mini"
	APIKey   string // optional for local endpoints
}

// Client calls an OpenAI-compatible endpoint for workflow suggestions.
// It satisfies recommender.SuggestionBackend.
type Client struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a suggestion backend client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		logger: logger.Named("suggest"),
	}, nil
}

// Suggest asks the backend for up to maxSuggestions candidates for the given
// workflow description. The caller owns the timeout via ctx. Any transport
// error or a reply with no parseable JSON is returned as an error; the
// engine treats either as backend unavailability and degrades gracefully.
func (c *Client) Suggest(ctx context.Context, workflow string, maxSuggestions int) ([]recommender.RawSuggestion, error) {
	prompt := fmt.Sprintf("Workflow description:\n%s\n\nSuggest up to %d packages.", workflow, maxSuggestions)

	c.logger.Debug("suggestion request",
		zap.String("model", c.model),
		zap.Int("workflow_len", len(workflow)),
		zap.Int("max_suggestions", maxSuggestions))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		c.logger.Warn("suggestion request failed", zap.Error(err))
		return nil, fmt.Errorf("suggestion backend: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("suggestion backend: empty response")
	}

	suggestions, err := ParseSuggestions(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("suggestion backend: %w", err)
	}

	c.logger.Info("suggestion request completed",
		zap.Int("suggestions", len(suggestions)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return suggestions, nil
}
