// Package openrouter calls an OpenAI-compatible chat-completions endpoint (OpenRouter by default).
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	// ProviderName identifies this provider in envelopes and metrics.
	ProviderName = "openrouter"

	defaultBaseURL = "https://openrouter.ai/api/v1"
	appTitle       = "Resume Builder"
)

// Client implements ai.Provider using openai-go.
type Client struct {
	client openai.Client
	model  string
}

// New creates a client. An empty baseURL targets OpenRouter.
func New(apiKey, model, baseURL string, extra ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openrouter: API key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("openrouter: model is required")
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(strings.TrimRight(baseURL, "/") + "/"),
		option.WithMaxRetries(0),
		option.WithHeader("X-Title", appTitle),
	}
	opts = append(opts, extra...)
	return &Client{client: openai.NewClient(opts...), model: model}, nil
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// Generate sends prompt as a single user message and returns the first choice's text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openrouter: status %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("openrouter: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openrouter: no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
