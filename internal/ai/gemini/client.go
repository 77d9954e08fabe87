// Package gemini calls the Google Generative Language API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ProviderName identifies this provider in envelopes and metrics.
const ProviderName = "gemini"

// Client implements ai.Provider on top of generative-ai-go.
type Client struct {
	client   *genai.Client
	model    string
	generate func(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error)
}

// New creates a Gemini client for model.
func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("gemini: model is required")
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c := &Client{client: client, model: model}
	c.generate = c.generateContent
	return c, nil
}

// Name returns the provider name.
func (c *Client) Name() string { return ProviderName }

// Generate sends prompt and returns the reply text with code fences removed.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	return cleanJSONBlock(text), nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *Client) generateContent(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.4)
	model.ResponseMIMEType = "application/json"
	return model.GenerateContent(ctx, genai.Text(prompt))
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini: no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no content in response (finish reason %s)", candidate.FinishReason)
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini: no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
