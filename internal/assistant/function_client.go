package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"resume-builder/internal/ai"
)

const functionPath = "/functions/v1/gemini-ai-assistant"

// FunctionClient calls a deployed assistant function over HTTP.
type FunctionClient struct {
	URL     string
	AnonKey string
	HTTP    *http.Client
}

// NewFunctionClient targets baseURL's assistant function. The anon key is sent
// as a bearer token.
func NewFunctionClient(baseURL, anonKey string, timeout time.Duration) *FunctionClient {
	return &FunctionClient{
		URL:     strings.TrimRight(baseURL, "/") + functionPath,
		AnonKey: anonKey,
		HTTP:    &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

type functionRequest struct {
	Prompt  string           `json:"prompt"`
	Type    ai.RequestType   `json:"type"`
	Context ai.PromptContext `json:"context"`
}

// CallError reports an error envelope or transport failure from the function.
type CallError struct {
	Kind    ai.ErrorKind
	Status  int
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("assistant function: %s (status %d): %s", e.Kind, e.Status, e.Message)
}

func (e *CallError) Unwrap() error { return ErrCallFailed }

// Assist posts req and decodes the envelope. Error envelopes are returned
// together with a *CallError carrying the upstream error kind.
func (f *FunctionClient) Assist(ctx context.Context, req ai.Request) (ai.Envelope, error) {
	body, err := json.Marshal(functionRequest{Prompt: req.Prompt, Type: req.Type, Context: req.Context})
	if err != nil {
		return ai.Envelope{}, fmt.Errorf("encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, f.URL, bytes.NewReader(body))
	if err != nil {
		return ai.Envelope{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if f.AnonKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+f.AnonKey)
		httpReq.Header.Set("apikey", f.AnonKey)
	}

	client := f.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return ai.Envelope{}, &CallError{Kind: ai.Classify(err), Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return ai.Envelope{}, &CallError{Kind: ai.KindGeneric, Status: resp.StatusCode, Message: "read body: " + err.Error()}
	}

	var env ai.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ai.Envelope{}, &CallError{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: "undecodable body"}
	}
	if env.IsError() {
		kind := ai.KindGeneric
		if env.Metadata != nil && env.Metadata.ErrorType != "" {
			kind = env.Metadata.ErrorType
		}
		return env, &CallError{Kind: kind, Status: resp.StatusCode, Message: env.Error}
	}
	if resp.StatusCode != http.StatusOK {
		return env, &CallError{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return env, nil
}

func kindForStatus(status int) ai.ErrorKind {
	if status == http.StatusTooManyRequests {
		return ai.KindRateLimit
	}
	return ai.KindGeneric
}

// KindOf returns the error kind for any error produced by an Assister.
func KindOf(err error) ai.ErrorKind {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ai.Classify(err)
}
