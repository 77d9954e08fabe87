package openrouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/ai"
)

func TestGenerateReturnsFirstChoice(t *testing.T) {
	var gotModel, gotPrompt, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.Unmarshal(raw, &body))
		gotModel = body.Model
		if len(body.Messages) > 0 {
			gotPrompt = body.Messages[0].Content
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "gen-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "google/gemini-flash-1.5",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": " {\"answer\":\"hi\"} "}}]
		}`))
	}))
	defer srv.Close()

	c, err := New("sk-test", "google/gemini-flash-1.5", srv.URL+"/api/v1")
	require.NoError(t, err)

	text, err := c.Generate(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, `{"answer":"hi"}`, text)
	assert.Equal(t, "google/gemini-flash-1.5", gotModel)
	assert.Equal(t, "say hi", gotPrompt)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestGenerateRateLimitIsQuotaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit exceeded","code":429}}`))
	}))
	defer srv.Close()

	c, err := New("sk-test", "m", srv.URL)
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.True(t, ai.IsQuotaError(err), err.Error())
}

func TestNewValidates(t *testing.T) {
	_, err := New("", "m", "")
	assert.Error(t, err)
	_, err = New("k", "", "")
	assert.Error(t, err)
}
