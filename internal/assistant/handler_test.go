package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-builder/internal/ai"
	"resume-builder/internal/credits"
	"resume-builder/internal/shared/server/middleware"
)

func newAssistantRouter(a Assister, ledger *credits.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	f := NewFacade(a)
	analyzer := NewCVAnalyzer(f)
	analyzer.RetryDelay = time.Millisecond
	var l CreditLedger
	if ledger != nil {
		l = ledger
	}
	r := gin.New()
	api := r.Group("/api/v1", middleware.Auth(true))
	NewHandler(f, analyzer, l).RegisterRoutes(api)
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func balance(t *testing.T, ledger *credits.Service) int {
	t.Helper()
	b, err := ledger.Get(context.Background(), "user-1")
	require.NoError(t, err)
	return b.Balance
}

func TestHandlerChargesOneCredit(t *testing.T) {
	ledger := credits.NewService()
	fa := &fakeAssister{env: ai.Envelope{Suggestions: ai.Suggestions{Summary: "Great engineer"}}}
	r := newAssistantRouter(fa, ledger)

	resp := postJSON(r, "/api/v1/assistant/summary", `{"resumeData":{"summary":"x"},"targetRole":"SRE"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "Great engineer")
	assert.Equal(t, credits.DefaultBalance-1, balance(t, ledger))
}

func TestHandlerRefundsFailedCall(t *testing.T) {
	ledger := credits.NewService()
	r := newAssistantRouter(&fakeAssister{err: ai.ErrNoProvider}, ledger)

	resp := postJSON(r, "/api/v1/assistant/keywords", `{"jobDescription":"Go"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Contains(t, resp.Body.String(), string(ai.KindMissingAPIKey))
	assert.Equal(t, credits.DefaultBalance, balance(t, ledger))
}

func TestHandlerInsufficientCredits(t *testing.T) {
	ledger := credits.NewService()
	_, err := ledger.Consume(context.Background(), "user-1", credits.DefaultBalance, "test")
	require.NoError(t, err)
	fa := &fakeAssister{env: ai.Envelope{Suggestions: ai.Suggestions{Summary: "x"}}}
	r := newAssistantRouter(fa, ledger)

	resp := postJSON(r, "/api/v1/assistant/summary", `{}`)
	assert.Equal(t, http.StatusPaymentRequired, resp.Code)
	assert.Contains(t, resp.Body.String(), "insufficient_credits")
	assert.Empty(t, fa.reqs)
}

func TestHandlerValidation(t *testing.T) {
	r := newAssistantRouter(&fakeAssister{}, nil)
	resp := postJSON(r, "/api/v1/assistant/ats-score", `{"resumeData":{}}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = postJSON(r, "/api/v1/assistant/bullets", `{"bullets":[]}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandlerRateLimitStatus(t *testing.T) {
	r := newAssistantRouter(&fakeAssister{err: &CallError{Kind: ai.KindRateLimit, Status: 429}}, nil)
	resp := postJSON(r, "/api/v1/assistant/cover-letter", `{"jobDescription":"Go","company":"Acme"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Contains(t, resp.Body.String(), "rate_limit")
}

func TestHandlerExtractCVFromText(t *testing.T) {
	fa := &fakeAssister{env: ai.Envelope{ExtractedData: map[string]any{
		"personalInfo": map[string]any{"fullName": "Grace Hopper"},
	}}}
	r := newAssistantRouter(fa, nil)

	resp := postJSON(r, "/api/v1/assistant/cv/extract", `{"text":"Grace Hopper, Rear Admiral"}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Contains(t, resp.Body.String(), "Grace Hopper")
	assert.Contains(t, resp.Body.String(), `"status":"success"`)
}

func TestHandlerExtractCVFromUpload(t *testing.T) {
	fa := &fakeAssister{env: ai.Envelope{ExtractedData: map[string]any{
		"personalInfo": map[string]any{"fullName": "Alan Turing"},
	}}}
	r := newAssistantRouter(fa, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "cv.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("Alan Turing\nMathematician"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assistant/cv/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Len(t, fa.reqs, 1)
	assert.Contains(t, fa.reqs[0].Context.CVText, "Mathematician")
}

func TestHandlerExtractCVFailureKeepsAttempts(t *testing.T) {
	ledger := credits.NewService()
	fa := &fakeAssister{err: errors.New("upstream unavailable")}
	r := newAssistantRouter(fa, ledger)
	before := balance(t, ledger)

	resp := postJSON(r, "/api/v1/assistant/cv/extract", `{"text":"Ada Lovelace, analyst"}`)
	require.Equal(t, http.StatusInternalServerError, resp.Code, resp.Body.String())

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Details struct {
				Attempts []AttemptStatus `json:"attempts"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, string(ai.KindGeneric), body.Error.Code)
	require.Len(t, body.Error.Details.Attempts, DefaultMaxAttempts)
	for i, st := range body.Error.Details.Attempts {
		assert.Equal(t, i+1, st.Attempt)
		assert.Equal(t, AttemptFailed, st.Status)
		assert.Contains(t, st.Error, "upstream unavailable")
	}
	assert.Len(t, fa.reqs, DefaultMaxAttempts)
	assert.Equal(t, before, balance(t, ledger))
}
