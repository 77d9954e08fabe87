package credits

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
)

func TestHandlerBalanceAndInsufficient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService()
	router := gin.New()
	api := router.Group("/api/v1", middleware.Auth(true))
	h := NewHandler(svc)
	h.RegisterRoutes(api)
	h.RegisterDevRoutes(api)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-User-Id", "user-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	resp := get("/api/v1/credits")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"balance":10`) {
		t.Fatalf("unexpected balance response %d %s", resp.Code, resp.Body.String())
	}

	if _, err := svc.Consume(context.Background(), "user-1", DefaultBalance, "ai"); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	_, err := svc.Consume(context.Background(), "user-1", 1, "ai")
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/ai/assist", nil)
	writeError(c, err, "x")
	if rec.Code != http.StatusPaymentRequired || !strings.Contains(rec.Body.String(), "insufficient_credits") {
		t.Fatalf("expected 402 insufficient_credits, got %d %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/credits/grant", strings.NewReader(`{"amount":3}`))
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("Content-Type", "application/json")
	grant := httptest.NewRecorder()
	router.ServeHTTP(grant, req)
	if grant.Code != http.StatusOK || !strings.Contains(grant.Body.String(), `"balance":3`) {
		t.Fatalf("unexpected grant response %d %s", grant.Code, grant.Body.String())
	}

	resp = get("/api/v1/credits/transactions?limit=1")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"reason":"grant"`) {
		t.Fatalf("unexpected transactions %s", resp.Body.String())
	}
}
