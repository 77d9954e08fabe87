package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server/middleware"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": middleware.UserIDFromContext(c)})
	})
	rg.POST("/assistant/summary", func(c *gin.Context) { c.Status(http.StatusOK) })
}

func (pingHandler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.GET("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })
}

type fnHandler struct{}

func (fnHandler) RegisterFunctionRoutes(rg *gin.RouterGroup) {
	rg.POST("/gemini-ai-assistant", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
}

func testConfig(env string) config.Config {
	return config.Config{
		Env:             env,
		CORSAllowOrigin: []string{"http://localhost:5173"},
		RateLimitRPS:    0.001,
		RateLimitBurst:  2,
	}
}

func serve(r http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRouterMountsHandlersBehindAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{Config: testConfig("dev"), Handlers: []RouteRegistrar{pingHandler{}}, Dev: []DevRouteRegistrar{pingHandler{}}})

	if resp := serve(r, http.MethodGet, "/api/v1/ping", nil); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", resp.Code)
	}
	resp := serve(r, http.MethodGet, "/api/v1/ping", map[string]string{"X-User-Id": "user-9"})
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "user-9") {
		t.Fatalf("unexpected response %d %s", resp.Code, resp.Body.String())
	}
	if resp := serve(r, http.MethodGet, "/api/v1/dev/echo", map[string]string{"X-User-Id": "user-9"}); resp.Code != http.StatusOK {
		t.Fatalf("expected dev route in dev, got %d", resp.Code)
	}
}

func TestRouterHidesDevRoutesInProduction(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{Config: testConfig("production"), Handlers: []RouteRegistrar{pingHandler{}}, Dev: []DevRouteRegistrar{pingHandler{}}})
	if resp := serve(r, http.MethodGet, "/api/v1/dev/echo", map[string]string{"X-User-Id": "user-9"}); resp.Code != http.StatusNotFound {
		t.Fatalf("expected no dev routes in production, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/api/v1/ping", map[string]string{"X-User-Id": "user-9"}); resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected dev header rejected in production, got %d", resp.Code)
	}
}

func TestRouterRateLimitsAIRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{Config: testConfig("dev"), Handlers: []RouteRegistrar{pingHandler{}}})
	hdr := map[string]string{"X-User-Id": "user-1"}

	for i := 0; i < 2; i++ {
		if resp := serve(r, http.MethodPost, "/api/v1/assistant/summary", hdr); resp.Code != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d", i, resp.Code)
		}
	}
	resp := serve(r, http.MethodPost, "/api/v1/assistant/summary", hdr)
	if resp.Code != http.StatusTooManyRequests || resp.Header().Get("Retry-After") == "" {
		t.Fatalf("expected 429 with Retry-After, got %d", resp.Code)
	}
	for i := 0; i < 5; i++ {
		if resp := serve(r, http.MethodGet, "/api/v1/ping", hdr); resp.Code != http.StatusOK {
			t.Fatalf("non-AI route should not be limited, got %d", resp.Code)
		}
	}
}

func TestRouterFunctionPathIsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{Config: testConfig("production"), Function: fnHandler{}})

	resp := serve(r, http.MethodOptions, "/functions/v1/gemini-ai-assistant", map[string]string{
		"Origin":                        "https://any.example",
		"Access-Control-Request-Method": http.MethodPost,
	})
	if resp.Code != http.StatusNoContent || resp.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("unexpected preflight %d %q", resp.Code, resp.Header().Get("Access-Control-Allow-Origin"))
	}
	if resp := serve(r, http.MethodPost, "/functions/v1/gemini-ai-assistant", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestRouterReadiness(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{Config: testConfig("dev"), Readiness: func(context.Context) error { return errors.New("db down") }})
	if resp := serve(r, http.MethodGet, "/health", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/ready", nil); resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected ready 503, got %d", resp.Code)
	}
	if resp := serve(r, http.MethodGet, "/metrics", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", resp.Code)
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
