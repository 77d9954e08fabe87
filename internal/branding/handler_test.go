package branding

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/storage/object/local"
)

func TestHandlerGetAndUpsert(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1", middleware.Auth(true))
	NewHandler(NewService(NewMemoryRepo(), local.New(t.TempDir()))).RegisterRoutes(api)

	do := func(method, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/api/v1/branding", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-Id", "user-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	resp := do(http.MethodGet, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"primaryColor":"#1F2937"`) {
		t.Fatalf("unexpected defaults %d %s", resp.Code, resp.Body.String())
	}

	resp = do(http.MethodPut, `{"primaryColor":"blue"}`)
	if resp.Code != http.StatusBadRequest || !strings.Contains(resp.Body.String(), "primaryColor") {
		t.Fatalf("expected 400 naming the field, got %d %s", resp.Code, resp.Body.String())
	}

	resp = do(http.MethodPut, `{"primaryColor":"#112233","fontFamily":"Lato"}`)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"fontFamily":"Lato"`) {
		t.Fatalf("unexpected upsert %d %s", resp.Code, resp.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/branding/logo", nil)
	req.Header.Set("X-User-Id", "user-1")
	logo := httptest.NewRecorder()
	router.ServeHTTP(logo, req)
	if logo.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without logo, got %d", logo.Code)
	}
}
