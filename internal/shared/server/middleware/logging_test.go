package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"resume-builder/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	prev := telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(prev) })

	router := gin.New()
	router.Use(RequestID(), Auth(true), Logging())
	router.GET("/test", func(c *gin.Context) {
		c.Set("resumeId", "resume-1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-User-Id", "user-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	payload := entries[0].ContextMap()
	for _, key := range []string{"request_id", "user_id", "resume_id", "duration_ms", "status"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["user_id"] != "user-1" {
		t.Fatalf("unexpected user_id: %v", payload["user_id"])
	}
	if payload["resume_id"] != "resume-1" {
		t.Fatalf("unexpected resume_id: %v", payload["resume_id"])
	}
	if payload["request_id"] != resp.Header().Get("X-Request-Id") {
		t.Fatalf("request_id does not match response header")
	}
}
