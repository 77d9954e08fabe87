package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAIRequestCounter(t *testing.T) {
	before := testutil.ToFloat64(aiRequests.WithLabelValues("summary", "gemini", "success"))
	IncAIRequest("summary", "gemini", "success")
	after := testutil.ToFloat64(aiRequests.WithLabelValues("summary", "gemini", "success"))
	if after-before != 1 {
		t.Fatalf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))
	IncAIFallback()

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := resp.Body.String()
	for _, want := range []string{"http_requests_total", "ai_fallback_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %s in metrics output", want)
		}
	}
}
