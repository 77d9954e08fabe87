package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every collector exported at /metrics.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)

	aiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "AI provider calls by request type, provider and outcome.",
		},
		[]string{"type", "provider", "outcome"},
	)

	aiFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ai_fallback_total",
		Help: "Times the secondary AI provider was tried after a quota or rate-limit error.",
	})

	aiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "End-to-end duration of AI assist requests.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"type"},
	)
)

func init() {
	Registry.MustRegister(httpRequests, aiRequests, aiFallbacks, aiDuration)
}

// IncAIRequest counts one provider call.
func IncAIRequest(requestType, provider, outcome string) {
	aiRequests.WithLabelValues(requestType, provider, outcome).Inc()
}

// IncAIFallback counts one primary-to-secondary transition.
func IncAIFallback() {
	aiFallbacks.Inc()
}

// ObserveAIDuration records how long an assist request took.
func ObserveAIDuration(requestType string, d time.Duration) {
	aiDuration.WithLabelValues(requestType).Observe(d.Seconds())
}

// Middleware counts requests by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves Prometheus metrics.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
