package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const aiRateGroup = "AI"

// RouteRegistrar attaches a feature's routes to a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// DevRouteRegistrar attaches routes that only exist in dev-like environments.
type DevRouteRegistrar interface {
	RegisterDevRoutes(rg *gin.RouterGroup)
}

// FunctionRegistrar serves the hosted assistant function path.
type FunctionRegistrar interface {
	RegisterFunctionRoutes(rg *gin.RouterGroup)
}

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config    config.Config
	Function  FunctionRegistrar
	Handlers  []RouteRegistrar
	Dev       []DevRouteRegistrar
	Readiness func(ctx context.Context) error
	Limiter   middleware.Limiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !deps.Config.IsDevLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		corsByPath(deps.Config.CORSAllowOrigin),
	)

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	rateLimit := middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			aiRateGroup: {Rate: deps.Config.RateLimitRPS, Burst: deps.Config.RateLimitBurst},
		},
		GroupFor: aiGroupFor,
		Limiter:  limiter,
	})

	r.GET("/health", health(nil))
	r.GET("/ready", health(deps.Readiness))
	r.GET("/metrics", metrics.Handler())

	if deps.Function != nil {
		fn := r.Group("/functions/v1", rateLimit)
		deps.Function.RegisterFunctionRoutes(fn)
	}

	api := r.Group("/api/v1",
		middleware.Auth(deps.Config.IsDevLike()),
		rateLimit,
	)
	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(api)
		}
	}
	if deps.Config.IsDevLike() {
		dev := api.Group("/dev")
		for _, h := range deps.Dev {
			if h != nil {
				h.RegisterDevRoutes(dev)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, "not_found", "route not found", nil)
	})
	return r
}

// corsByPath answers the hosted function path for any origin and the API
// for the configured origins only.
func corsByPath(origins []string) gin.HandlerFunc {
	api := middleware.CORS(origins)
	open := middleware.OpenCORS()
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/functions/") {
			open(c)
			return
		}
		api(c)
	}
}

// aiGroupFor puts every AI-backed route into one rate-limit bucket.
func aiGroupFor(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case strings.HasPrefix(path, "/functions/v1/"),
		strings.HasPrefix(path, "/api/v1/assistant/"),
		strings.HasPrefix(path, "/api/v1/ai/"):
		return aiRateGroup
	default:
		return ""
	}
}

func health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, "unavailable", "dependency check failed", err.Error())
				return
			}
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
