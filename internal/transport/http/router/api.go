package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"freelance-market/internal/core/config"
	"freelance-market/internal/core/server"
	mdw "freelance-market/internal/transport/http/middleware"
	resp "freelance-market/internal/transport/http/response"
)

// Options wires an engine. Registerer/Gatherer default to the prometheus
// globals; tests pass a fresh registry.
type Options struct {
	Log        *zap.Logger
	Limits     config.Limits
	Resolver   mdw.CallerResolver
	Registry   *Registry
	Health     func(ctx context.Context) error // optional readiness probe
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

func (o Options) logger() *zap.Logger {
	if o.Log == nil {
		return zap.NewNop()
	}
	return o.Log
}

// base builds the engine shared by both servers: middleware chain, /health and /metrics.
func base(o Options, name string) *gin.Engine {
	l := o.logger()
	reg, gat := o.Registerer, o.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gat == nil {
		gat = prometheus.DefaultGatherer
	}

	r := server.NewRouter(l)
	r.Use(
		mdw.RequestID(),
		// outermost so shed requests (429, 503, 504) are counted and logged too
		mdw.NewHTTPMetrics(reg, name).Handler(),
		mdw.AccessLog(l),
		mdw.RateLimit(rate.Limit(o.Limits.RPS), o.Limits.Burst),
		mdw.RateLimitPerIP(rate.Limit(o.Limits.PerIPRPS), o.Limits.PerIPBurst),
		mdw.ConcurrencyLimit(o.Limits.MaxConcurrent),
		mdw.MaxBodyBytes(o.Limits.MaxBodyBytes),
		mdw.Timeout(time.Duration(o.Limits.RequestTimeout)*time.Second),
	)

	r.GET("/health", func(c *gin.Context) {
		if o.Health != nil {
			if err := o.Health(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				resp.Abort(c, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		c.JSON(http.StatusOK, resp.OK(gin.H{"ok": 1}))
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gat, promhttp.HandlerOpts{})))

	r.NoRoute(func(c *gin.Context) { resp.Abort(c, http.StatusNotFound, "route not found") })
	return r
}

// NewAPIEngine serves /api/v1. Tokens are resolved when present; each action
// decides whether a caller is required.
func NewAPIEngine(o Options) *gin.Engine {
	r := base(o, "api")
	api := r.Group("/api/v1")
	api.Use(mdw.Auth(o.Resolver))
	o.Registry.MountAllAPI(api)
	return r
}
