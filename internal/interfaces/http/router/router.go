// Package router assembles the gin engine and its middleware chain.
package router

import (
	"github.com/erp/marketsync/internal/infrastructure/logger"
	"github.com/erp/marketsync/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RouteRegistrar is implemented by handlers owning a set of API routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// EngineConfig configures the middleware chain
type EngineConfig struct {
	Logger      *zap.Logger
	ServiceName string
	// Tracing wraps each request in an otelgin server span
	Tracing bool
	// Meter records HTTP metrics when set
	Meter metric.Meter
}

// NewEngine returns a gin engine running, per request: panic recovery,
// the request logger, tracing when enabled, then HTTP metrics.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	chain := []gin.HandlerFunc{logger.Recovery(log), logger.GinMiddleware(log)}
	if cfg.Tracing {
		chain = append(chain, middleware.Tracing(cfg.ServiceName)...)
	}
	chain = append(chain, metrics)

	engine := gin.New()
	engine.Use(chain...)
	middleware.SetupValidator()
	return engine, nil
}

// Router mounts registrars under /api/<version>. Probes such as /health
// stay outside the versioned prefix.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	health     gin.HandlerFunc
	auth       gin.HandlerFunc
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIVersion replaces the default "v1" prefix
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithHealth serves h at GET /health
func WithHealth(h gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.health = h }
}

// WithAuth runs h in front of every versioned route
func WithAuth(h gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.auth = h }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every queued route
func (r *Router) Setup() {
	if r.health != nil {
		r.engine.GET("/health", r.health)
	}
	api := r.engine.Group("/api/" + r.apiVersion)
	if r.auth != nil {
		api.Use(r.auth)
	}
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
