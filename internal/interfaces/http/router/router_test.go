package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type pingRoutes struct{}

func (pingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/channels/:id/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	rg.GET("/fail", func(c *gin.Context) {
		c.Status(http.StatusBadGateway)
	})
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Register(pingRoutes{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/channels/abc/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterSetup_Health(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v2"), WithHealth(func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})).Register(pingRoutes{}).Setup()

	for path, want := range map[string]int{
		"/health":                 http.StatusOK,
		"/api/v2/channels/x/ping": http.StatusOK,
		"/api/v1/channels/x/ping": http.StatusNotFound,
		"/api/v2/health":          http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestRouterSetup_AuthGuardsAPIOnly(t *testing.T) {
	engine := gin.New()
	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	NewRouter(engine, WithAuth(deny), WithHealth(func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})).Register(pingRoutes{}).Setup()

	for path, want := range map[string]int{
		"/health":                 http.StatusOK,
		"/api/v1/channels/x/ping": http.StatusUnauthorized,
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestNewEngine_LogsAndTraces(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	core, recorded := observer.New(zapcore.InfoLevel)
	engine, err := NewEngine(EngineConfig{Logger: zap.New(core), ServiceName: "marketsync-test", Tracing: true})
	require.NoError(t, err)
	NewRouter(engine).Register(pingRoutes{}).Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/channels/c-42/ping", nil)
	req.Header.Set("X-Request-ID", "req-7")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-7", w.Header().Get("X-Request-ID"))
	assert.Len(t, recorded.FilterMessage("HTTP Request").All(), 1)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "req-7", attrs["request_id"])
	assert.Equal(t, "c-42", attrs["channel.id"])
}

func TestNewEngine_RecordsHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	engine, err := NewEngine(EngineConfig{Meter: mp.Meter("http.server")})
	require.NoError(t, err)
	NewRouter(engine).Register(pingRoutes{}).Setup()

	for _, path := range []string{"/api/v1/channels/a/ping", "/api/v1/channels/b/ping", "/api/v1/fail"} {
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_server_request_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value("http.route")
				counts[route.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, int64(2), counts["/api/v1/channels/:id/ping"])
	assert.Equal(t, int64(1), counts["/api/v1/fail"])
}
