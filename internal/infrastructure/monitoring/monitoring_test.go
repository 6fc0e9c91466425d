package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

func TestMetricsCollector(t *testing.T) {
	m := NewMetricsCollector(zap.NewNop())

	m.RecordToggle("toggle_dish", "ok")
	m.RecordToggle("toggle_dish", "ok")
	m.RecordToggle("toggle_substitution", "rejected")
	m.RecordCartResolved(4, time.Millisecond)
	m.AddActiveSessions(1)
	m.AddActiveSessions(1)
	m.AddActiveSessions(-1)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(m.HTTPMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `mealcart_http_requests_total{method="GET",path="/ping",status_code="204"} 1`)
	assert.Contains(t, body, "mealcart_cart_resolve_duration_seconds_count 1")
	assert.Contains(t, body, `mealcart_selection_toggles_total{action="toggle_dish",outcome="ok"} 2`)
	assert.Contains(t, body, `mealcart_selection_toggles_total{action="toggle_substitution",outcome="rejected"} 1`)
	assert.Contains(t, body, "mealcart_active_sessions 1")
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestTracingMiddleware(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := newTracingProvider(TracingConfig{ServiceName: "mealcart-test", SamplingRate: 1}, zap.NewNop(),
		sdktrace.WithSpanProcessor(recorder),
	)
	defer tp.Shutdown(context.Background())

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(tp.Middleware())

	var traceID string
	router.GET("/sessions/:id", func(c *gin.Context) {
		traceID = TraceIDFromContext(c.Request.Context())
		c.Status(http.StatusInternalServerError)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /sessions/:id", spans[0].Name())
	assert.Equal(t, spans[0].SpanContext().TraceID().String(), traceID)
	assert.Equal(t, "Error", spans[0].Status().Code.String())
}

func TestDisabledTracing_ShouldNotRecord(t *testing.T) {
	tp, err := NewTracingProvider(TracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	ctx, span := tp.StartSpan(context.Background(), "noop")
	span.End()
	assert.Empty(t, TraceIDFromContext(ctx))
	assert.NoError(t, tp.Shutdown(context.Background()))
}
