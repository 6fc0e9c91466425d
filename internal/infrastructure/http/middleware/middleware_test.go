package middleware

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/alchemorsel/mealcart/internal/infrastructure/config"
	"github.com/alchemorsel/mealcart/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		App:        config.AppConfig{Environment: "test"},
		Monitoring: config.MonitoringConfig{HealthCheckPath: "/health"},
		RateLimit:  config.RateLimitConfig{Enable: true, RequestsPerMin: 60, BurstSize: 1},
	}
}

func TestClientLimiters(t *testing.T) {
	limiters := newClientLimiters(rate.Limit(0), 1, time.Hour)

	assert.True(t, limiters.allow("10.0.0.1"))
	assert.False(t, limiters.allow("10.0.0.1"))
	assert.True(t, limiters.allow("10.0.0.2"), "buckets are per client")

	limiters.lastCleanup = time.Now().Add(-2 * time.Hour)
	limiters.clients["10.0.0.1"].lastSeen = time.Now().Add(-2 * time.Hour)
	assert.True(t, limiters.allow("10.0.0.3"))
	assert.NotContains(t, limiters.clients, "10.0.0.1")
	assert.Contains(t, limiters.clients, "10.0.0.2")
}

func TestErrorHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	m := New(testConfig(), zap.New(core))

	router := gin.New()
	router.Use(m.RequestID(), m.ErrorHandler())
	router.GET("/app", func(c *gin.Context) {
		_ = c.Error(errors.NewSessionNotFoundError("s-1"))
	})
	router.GET("/plain", func(c *gin.Context) {
		_ = c.Error(stderrors.New("disk on fire"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire")
	assert.Equal(t, 1, logs.FilterMessage("Request failed").Len())
}

func TestLogger_ShouldSkipHealthChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)
	m := New(testConfig(), zap.New(core))

	router := gin.New()
	router.Use(m.RequestID(), m.Logger())
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/dishes", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dishes?q=x", nil))

	entries := logs.FilterMessage("Request completed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "/dishes?q=x", entries[0].ContextMap()["path"])
	}
}
