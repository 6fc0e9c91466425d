package healthcheck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func staticChecker(status Status) CheckFunc {
	return func(ctx context.Context) (Status, string, interface{}) {
		return status, string(status), nil
	}
}

func TestHealthCheck_Check(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"NoCheckers", nil, StatusHealthy},
		{"AllHealthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"OneDegraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"UnhealthyWins", []Status{StatusDegraded, StatusUnhealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := New(Options{Version: "1.0.0"}, zap.NewNop())
			for i, status := range tt.statuses {
				hc.Register(string(rune('a'+i)), staticChecker(status))
			}

			response := hc.Check(context.Background())

			assert.Equal(t, tt.want, response.Status)
			assert.Equal(t, "1.0.0", response.Version)
			require.Len(t, response.Checks, len(tt.statuses))
			for i, check := range response.Checks {
				assert.Equal(t, string(rune('a'+i)), check.Name, "checks are sorted and named by registration")
			}
		})
	}
}

func TestHealthCheck_CacheTTL(t *testing.T) {
	counting := func(calls *int32) CheckFunc {
		return func(ctx context.Context) (Status, string, interface{}) {
			atomic.AddInt32(calls, 1)
			return StatusHealthy, "", nil
		}
	}

	t.Run("FreshReport_ShouldBeReused", func(t *testing.T) {
		// Arrange
		var calls int32
		hc := New(Options{Version: "1.0.0", CacheTTL: time.Hour}, zap.NewNop())
		hc.Register("counter", counting(&calls))

		// Act
		first := hc.Check(context.Background())
		second := hc.Check(context.Background())

		// Assert
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.Equal(t, first.CheckedAt, second.CheckedAt)
	})

	t.Run("ZeroTTL_ShouldCheckEveryCall", func(t *testing.T) {
		// Arrange
		var calls int32
		hc := New(Options{Version: "1.0.0"}, zap.NewNop())
		hc.Register("counter", counting(&calls))

		// Act
		hc.Check(context.Background())
		hc.Check(context.Background())

		// Assert
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})
}

func TestHealthCheck_Timeout(t *testing.T) {
	t.Run("SlowChecker_ShouldBeCutOff", func(t *testing.T) {
		// Arrange
		hc := New(Options{Timeout: 20 * time.Millisecond}, zap.NewNop())
		hc.Register("slow", CheckFunc(func(ctx context.Context) (Status, string, interface{}) {
			<-ctx.Done()
			return StatusUnhealthy, ctx.Err().Error(), nil
		}))

		// Act
		report := hc.Check(context.Background())

		// Assert
		assert.Equal(t, StatusUnhealthy, report.Status)
		require.Len(t, report.Checks, 1)
		assert.Equal(t, context.DeadlineExceeded.Error(), report.Checks[0].Message)
	})
}

func TestHandlers(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(status Status) *gin.Engine {
		hc := New(Options{Version: "1.0.0"}, zap.NewNop())
		hc.Register("catalog", staticChecker(status))
		router := gin.New()
		router.GET("/health", hc.Handler())
		router.GET("/health/live", hc.LivenessHandler())
		router.GET("/health/ready", hc.ReadinessHandler())
		return router
	}

	serve := func(router *gin.Engine, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("Healthy", func(t *testing.T) {
		router := newRouter(StatusHealthy)
		w := serve(router, "/health")
		assert.Equal(t, http.StatusOK, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Contains(t, body, "duration_ms")

		assert.Equal(t, http.StatusOK, serve(router, "/health/ready").Code)
	})

	t.Run("Degraded_ShouldNotBeReady", func(t *testing.T) {
		router := newRouter(StatusDegraded)
		assert.Equal(t, http.StatusOK, serve(router, "/health").Code)
		assert.Equal(t, http.StatusServiceUnavailable, serve(router, "/health/ready").Code)
	})

	t.Run("Unhealthy", func(t *testing.T) {
		router := newRouter(StatusUnhealthy)
		assert.Equal(t, http.StatusServiceUnavailable, serve(router, "/health").Code)
		assert.Equal(t, http.StatusOK, serve(router, "/health/live").Code)
	})
}

func TestDatabaseChecker(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	checker := DatabaseChecker(sqlDB)
	check := checker.Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status)
	assert.Contains(t, check.Details, "open_conns")

	require.NoError(t, sqlDB.Close())
	check = checker.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
	assert.NotEmpty(t, check.Message)
}

func TestCheckFunc_ShouldEncodeMilliseconds(t *testing.T) {
	check := CheckFunc(func(ctx context.Context) (Status, string, interface{}) {
		time.Sleep(2 * time.Millisecond)
		return StatusHealthy, "", nil
	}).Check(context.Background())

	data, err := json.Marshal(check)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.GreaterOrEqual(t, decoded["duration_ms"], 2.0)
	assert.Equal(t, "healthy", decoded["status"])
}
