// Package healthcheck reports whether the cart service and its backing stores
// can serve requests. Checks run concurrently and the aggregate is cached for
// a configurable window so frequent orchestrator polls do not hammer the
// database or Redis.
package healthcheck

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// severity orders statuses so the report carries the worst one
func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Check is the outcome of checking one dependency
type Check struct {
	Name       string      `json:"name"`
	Status     Status      `json:"status"`
	Message    string      `json:"message,omitempty"`
	CheckedAt  time.Time   `json:"checked_at"`
	DurationMS float64     `json:"duration_ms"`
	Details    interface{} `json:"details,omitempty"`
}

// Report aggregates every registered check
type Report struct {
	Status     Status    `json:"status"`
	Version    string    `json:"version"`
	CheckedAt  time.Time `json:"checked_at"`
	DurationMS float64   `json:"duration_ms"`
	Checks     []Check   `json:"checks"`
}

// Checker checks one dependency
type Checker interface {
	Check(ctx context.Context) Check
}

// CheckFunc adapts a plain function to Checker
type CheckFunc func(ctx context.Context) (Status, string, interface{})

// Check runs f and times it
func (f CheckFunc) Check(ctx context.Context) Check {
	start := time.Now()
	status, message, details := f(ctx)
	return Check{
		Status:     status,
		Message:    message,
		Details:    details,
		CheckedAt:  start,
		DurationMS: millis(time.Since(start)),
	}
}

// Options configures a HealthCheck
type Options struct {
	Version string
	// CacheTTL is how long a report is reused. Zero checks on every call.
	CacheTTL time.Duration
	// Timeout bounds a single round of checks
	Timeout time.Duration
}

// HealthCheck runs the registered checkers and caches the report
type HealthCheck struct {
	opts     Options
	logger   *zap.Logger
	mu       sync.RWMutex
	checkers map[string]Checker
	last     *Report
}

// New creates a health check. A zero Timeout falls back to ten seconds.
func New(opts Options, logger *zap.Logger) *HealthCheck {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &HealthCheck{
		opts:     opts,
		logger:   logger.Named("healthcheck"),
		checkers: make(map[string]Checker),
	}
}

// Register adds or replaces the checker reported under name
func (h *HealthCheck) Register(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Check returns the cached report while it is fresh and runs the checkers otherwise
func (h *HealthCheck) Check(ctx context.Context) Report {
	h.mu.RLock()
	last := h.last
	h.mu.RUnlock()
	if last != nil && time.Since(last.CheckedAt) < h.opts.CacheTTL {
		return *last
	}

	report := h.run(ctx)

	h.mu.Lock()
	if h.last != nil && h.last.Status != report.Status {
		h.logger.Info("Health status changed",
			zap.String("from", string(h.last.Status)),
			zap.String("to", string(report.Status)),
		)
	}
	h.last = &report
	h.mu.Unlock()

	return report
}

func (h *HealthCheck) run(ctx context.Context) Report {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, h.opts.Timeout)
	defer cancel()

	h.mu.RLock()
	checks := make([]Check, 0, len(h.checkers))
	var (
		wg      sync.WaitGroup
		resultM sync.Mutex
	)
	for name, checker := range h.checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()
			check := checker.Check(ctx)
			check.Name = name
			resultM.Lock()
			checks = append(checks, check)
			resultM.Unlock()
		}(name, checker)
	}
	h.mu.RUnlock()
	wg.Wait()

	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })

	status := StatusHealthy
	for _, c := range checks {
		if c.Status.severity() > status.severity() {
			status = c.Status
		}
		if c.Status != StatusHealthy {
			h.logger.Warn("Dependency check failed",
				zap.String("check", c.Name),
				zap.String("status", string(c.Status)),
				zap.String("message", c.Message),
			)
		}
	}

	return Report{
		Status:     status,
		Version:    h.opts.Version,
		CheckedAt:  start,
		DurationMS: millis(time.Since(start)),
		Checks:     checks,
	}
}

// Handler serves the full report; only an unhealthy service answers 503
func (h *HealthCheck) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.Check(c.Request.Context())
		code := http.StatusOK
		if report.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, report)
	}
}

// LivenessHandler answers as long as the process can serve HTTP
func (h *HealthCheck) LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "version": h.opts.Version})
	}
}

// ReadinessHandler accepts traffic only when every check is healthy. A
// degraded catalog (no dishes) keeps the instance out of rotation.
func (h *HealthCheck) ReadinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.Check(c.Request.Context())
		if report.Status != StatusHealthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"checks": report.Checks,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// DatabaseChecker pings the database and reports its pool. It is degraded
// once nine in ten pooled connections are busy.
func DatabaseChecker(db *sql.DB) CheckFunc {
	return func(ctx context.Context) (Status, string, interface{}) {
		if err := db.PingContext(ctx); err != nil {
			return StatusUnhealthy, err.Error(), nil
		}
		stats := db.Stats()
		details := map[string]int{
			"open_conns": stats.OpenConnections,
			"in_use":     stats.InUse,
			"idle":       stats.Idle,
			"max_conns":  stats.MaxOpenConnections,
		}
		if stats.MaxOpenConnections > 0 && stats.InUse*10 >= stats.MaxOpenConnections*9 {
			return StatusDegraded, "Connection pool nearly exhausted", details
		}
		return StatusHealthy, "", details
	}
}

// RedisChecker pings the Redis session store
func RedisChecker(client redis.UniversalClient) CheckFunc {
	return func(ctx context.Context) (Status, string, interface{}) {
		if err := client.Ping(ctx).Err(); err != nil {
			return StatusUnhealthy, err.Error(), nil
		}
		stats := client.PoolStats()
		return StatusHealthy, "", map[string]uint32{
			"total_conns": stats.TotalConns,
			"idle_conns":  stats.IdleConns,
			"timeouts":    stats.Timeouts,
		}
	}
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
