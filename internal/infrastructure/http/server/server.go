// Package server provides the HTTP server for the meal plan API
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alchemorsel/mealcart/internal/infrastructure/config"
	"github.com/alchemorsel/mealcart/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealcart/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealcart/internal/infrastructure/monitoring"
	"github.com/alchemorsel/mealcart/pkg/healthcheck"
)

// APIPrefix is the base path of the versioned API
const APIPrefix = "/api/v1"

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	router  *gin.Engine
	server  *http.Server
	mw      *middleware.Middleware
	handler *handlers.MealPlanHandler
	health  *healthcheck.HealthCheck
	metrics *monitoring.MetricsCollector
	tracing *monitoring.TracingProvider
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	mw *middleware.Middleware,
	handler *handlers.MealPlanHandler,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
	tracing *monitoring.TracingProvider,
) *Server {
	s := &Server{
		config:  cfg,
		logger:  logger.Named("http-server"),
		mw:      mw,
		handler: handler,
		health:  health,
		metrics: metrics,
		tracing: tracing,
	}

	s.router = s.setupRouter()
	s.server = &http.Server{
		Addr:           cfg.GetServerAddr(),
		Handler:        s.router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

func (s *Server) setupRouter() *gin.Engine {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		s.logger.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(s.mw.RequestID())
	r.Use(s.mw.Recovery())
	r.Use(s.mw.Logger())
	r.Use(s.mw.Security())
	r.Use(s.mw.CORS())
	if s.tracing != nil && s.config.Monitoring.EnableTracing {
		r.Use(s.tracing.Middleware())
	}
	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.Use(s.metrics.HTTPMiddleware())
	}
	r.Use(s.mw.ErrorHandler())

	// Health endpoints stay outside the rate limit
	healthPath := s.config.Monitoring.HealthCheckPath
	r.GET(healthPath, s.health.Handler())
	r.GET(healthPath+"/live", s.health.LivenessHandler())
	r.GET(healthPath+"/ready", s.health.ReadinessHandler())

	if s.metrics != nil && s.config.Monitoring.EnableMetrics {
		r.GET(s.config.Monitoring.MetricsPath, gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group(APIPrefix)
	api.Use(s.mw.RateLimit())
	s.handler.RegisterRoutes(api)

	return r
}

// Handler returns the server's root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
