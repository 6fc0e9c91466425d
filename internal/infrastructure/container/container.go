// Package container provides dependency injection using Uber FX
// This implements the Dependency Inversion Principle from SOLID
package container

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alchemorsel/mealcart/internal/application/mealplan"
	"github.com/alchemorsel/mealcart/internal/domain/selection"
	"github.com/alchemorsel/mealcart/internal/infrastructure/catalogfile"
	"github.com/alchemorsel/mealcart/internal/infrastructure/config"
	"github.com/alchemorsel/mealcart/internal/infrastructure/http/handlers"
	"github.com/alchemorsel/mealcart/internal/infrastructure/http/middleware"
	"github.com/alchemorsel/mealcart/internal/infrastructure/http/realtime"
	"github.com/alchemorsel/mealcart/internal/infrastructure/http/server"
	"github.com/alchemorsel/mealcart/internal/infrastructure/monitoring"
	gormRepo "github.com/alchemorsel/mealcart/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/mealcart/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/mealcart/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/alchemorsel/mealcart/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/mealcart/internal/infrastructure/persistence/sqlite"
	"github.com/alchemorsel/mealcart/internal/ports/inbound"
	"github.com/alchemorsel/mealcart/internal/ports/outbound"
	"github.com/alchemorsel/mealcart/pkg/healthcheck"
	"github.com/alchemorsel/mealcart/pkg/logger"
)

// ConfigPath is the configuration file handed to config.Load. Empty means
// the default search paths.
type ConfigPath string

// New returns the application graph for the given configuration file
func New(path ConfigPath) fx.Option {
	return fx.Options(
		fx.Supply(path),
		Module,
	)
}

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	RedisModule,
	MonitoringModule,

	// Repository modules
	CatalogModule,
	SessionModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// DatabaseModule provides the GORM connection for the configured driver
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		if cfg.Database.Driver == "postgres" {
			return postgres.Connect(cfg.Database, log)
		}

		gormLogger := postgres.NewGORMLogger(log.Named("sqlite"), cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold)
		db, err := sqlite.SetupDatabase(cfg.Database.Path, gormLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}

		log.Info("Connected to SQLite database",
			zap.String("path", cfg.Database.Path),
			zap.Bool("in_memory", cfg.Database.Path == "" || cfg.Database.Path == ":memory:"),
		)
		return db, nil
	},
)

// RedisClient is the optional Redis connection. Client is nil unless the
// session store is redis.
type RedisClient struct {
	Client goredis.UniversalClient
}

// RedisModule provides the optional Redis client
var RedisModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (RedisClient, error) {
		if cfg.Session.Store != "redis" {
			return RedisClient{}, nil
		}
		client, err := redisRepo.NewClient(context.Background(), cfg.Redis, log)
		if err != nil {
			return RedisClient{}, err
		}
		return RedisClient{Client: client}, nil
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	func(cfg *config.Config, db *gorm.DB, log *zap.Logger) *monitoring.MetricsCollector {
		metrics := monitoring.NewMetricsCollector(log)
		if sqlDB, err := db.DB(); err == nil {
			metrics.RegisterDB(sqlDB, cfg.Database.Driver)
		}
		return metrics
	},
	func(m *monitoring.MetricsCollector) outbound.MetricsRecorder { return m },
	func(cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		return monitoring.NewTracingProvider(monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
	},
)

// CatalogSource is the catalog repository plus the optional file watcher
// feeding it
type CatalogSource struct {
	Repository outbound.CatalogRepository
	Watcher    *catalogfile.Watcher
}

// CatalogModule provides the dish catalog
var CatalogModule = fx.Provide(
	func(cfg *config.Config, db *gorm.DB, log *zap.Logger) (CatalogSource, error) {
		if cfg.Catalog.Source == "file" {
			repo := memory.NewCatalogRepository()
			watcher := catalogfile.NewWatcher(cfg.Catalog.FilePath, repo, cfg.Catalog.Debounce, log)
			if err := watcher.Sync(context.Background()); err != nil {
				return CatalogSource{}, fmt.Errorf("failed to load catalog file: %w", err)
			}
			return CatalogSource{Repository: repo, Watcher: watcher}, nil
		}

		if cfg.Database.Seed {
			if err := sqlite.SeedDatabase(db); err != nil {
				log.Warn("Failed to seed database", zap.Error(err))
			}
		}
		return CatalogSource{Repository: gormRepo.NewDishRepository(db)}, nil
	},
	func(src CatalogSource) outbound.CatalogRepository { return src.Repository },
)

// SessionPurger removes expired sessions from stores without native expiry
type SessionPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// SessionStore is the session repository plus its purger, if it needs one
type SessionStore struct {
	Repository outbound.SessionRepository
	Purger     SessionPurger
}

// SessionModule provides the session snapshot store
var SessionModule = fx.Provide(
	func(cfg *config.Config, db *gorm.DB, rc RedisClient, log *zap.Logger) SessionStore {
		switch cfg.Session.Store {
		case "redis":
			return SessionStore{
				Repository: redisRepo.NewSessionRepository(rc.Client, cfg.Redis.KeyPrefix, cfg.Session.TTL, log),
			}
		case "database":
			repo := gormRepo.NewSessionRepository(db, cfg.Session.TTL)
			return SessionStore{Repository: repo, Purger: repo}
		default:
			repo := memory.NewSessionRepository(cfg.Session.TTL)
			return SessionStore{Repository: repo, Purger: repo}
		}
	},
	func(store SessionStore) outbound.SessionRepository { return store.Repository },
)

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *realtime.Hub {
		return realtime.NewHub(cfg.Server.AllowedOrigins, log)
	},
	// Cart updates go through Redis when it is available so every instance
	// reaches its own websocket subscribers
	func(cfg *config.Config, hub *realtime.Hub, rc RedisClient, log *zap.Logger) outbound.CartNotifier {
		if rc.Client != nil {
			return redisRepo.NewCartBroadcaster(rc.Client, cfg.Redis.KeyPrefix, log)
		}
		return hub
	},
	func(
		cfg *config.Config,
		catalogs outbound.CatalogRepository,
		sessions outbound.SessionRepository,
		notifier outbound.CartNotifier,
		metrics outbound.MetricsRecorder,
		log *zap.Logger,
	) inbound.MealPlanService {
		policy := selection.PolicyFor(cfg.Selection.DefaultOriginalsOnSelect)
		return mealplan.NewMealPlanService(catalogs, sessions, notifier, metrics, policy, log)
	},
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	middleware.New,
	func(service inbound.MealPlanService, hub *realtime.Hub, log *zap.Logger) *handlers.MealPlanHandler {
		return handlers.NewMealPlanHandler(service, hub, log)
	},
	NewHealthCheck,
	server.NewServer,
)

// NewHealthCheck registers a checker per backing dependency
func NewHealthCheck(
	cfg *config.Config,
	db *gorm.DB,
	rc RedisClient,
	catalogs outbound.CatalogRepository,
	log *zap.Logger,
) *healthcheck.HealthCheck {
	health := healthcheck.New(healthcheck.Options{
		Version:  cfg.App.Version,
		CacheTTL: cfg.Monitoring.HealthCacheTTL,
		Timeout:  cfg.Monitoring.HealthTimeout,
	}, log)

	if sqlDB, err := db.DB(); err == nil {
		health.Register("database", healthcheck.DatabaseChecker(sqlDB))
	}
	if rc.Client != nil {
		health.Register("redis", healthcheck.RedisChecker(rc.Client))
	}
	health.Register("catalog", healthcheck.CheckFunc(
		func(ctx context.Context) (healthcheck.Status, string, interface{}) {
			cat, err := catalogs.Load(ctx)
			if err != nil {
				return healthcheck.StatusUnhealthy, err.Error(), nil
			}
			if cat.Len() == 0 {
				return healthcheck.StatusDegraded, "Catalog is empty", nil
			}
			return healthcheck.StatusHealthy, "", map[string]interface{}{"dishes": cat.Len()}
		}))

	return health
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// LifecycleParams collects everything the lifecycle hooks start and stop
type LifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     *config.Config
	Logger     *zap.Logger
	DB         *gorm.DB
	Redis      RedisClient
	Catalog    CatalogSource
	Sessions   SessionStore
	Hub        *realtime.Hub
	Metrics    outbound.MetricsRecorder
	Tracing    *monitoring.TracingProvider
	Server     *server.Server
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(p LifecycleParams) {
	log := p.Logger
	workers, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var running int

	start := func(name string, run func(ctx context.Context) error) {
		running++
		go func() {
			defer func() { done <- struct{}{} }()
			if err := run(workers); err != nil {
				log.Error("Background worker failed", zap.String("worker", name), zap.Error(err))
			}
		}()
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting MealCart",
				zap.String("version", p.Config.App.Version),
				zap.String("environment", p.Config.App.Environment),
				zap.String("catalog_source", p.Config.Catalog.Source),
				zap.String("session_store", p.Config.Session.Store),
			)

			if p.Catalog.Watcher != nil && p.Config.Catalog.Watch {
				start("catalog-watcher", p.Catalog.Watcher.Run)
			}
			if p.Sessions.Purger != nil && p.Config.Session.TTL > 0 {
				start("session-purger", func(ctx context.Context) error {
					return runPurger(ctx, p.Sessions.Purger, p.Metrics, p.Config.Session.PurgeInterval, log)
				})
			}
			if p.Redis.Client != nil {
				broadcaster := redisRepo.NewCartBroadcaster(p.Redis.Client, p.Config.Redis.KeyPrefix, log)
				start("cart-relay", func(ctx context.Context) error {
					return broadcaster.Relay(ctx, p.Hub)
				})
			}

			go func() {
				if err := p.Server.Start(); err != nil {
					log.Error("HTTP server failed", zap.Error(err))
					_ = p.Shutdowner.Shutdown()
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down MealCart")

			if err := p.Server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			cancel()
			for i := 0; i < running; i++ {
				select {
				case <-done:
				case <-ctx.Done():
					log.Warn("Background workers did not stop in time")
					i = running
				}
			}

			if err := p.Tracing.Shutdown(ctx); err != nil {
				log.Error("Failed to flush traces", zap.Error(err))
			}
			if p.Redis.Client != nil {
				if err := p.Redis.Client.Close(); err != nil {
					log.Error("Failed to close redis client", zap.Error(err))
				}
			}
			if sqlDB, err := p.DB.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}

// runPurger drops expired sessions every interval until ctx is cancelled
// and takes them off the active session gauge
func runPurger(
	ctx context.Context,
	purger SessionPurger,
	metrics outbound.MetricsRecorder,
	interval time.Duration,
	log *zap.Logger,
) error {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			purged, err := purger.PurgeExpired(ctx)
			if err != nil {
				log.Warn("Session purge failed", zap.Error(err))
				continue
			}
			if purged > 0 {
				metrics.AddActiveSessions(-int(purged))
				log.Info("Expired sessions purged", zap.Int64("count", purged))
			}
		}
	}
}
