// MfgOps backend API server.
//
// Wires the manufacturing inventory and production domains behind a
// versioned HTTP API: pool-typed items, the movement ledger, BOM
// specifications, production/packaging orders and reconciliation.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	inventoryapp "github.com/mfgops/backend/internal/application/inventory"
	productionapp "github.com/mfgops/backend/internal/application/production"
	"github.com/mfgops/backend/internal/domain/shared"
	"github.com/mfgops/backend/internal/infrastructure/cache"
	"github.com/mfgops/backend/internal/infrastructure/config"
	"github.com/mfgops/backend/internal/infrastructure/event"
	"github.com/mfgops/backend/internal/infrastructure/logger"
	"github.com/mfgops/backend/internal/infrastructure/persistence"
	"github.com/mfgops/backend/internal/infrastructure/scheduler"
	"github.com/mfgops/backend/internal/infrastructure/telemetry"
	"github.com/mfgops/backend/internal/interfaces/http/handler"
	"github.com/mfgops/backend/internal/interfaces/http/middleware"
	"github.com/mfgops/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting MfgOps backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing before anything that creates spans
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Warn("Tracer provider shutdown failed", zap.Error(err))
		}
	}()

	// Initialize database with the zap-backed gorm logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracingCfg := telemetry.DefaultDBTracingConfig()
		dbTracingCfg.Enabled = true
		if err := telemetry.NewDBTracingPlugin(dbTracingCfg, log).Register(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	itemRepo := persistence.NewGormItemRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	_ = persistence.NewGormBOMRepository(db.DB)
	_ = persistence.NewGormOrderRepository(db.DB)

	// Transaction scopes run every multi-aggregate write in one database
	// transaction so the pool row and its ledger entries commit together.
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Application services
	itemService := inventoryapp.NewItemService(itemRepo, movementRepo, log)
	stockService := inventoryapp.NewStockService(txScope, log)
	bomService := inventoryapp.NewBOMService(txScope)
	reportService := inventoryapp.NewReportService(itemRepo, movementRepo)
	syncService := inventoryapp.NewSyncService(txScope, log)
	orderService := productionapp.NewOrderService(txScope.Production(), log)

	// Idempotency store for the transition duplicate guard and for
	// deduplicating redelivered domain events
	var idempotencyStore shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.Idempotency.UseRedis),
		)
		if cfg.Idempotency.UseRedis {
			idempotencyStore, err = factory.CreateStore()
			if err != nil {
				log.Fatal("Failed to create idempotency store", zap.Error(err))
			}
		} else {
			idempotencyStore = factory.CreateInMemoryStore()
		}
		orderService.SetIdempotencyStore(idempotencyStore, shared.IdempotencyConfig{
			Enabled: true,
			TTL:     cfg.Idempotency.TTL,
		})
		log.Info("Idempotency guard enabled", zap.Duration("ttl", cfg.Idempotency.TTL))
	}

	// Event bus with async dispatch for stock threshold alerts
	eventBus := event.NewInMemoryEventBus(log)
	alertNotifier := inventoryapp.NewLoggingStockAlertNotifier(log)
	var thresholdHandler shared.EventHandler = inventoryapp.NewStockBelowThresholdHandler(log, alertNotifier)
	if idempotencyStore != nil {
		thresholdHandler = event.NewIdempotentHandler(thresholdHandler, idempotencyStore, log,
			event.WithIdempotencyConfig(shared.IdempotencyConfig{
				Enabled: true,
				TTL:     cfg.Idempotency.TTL,
			}),
		)
	}
	eventBus.Subscribe(thresholdHandler, thresholdHandler.EventTypes()...)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Warn("Event bus shutdown failed", zap.Error(err))
		}
	}()

	itemService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)
	orderService.SetEventPublisher(eventBus)

	// Reconciliation scheduler
	var reconcileScheduler *scheduler.ReconcileScheduler
	if cfg.Sync.Enabled {
		schedulerCfg := scheduler.DefaultReconcileSchedulerConfig()
		schedulerCfg.Enabled = true
		if cfg.Sync.Interval > 0 {
			schedulerCfg.Interval = cfg.Sync.Interval
		}
		if cfg.Sync.Timeout > 0 {
			schedulerCfg.JobTimeout = cfg.Sync.Timeout
		}
		executor := scheduler.NewSyncExecutor(syncService, log)
		reconcileScheduler, err = scheduler.NewReconcileScheduler(schedulerCfg, executor, log)
		if err != nil {
			log.Fatal("Failed to create reconcile scheduler", zap.Error(err))
		}
		if err := reconcileScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start reconcile scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := reconcileScheduler.Stop(stopCtx); err != nil {
				log.Warn("Reconcile scheduler shutdown failed", zap.Error(err))
			}
		}()
		log.Info("Reconcile scheduler started", zap.Duration("interval", schedulerCfg.Interval))
	}

	// HTTP handlers
	itemHandler := handler.NewItemHandler(itemService)
	stockHandler := handler.NewStockHandler(stockService)
	bomHandler := handler.NewBOMHandler(bomService)
	orderHandler := handler.NewOrderHandler(orderService)
	reportHandler := handler.NewReportHandler(reportService)
	syncHandler := handler.NewSyncHandler(syncService, reconcileScheduler)
	systemHandler := handler.NewSystemHandler(db.DB)

	// Gin engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()

	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	// Middleware order matters: request ID first so recovery and request
	// logs carry it, tracing after logging so spans see the request ID.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}

	// Health check outside the versioned API group
	engine.GET("/health", healthHandler(db, log))

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(itemHandler).
		Register(stockHandler).
		Register(bomHandler).
		Register(orderHandler).
		Register(reportHandler).
		Register(syncHandler).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports liveness including database reachability.
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
