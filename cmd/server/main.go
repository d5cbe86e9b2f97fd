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

	identityapp "github.com/shopsync/backend/internal/application/identity"
	ingestionapp "github.com/shopsync/backend/internal/application/ingestion"
	reportapp "github.com/shopsync/backend/internal/application/report"
	"github.com/shopsync/backend/internal/infrastructure/cache"
	"github.com/shopsync/backend/internal/infrastructure/config"
	"github.com/shopsync/backend/internal/infrastructure/logger"
	"github.com/shopsync/backend/internal/infrastructure/persistence"
	"github.com/shopsync/backend/internal/infrastructure/scheduler"
	"github.com/shopsync/backend/internal/infrastructure/shopify"
	"github.com/shopsync/backend/internal/infrastructure/storage"
	"github.com/shopsync/backend/internal/infrastructure/telemetry"
	"github.com/shopsync/backend/internal/interfaces/http/handler"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
	"github.com/shopsync/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
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
		_ = logger.Sync(log)
	}()

	log.Info("Starting ShopSync Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
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
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize metrics
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database metrics and query tracing
	var dbMetrics *telemetry.DBMetrics
	if meterProvider.IsEnabled() {
		meter := meterProvider.Meter("shopsync-backend/db")
		dbMetrics, err = telemetry.NewDBMetrics(meter, telemetry.DefaultDBMetricsConfig(), log)
		if err != nil {
			log.Fatal("Failed to initialize database metrics", zap.Error(err))
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			dbMetrics.SetSQLDB(sqlDB)
			dbMetrics.StartPoolStatsCollection(ctx)
			defer dbMetrics.Stop()
		}
	}

	if cfg.Telemetry.DBTraceEnabled {
		tracingCfg := telemetry.DefaultDBTracingConfig()
		tracingCfg.Enabled = true
		var opts []telemetry.DBTracingOption
		if dbMetrics != nil {
			opts = append(opts, telemetry.WithQueryMetrics(dbMetrics))
		}
		dbTracing := telemetry.NewDBTracingPlugin(tracingCfg, log, opts...)
		if err := dbTracing.Register(db.DB); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Shopify platform client factory
	shopifyConfig := shopify.Config{
		APIVersion:     cfg.Shopify.APIVersion,
		RequestTimeout: cfg.Shopify.RequestTimeout,
		MaxRetries:     cfg.Shopify.MaxRetries,
		RetryBaseDelay: cfg.Shopify.RetryBaseDelay,
		PageSize:       cfg.Shopify.PageSize,
	}
	platformFactory := shopify.Factory(shopifyConfig, log)

	// Raw page archival: S3 when configured, otherwise a no-op
	var archiver ingestionapp.PageArchiver
	if cfg.Storage.Enabled {
		s3Archive, err := storage.NewS3PageArchive(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize page archive", zap.Error(err))
		}
		archiver = s3Archive
		log.Info("Raw page archival enabled", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		archiver = storage.NewNoopPageArchive()
	}

	// Dashboard stats cache: Redis when enabled, in-memory otherwise
	statsCache, err := cache.NewStatsCacheFactory(cfg.Redis).Create()
	if err != nil {
		log.Fatal("Failed to initialize stats cache", zap.Error(err))
	}

	// Initialize application services
	tenantService := identityapp.NewTenantService(tenantRepo, customerRepo, productRepo, orderRepo, log)
	upserter := ingestionapp.NewUpserter(customerRepo, productRepo, orderRepo, log)
	guard := ingestionapp.NewTenantGuard()
	syncService := ingestionapp.NewSyncService(tenantRepo, platformFactory, upserter, guard, archiver, log)
	dashboardService := reportapp.NewDashboardService(customerRepo, productRepo, orderRepo, statsCache, log)

	// Wrap the sync service with tracing and metrics
	var syncMetrics *telemetry.SyncMetrics
	if meterProvider.IsEnabled() {
		syncMetrics, err = telemetry.NewSyncMetrics(telemetry.SyncMetricsConfig{
			Meter:  meterProvider.Meter("shopsync-backend/sync"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize sync metrics", zap.Error(err))
		}
	}
	instrumentedSync := telemetry.NewInstrumentedSyncService(syncService, syncMetrics)

	// Background sync scheduler (if enabled)
	if cfg.Scheduler.Enabled {
		executor := scheduler.NewSyncExecutor(instrumentedSync, log)
		syncScheduler, err := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
			WorkerCount:   cfg.Scheduler.WorkerCount,
			QueueSize:     cfg.Scheduler.QueueSize,
			JobTimeout:    cfg.Scheduler.JobTimeout,
			MaxRetries:    cfg.Scheduler.MaxRetries,
			RetryBaseWait: cfg.Scheduler.RetryBaseWait,
		}, executor, log)
		if err != nil {
			log.Fatal("Failed to create sync scheduler", zap.Error(err))
		}
		if err := syncScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			if err := syncScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()

		cronTrigger := scheduler.NewSyncCronTrigger(scheduler.SyncCronTriggerConfig{
			CheckInterval: scheduler.DefaultSyncCronTriggerConfig().CheckInterval,
			SyncInterval:  cfg.Scheduler.SyncInterval,
		}, syncScheduler, tenantRepo, log)
		if err := cronTrigger.Start(ctx); err != nil {
			log.Fatal("Failed to start sync cron trigger", zap.Error(err))
		}
		defer cronTrigger.Stop()

		log.Info("Sync scheduler started",
			zap.Int("workers", cfg.Scheduler.WorkerCount),
			zap.Duration("sync_interval", cfg.Scheduler.SyncInterval),
		)
	}

	// Initialize HTTP handlers
	systemHandler := handler.NewSystemHandler(db.DB, version)
	tenantHandler := handler.NewTenantHandler(tenantService)
	syncHandler := handler.NewSyncHandler(instrumentedSync)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack, in order: request id, panic recovery, request
	// logging, security headers, CORS, tracing, tenant resolution.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.BodySizeLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())

	tenantMWConfig := middleware.DefaultTenantMiddlewareConfig()
	tenantMWConfig.Logger = log
	engine.Use(middleware.TenantMiddleware(tenantMWConfig))
	engine.Use(middleware.TracingAttributeInjector())

	// Health endpoints live outside the versioned API group
	systemHandler.RegisterRoutes(engine)

	// Versioned API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(tenantHandler).
		Register(syncHandler).
		Register(dashboardHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
