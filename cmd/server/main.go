package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/condo/backend/internal/application/billing"
	"github.com/condo/backend/internal/domain/billing"
	"github.com/condo/backend/internal/domain/shared/valueobject"
	"github.com/condo/backend/internal/infrastructure/auth"
	"github.com/condo/backend/internal/infrastructure/cache"
	"github.com/condo/backend/internal/infrastructure/config"
	"github.com/condo/backend/internal/infrastructure/event"
	"github.com/condo/backend/internal/infrastructure/logger"
	"github.com/condo/backend/internal/infrastructure/migration"
	"github.com/condo/backend/internal/infrastructure/persistence"
	"github.com/condo/backend/internal/infrastructure/scheduler"
	"github.com/condo/backend/internal/infrastructure/storage"
	"github.com/condo/backend/internal/infrastructure/telemetry"
	"github.com/condo/backend/internal/interfaces/http/handler"
	"github.com/condo/backend/internal/interfaces/http/middleware"
	"github.com/condo/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = baseLog.Sync() }()

	ctx := context.Background()
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
	}

	pipeline, err := telemetry.Start(ctx, telemetryCfg, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to start telemetry", zap.Error(err))
	}
	defer func() {
		if err := pipeline.Shutdown(context.Background()); err != nil {
			baseLog.Warn("Error shutting down telemetry", zap.Error(err))
		}
	}()

	log := pipeline.Bridge(baseLog, zapcore.InfoLevel)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiling.Enabled,
		ServerAddress:     cfg.Profiling.ServerAddress,
		ApplicationName:   cfg.Profiling.ApplicationName,
		BasicAuthUser:     cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: cfg.Profiling.BasicAuthPassword,
		ProfileTypes:      cfg.Profiling.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Error("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		pipeline.EnableSpanProfiles()
	}

	log.Info("Starting condo billing",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.Bool("telemetry", cfg.Telemetry.Enabled),
	)

	if cfg.Billing.Currency != string(valueobject.DefaultCurrency) {
		log.Fatal("Unsupported billing currency",
			zap.String("configured", cfg.Billing.Currency),
			zap.String("supported", string(valueobject.DefaultCurrency)),
		)
	}

	if cfg.Database.AutoMigrate {
		if err := runMigrations(cfg, log); err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.App.Env != "production"
	dbTracing.DBName = cfg.Database.DBName

	db, err := persistence.NewDatabase(&cfg.Database, log, dbTracing)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if stats, err := db.Stats(); err == nil {
			log.Info("Closing database",
				zap.Int("open_connections", stats.OpenConnections),
				zap.Int64("wait_count", stats.WaitCount),
				zap.Duration("wait_duration", stats.WaitDuration),
			)
		}
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	chargeTypeRepo := persistence.NewGormChargeTypeRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	priceRepo := persistence.NewGormVehicleFeeConfigRepository(db.DB)
	roster := persistence.NewGormPayerRoster(db.DB)
	historyRepo := persistence.NewGormHistoryRepository(db.DB)

	billingMetrics, err := telemetry.NewBillingMetrics(pipeline.Meter("condo/billing"))
	if err != nil {
		log.Fatal("Failed to create billing metrics", zap.Error(err))
	}

	// Ledger events are audited by a bus subscriber
	audit := billingapp.NewAuditRecorder(historyRepo, log)
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(billingapp.NewLedgerAuditHandler(audit))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	pricing := billing.NewPricingResolver(priceRepo)
	tickets := billingapp.NewTicketService(roster, ledgerRepo, pricing, eventBus, audit, log)
	utilities := billingapp.NewUtilityBillService(roster, ledgerRepo, eventBus)
	settlement := billingapp.NewSettlementService(ledgerRepo, eventBus, billingMetrics, billingapp.SystemClock, log)
	ledger := billingapp.NewLedgerService(ledgerRepo, chargeTypeRepo, roster, tickets, utilities, settlement, eventBus, audit, log)
	generation := billingapp.NewGenerationService(chargeTypeRepo, roster, ledgerRepo, pricing, billingMetrics, log)
	chargeTypes := billingapp.NewChargeTypeService(chargeTypeRepo, ledgerRepo, audit, log)
	feeConfig := billingapp.NewFeeConfigService(priceRepo, audit, log)
	stats := billingapp.NewStatsService(ledgerRepo)

	if cfg.Scheduler.Enabled {
		stop, err := startScheduler(cfg, generation, log)
		if err != nil {
			log.Fatal("Failed to start generation scheduler", zap.Error(err))
		}
		defer stop()
	}

	// HTTP
	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Mode:           mode,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Meter:          pipeline.Meter("condo/http"),
	}, db.Ping, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	// the actor must be settled before idempotency keys are scoped by it
	var billingMiddleware []gin.HandlerFunc
	if cfg.Auth.Enabled {
		verifier, err := auth.NewTokenVerifier(cfg.Auth)
		if err != nil {
			log.Fatal("Failed to create token verifier", zap.Error(err))
		}
		billingMiddleware = append(billingMiddleware, middleware.BearerActor(verifier, cfg.Auth.Required))
		log.Info("Bearer token verification enabled", zap.Bool("required", cfg.Auth.Required))
	}
	if cfg.Idempotency.Enabled {
		store, err := newResponseStore(ctx, cfg.Idempotency)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() { _ = store.Close() }()
		billingMiddleware = append(billingMiddleware, middleware.Idempotency(store, cfg.Idempotency.TTL))
		log.Info("Idempotency-Key replay enabled", zap.String("backend", cfg.Idempotency.Backend))
	}

	routes := router.NewRouter(engine).
		Register(router.BillingRoutes(
			handler.NewBillingHandler(generation, ledger, tickets, settlement, utilities, stats),
			handler.NewChargeTypeHandler(chargeTypes, feeConfig),
			billingMiddleware...,
		))
	if cfg.Storage.Enabled {
		exports, err := newExportService(ctx, cfg, ledgerRepo, log)
		if err != nil {
			log.Fatal("Failed to set up ledger exports", zap.Error(err))
		}
		routes.Register(router.ExportRoutes(handler.NewExportHandler(exports), billingMiddleware...))
		log.Info("Ledger exports enabled", zap.String("bucket", cfg.Storage.Bucket))
	}
	routes.Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited gracefully")
}

func newResponseStore(ctx context.Context, cfg config.IdempotencyConfig) (cache.ResponseStore, error) {
	if cfg.Backend == "redis" {
		return cache.NewRedisResponseStore(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}
	return cache.NewInMemoryResponseStore(10 * time.Minute), nil
}

// newExportService connects to the export bucket, creating it if needed
func newExportService(ctx context.Context, cfg *config.Config, ledger billing.LedgerEntryRepository, log *zap.Logger) (*billingapp.ExportService, error) {
	store, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		return nil, err
	}
	bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(bucketCtx); err != nil {
		return nil, err
	}
	return billingapp.NewExportService(ledger, store, cfg.Storage.ExportPrefix, billingapp.SystemClock, log), nil
}

// runMigrations applies pending migrations over a dedicated connection that
// the migrator owns and closes.
func runMigrations(cfg *config.Config, log *zap.Logger) error {
	sqlDB, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, cfg.Database.MigrationsPath, log)
	if err != nil {
		_ = sqlDB.Close()
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return m.Up()
}

// startScheduler starts the generation worker pool and the monthly trigger
// feeding it. The returned func stops both.
func startScheduler(cfg *config.Config, generation *billingapp.GenerationService, log *zap.Logger) (func(), error) {
	cohorts := make([]billing.Cohort, 0, len(cfg.Billing.Cohorts))
	for _, name := range cfg.Billing.Cohorts {
		cohort, err := billing.ParseCohort(name)
		if err != nil {
			return nil, err
		}
		cohorts = append(cohorts, cohort)
	}

	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Enabled:           cfg.Scheduler.Enabled,
		MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:        cfg.Scheduler.JobTimeout,
		RetryAttempts:     cfg.Scheduler.RetryAttempts,
		RetryDelay:        cfg.Scheduler.RetryDelay,
		Cohorts:           cohorts,
	}, generation, log)
	if err := sched.Start(context.Background()); err != nil {
		return nil, err
	}

	trigger := scheduler.NewCronTrigger(scheduler.CronTriggerConfig{
		GenerationDay:  cfg.Billing.GenerationDay,
		GenerationHour: cfg.Billing.GenerationHour,
		CheckInterval:  cfg.Scheduler.CheckInterval,
	}, sched, nil, log)
	if err := trigger.Start(context.Background()); err != nil {
		_ = sched.Stop(context.Background())
		return nil, err
	}

	log.Info("Generation scheduler started",
		zap.Strings("cohorts", cfg.Billing.Cohorts),
		zap.Int("generation_day", cfg.Billing.GenerationDay),
		zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
	)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := trigger.Stop(ctx); err != nil {
			log.Error("Error stopping generation trigger", zap.Error(err))
		}
		if err := sched.Stop(ctx); err != nil {
			log.Error("Error stopping generation scheduler", zap.Error(err))
		}
	}, nil
}
