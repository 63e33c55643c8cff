package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	contractapp "github.com/contractflow/backend/internal/application/contract"
	partyapp "github.com/contractflow/backend/internal/application/party"
	"github.com/contractflow/backend/internal/domain/contract"
	"github.com/contractflow/backend/internal/domain/shared"
	"github.com/contractflow/backend/internal/infrastructure/auth"
	"github.com/contractflow/backend/internal/infrastructure/config"
	"github.com/contractflow/backend/internal/infrastructure/event"
	"github.com/contractflow/backend/internal/infrastructure/logger"
	"github.com/contractflow/backend/internal/infrastructure/notification"
	"github.com/contractflow/backend/internal/infrastructure/persistence"
	"github.com/contractflow/backend/internal/infrastructure/storage"
	"github.com/contractflow/backend/internal/infrastructure/telemetry"
	"github.com/contractflow/backend/internal/interfaces/http/handler"
	"github.com/contractflow/backend/internal/interfaces/http/middleware"
	"github.com/contractflow/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const portfolioCacheTTL = 30 * time.Second

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

	log.Info("Starting ContractFlow Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Telemetry providers (no-op when disabled)
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
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Initialize database connection with zap-backed GORM logger
	dbOpts := []persistence.DatabaseOption{
		persistence.WithDatabaseLogger(log, logger.MapGormLogLevel(cfg.Log.Level)),
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbOpts = append(dbOpts, persistence.WithTracing())
	}
	db, err := persistence.NewDatabase(&cfg.Database, dbOpts...)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)
	versionRepo := persistence.NewGormVersionRepository(db.DB)
	stepRepo := persistence.NewGormApprovalStepRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)
	renewalRepo := persistence.NewGormRenewalRequestRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	counterpartyRepo := persistence.NewGormCounterpartyRepository(db.DB)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)

	// Transactional transition store
	store := persistence.NewGormTransitionStore(db.DB, log)

	// Initialize application services
	assembler := contractapp.NewAssembler(
		contractRepo, versionRepo, stepRepo, allocationRepo, renewalRepo, auditRepo,
		userRepo, counterpartyRepo, propertyRepo, log,
	)
	lifecycleService := contractapp.NewLifecycleService(contractRepo, versionRepo, store, assembler, log)
	renewalService := contractapp.NewRenewalService(contractRepo, versionRepo, allocationRepo, renewalRepo, store, log)
	directoryService := partyapp.NewDirectoryService(userRepo, counterpartyRepo, propertyRepo, log)

	// Portfolio read side with its in-process cache
	portfolioCache := contractapp.NewPortfolioCache(portfolioCacheTTL)
	sweeper := contractapp.NewExpirySweeper(store, nil, log)
	portfolioService := contractapp.NewPortfolioService(assembler, sweeper, portfolioCache, log)

	lifecycleService.SetCacheInvalidator(portfolioCache)
	renewalService.SetCacheInvalidator(portfolioCache)

	// Notification emitter (Redis pub/sub fan-out plus persisted rows)
	if cfg.Notification.Enabled {
		emitter, err := notification.NewEmitter(
			db.DB, cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Notification.Channel,
			notification.WithEmitterLogger(log),
		)
		if err != nil {
			log.Fatal("Failed to initialize notification emitter", zap.Error(err))
		}
		defer func() {
			if err := emitter.Close(); err != nil {
				log.Error("Error closing notification emitter", zap.Error(err))
			}
		}()
		lifecycleService.SetNotifier(emitter)
		renewalService.SetNotifier(emitter)
		sweeper = contractapp.NewExpirySweeper(store, emitter, log)
		portfolioService = contractapp.NewPortfolioService(assembler, sweeper, portfolioCache, log)
		log.Info("Notification emitter started", zap.String("channel", cfg.Notification.Channel))
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewActivityLogger(log))

	var businessMetrics *telemetry.BusinessMetrics
	if cfg.Telemetry.Enabled {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:  meterProvider.Meter("contractflow/business"),
			Logger: log,
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		eventBus.Subscribe(telemetry.NewMetricsEventHandler(businessMetrics))
	}

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	lifecycleService.SetEventPublisher(eventBus)
	renewalService.SetEventPublisher(eventBus)

	// Object storage for contract documents
	documentStorage, err := storage.NewS3DocumentStorage(&cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := documentStorage.EnsureBucket(ctx); err != nil {
			log.Warn("Document bucket not reachable at startup", zap.Error(err))
		}
		cancel()
	}
	documentService := contractapp.NewDocumentService(contractRepo, versionRepo, documentStorage, log)

	// JWT service for request authentication
	jwtService := auth.NewJWTService(cfg.JWT)

	// Initialize HTTP handlers
	contractHandler := handler.NewContractHandler(lifecycleService, documentService)
	renewalHandler := handler.NewRenewalHandler(renewalService)
	portfolioHandler := handler.NewPortfolioHandler(portfolioService)
	partyHandler := handler.NewPartyHandler(directoryService)
	systemHandler := handler.NewSystemHandler(db)

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

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. Tracing - OTel spans per request (if enabled)
	// 7. JWT - Authenticate API requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Health check endpoint outside API versioning, for load balancers
	engine.GET("/health", systemHandler.Health)

	// Register route groups
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(systemHandler).
		Register(contractHandler).
		Register(renewalHandler).
		Register(portfolioHandler).
		Register(partyHandler)
	r.Setup()

	// Background expiry sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Sweep.Enabled {
		go runExpirySweep(sweepCtx, cfg.Sweep.Interval, contractRepo, sweeper, portfolioCache, eventBus, businessMetrics, log)
		log.Info("Expiry sweep started", zap.Duration("interval", cfg.Sweep.Interval))
	}

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
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runExpirySweep periodically expires overdue active contracts, company by
// company. Each committed expiry is published as a domain event and
// invalidates the company's portfolio cache.
func runExpirySweep(
	ctx context.Context,
	interval time.Duration,
	contractRepo contract.ContractRepository,
	sweeper *contractapp.ExpirySweeper,
	cache *contractapp.PortfolioCache,
	publisher shared.EventPublisher,
	metrics *telemetry.BusinessMetrics,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepOnce(ctx, contractRepo, sweeper, cache, publisher, metrics, log)
		}
	}
}

func sweepOnce(
	ctx context.Context,
	contractRepo contract.ContractRepository,
	sweeper *contractapp.ExpirySweeper,
	cache *contractapp.PortfolioCache,
	publisher shared.EventPublisher,
	metrics *telemetry.BusinessMetrics,
	log *zap.Logger,
) {
	companyIDs, err := contractRepo.CompanyIDsWithStatus(ctx, contract.StatusActive)
	if err != nil {
		log.Error("Expiry sweep: listing companies failed", zap.Error(err))
		return
	}

	activeFilter := shared.Filter{
		Filters: map[string]interface{}{"status": string(contract.StatusActive)},
	}
	for _, companyID := range companyIDs {
		contracts, err := contractRepo.FindAllForCompany(ctx, companyID, activeFilter)
		if err != nil {
			log.Error("Expiry sweep: loading contracts failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err))
			continue
		}

		result := sweeper.Sweep(ctx, companyID, contracts)
		recordStatusCounts(ctx, contractRepo, metrics, companyID, log)
		if len(result.Expired) == 0 {
			continue
		}

		cache.Invalidate(companyID)

		expired := make(map[string]struct{}, len(result.Expired))
		for _, id := range result.Expired {
			expired[id.String()] = struct{}{}
		}
		for i := range contracts {
			if _, ok := expired[contracts[i].ID.String()]; !ok {
				continue
			}
			if err := publisher.Publish(ctx, contract.NewContractExpiredEvent(&contracts[i])); err != nil {
				log.Warn("Expiry sweep: event publish failed",
					zap.String("contract_id", contracts[i].ID.String()),
					zap.Error(err))
			}
		}
	}
}

// recordStatusCounts refreshes the per-company status gauge after a sweep
func recordStatusCounts(
	ctx context.Context,
	contractRepo contract.ContractRepository,
	metrics *telemetry.BusinessMetrics,
	companyID uuid.UUID,
	log *zap.Logger,
) {
	if metrics == nil {
		return
	}
	for _, status := range []contract.ContractStatus{contract.StatusActive, contract.StatusExpired} {
		count, err := contractRepo.CountByStatus(ctx, companyID, status)
		if err != nil {
			log.Warn("Expiry sweep: status count failed",
				zap.String("company_id", companyID.String()),
				zap.String("status", string(status)),
				zap.Error(err))
			continue
		}
		metrics.RecordStatusCount(ctx, companyID, string(status), count)
	}
}
