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

	ledgerapp "github.com/ledgercore/backend/internal/application/ledger"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared/valueobject"
	"github.com/ledgercore/backend/internal/infrastructure/config"
	"github.com/ledgercore/backend/internal/infrastructure/event"
	"github.com/ledgercore/backend/internal/infrastructure/logger"
	"github.com/ledgercore/backend/internal/infrastructure/persistence"
	"github.com/ledgercore/backend/internal/infrastructure/telemetry"
	"github.com/ledgercore/backend/internal/interfaces/http/handler"
	"github.com/ledgercore/backend/internal/interfaces/http/middleware"
	"github.com/ledgercore/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Ledger Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

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

	// Initialize tracing
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
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.DBTraceEnabled,
		DBSystem: "postgresql",
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	entryRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	periodRepo := persistence.NewGormFiscalPeriodRepository(db.DB)
	auditRepo := persistence.NewGormAuditRecordRepository(db.DB)
	txScope := persistence.NewGormLedgerTransactionScope(db.DB)

	// Initialize event bus and the audit trail subscriber
	eventBus := event.NewInMemoryEventBus(log)
	auditRecorder := ledgerapp.NewAuditRecorder(auditRepo, log)
	eventBus.Subscribe(auditRecorder, auditRecorder.EventTypes()...)

	// Reversal dating policy comes from configuration, validated at load time
	reversals := ledger.NewReversalService(
		ledger.WithReversalDating(ledger.ReversalDating(cfg.Ledger.ReversalDating)),
	)

	// Entry types listed in config are posted immediately on creation
	autoPostTypes := make([]ledger.EntryType, 0, len(cfg.Ledger.AutoPostOrigins))
	for _, origin := range cfg.Ledger.AutoPostOrigins {
		autoPostTypes = append(autoPostTypes, ledger.EntryType(origin))
	}
	entryOpts := []ledgerapp.EntryServiceOption{
		ledgerapp.WithAutoPostTypes(autoPostTypes...),
	}
	if !cfg.Ledger.UnpostEnabled {
		entryOpts = append(entryOpts, ledgerapp.WithUnpostDisabled())
	}

	// Initialize application services
	accountService := ledgerapp.NewAccountService(accountRepo, eventBus)
	entryService := ledgerapp.NewEntryService(
		txScope, accountRepo, entryRepo, reversals, eventBus,
		entryOpts...,
	)
	periodService := ledgerapp.NewPeriodService(txScope, periodRepo, eventBus)
	documentService := ledgerapp.NewDocumentService(entryService, ledgerapp.DefaultAdapterAccounts(),
		ledgerapp.WithDocumentCurrency(valueobject.Currency(cfg.Ledger.DefaultCurrency)))
	auditService := ledgerapp.NewAuditService(auditRepo)

	// Setup Gin
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	// Middleware chain, order matters:
	// request ID first so every later stage can log it, recovery before
	// the request logger, identity before span enrichment.
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
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	// Liveness endpoint registered before the identity middleware so probes
	// do not need company headers
	engine.GET("/health", healthHandler(db))

	engine.Use(middleware.Identity())
	engine.Use(middleware.SpanEnrichment())

	// Register API routes
	router.NewRouter(engine).
		Register(handler.NewAccountHandler(accountService)).
		Register(handler.NewEntryHandler(entryService)).
		Register(handler.NewPeriodHandler(periodService)).
		Register(handler.NewDocumentHandler(documentService)).
		Register(handler.NewAuditHandler(auditService)).
		Register(handler.NewSystemHandler(db.Ping)).
		Setup()

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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports process liveness and database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
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
