package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/bizdocs/backend/internal/application/billing"
	"github.com/bizdocs/backend/internal/infrastructure/cache"
	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/bizdocs/backend/internal/infrastructure/event"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"github.com/bizdocs/backend/internal/infrastructure/persistence"
	"github.com/bizdocs/backend/internal/infrastructure/printing"
	"github.com/bizdocs/backend/internal/infrastructure/storage"
	"github.com/bizdocs/backend/internal/infrastructure/telemetry"
	"github.com/bizdocs/backend/internal/interfaces/http/handler"
	"github.com/bizdocs/backend/internal/interfaces/http/middleware"
	"github.com/bizdocs/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/bizdocs/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceVersion = "1.0.0"

//	@title			bizdocs API
//	@version		1.0
//	@description	Quotations, invoices and receipts with sequential document numbering
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: logger.ISO8601Millis,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting bizdocs backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    serviceVersion,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.ProfilingServerAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
		ProfileTypes:    cfg.Telemetry.ProfileTypes,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() {
		tracerProvider.LinkSpanProfiles()
	}

	billingMetrics, err := telemetry.NewBillingMetrics(meterProvider.Meter("bizdocs.billing"))
	if err != nil {
		log.Fatal("Failed to register billing metrics", zap.Error(err))
	}

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
		}
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
		DBName:     cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver()))

	// Stamped scans
	scanStorage, err := storage.NewScanStorage(ctx, &cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize scan storage", zap.Error(err))
	}

	// Printing
	printer, err := printing.NewDocumentPrinter(cfg.Printing, log)
	if err != nil {
		log.Fatal("Failed to initialize document printer", zap.Error(err))
	}
	defer func() {
		if err := printer.Close(); err != nil {
			log.Error("Error closing document printer", zap.Error(err))
		}
	}()

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	activity := billingapp.NewDocumentActivityHandler(log).WithMetrics(billingMetrics)
	eventBus.Subscribe(activity, activity.EventTypes()...)
	scanCleanup := billingapp.NewScanCleanupHandler(scanStorage, log)
	eventBus.Subscribe(scanCleanup, scanCleanup.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Numbering
	reserver, err := cache.NewSequenceReserverFactory(cfg.Numbering, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateReserver(ctx)
	if err != nil {
		log.Fatal("Failed to create sequence reserver", zap.Error(err))
	}
	generatorOpts := []billingapp.NumberGeneratorOption{
		billingapp.WithMaxAttempts(cfg.Numbering.MaxAttempts),
		billingapp.WithGeneratorLogger(log),
		billingapp.WithGeneratorMetrics(billingMetrics),
	}
	if reserver != nil {
		defer func() {
			_ = reserver.Close()
		}()
		generatorOpts = append(generatorOpts, billingapp.WithReserver(reserver))
	}
	numbers := billingapp.NewNumberGenerator(persistence.NewGormNumberStore(db.DB), generatorOpts...)

	// Services
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	txManager := persistence.NewTxManager(db.DB)
	serviceOpts := []billingapp.ServiceOption{
		billingapp.WithLogger(log),
		billingapp.WithInsertRetries(cfg.Numbering.InsertRetries),
		billingapp.WithEventPublisher(eventBus),
	}
	quotationService := billingapp.NewQuotationService(quotationRepo, invoiceRepo, numbers, txManager, serviceOpts...)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, quotationRepo, receiptRepo, numbers, txManager, serviceOpts...)
	receiptService := billingapp.NewReceiptService(receiptRepo, invoiceRepo, numbers, txManager, serviceOpts...)
	scanService := billingapp.NewStampedScanService(invoiceRepo, receiptRepo, scanStorage, txManager, cfg.Storage.MaxScanSize, serviceOpts...)
	printService := billingapp.NewPrintService(quotationRepo, invoiceRepo, receiptRepo, printer, serviceOpts...)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: tracerProvider.IsEnabled()}),
		middleware.SpanErrorMarker(),
		logger.GinMiddleware(log, "/health"),
		middleware.HTTPMetrics(meterProvider.Meter("bizdocs.http")),
		middleware.Secure(),
		middleware.CORSWithConfig(corsConfig),
		middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
			MaxBytes: cfg.HTTP.MaxBodySize,
			// multipart framing on top of the scan itself
			RouteLimits: map[string]int64{
				"/api/v1/invoices/:id/stamped/scan": cfg.Storage.MaxScanSize + 1<<20,
			},
		}),
	)

	swaggerGuard, err := middleware.SwaggerProtection(middleware.SwaggerConfig{
		Enabled:    cfg.Swagger.Enabled,
		AllowedIPs: cfg.Swagger.AllowedIPs,
	})
	if err != nil {
		log.Fatal("Invalid swagger configuration", zap.Error(err))
	}
	engine.GET("/swagger/*any", swaggerGuard, ginSwagger.WrapHandler(swaggerFiles.Handler))

	engine.GET("/health", handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": func(context.Context) error { return db.Ping() },
	}).Health)

	receiptHandler := handler.NewReceiptHandler(receiptService)
	router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithLogger(log)).
		Register(
			handler.QuotationRoutes(handler.NewQuotationHandler(quotationService, invoiceService)),
			handler.InvoiceRoutes(handler.NewInvoiceHandler(invoiceService), receiptHandler),
			handler.ReceiptRoutes(receiptHandler),
			handler.ScanRoutes(handler.NewScanHandler(scanService)),
			handler.PrintRoutes(handler.NewPrintHandler(printService)),
		).
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Event bus stop failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler stop failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Logger provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
