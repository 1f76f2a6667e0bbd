package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/stocker/backend/internal/application/catalog"
	eventapp "github.com/stocker/backend/internal/application/event"
	identityapp "github.com/stocker/backend/internal/application/identity"
	inventoryapp "github.com/stocker/backend/internal/application/inventory"
	partnerapp "github.com/stocker/backend/internal/application/partner"
	reportapp "github.com/stocker/backend/internal/application/report"
	"github.com/stocker/backend/internal/domain/catalog"
	"github.com/stocker/backend/internal/infrastructure/auth"
	"github.com/stocker/backend/internal/infrastructure/cache"
	"github.com/stocker/backend/internal/infrastructure/config"
	"github.com/stocker/backend/internal/infrastructure/event"
	"github.com/stocker/backend/internal/infrastructure/logger"
	"github.com/stocker/backend/internal/infrastructure/notification"
	"github.com/stocker/backend/internal/infrastructure/storage"
	"github.com/stocker/backend/internal/infrastructure/telemetry"
	"github.com/stocker/backend/internal/interfaces/http/handler"
	"github.com/stocker/backend/internal/interfaces/http/middleware"
	"github.com/stocker/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/stocker/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			Stocker API
//	@version		1.0
//	@description	Stock management: catalog, suppliers, stock adjustments with an immutable history and low-stock alerts

//	@contact.name	API Support
//	@contact.url	https://github.com/stocker/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

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

	log.Info("Starting Stocker",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFrom(cfg.Telemetry), log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Storage: PostgreSQL, MySQL, SQLite or the in-memory store
	store, err := openStore(cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", zap.Error(err))
	}
	defer func() {
		if err := store.close(); err != nil {
			log.Error("Error closing storage", zap.Error(err))
		}
	}()

	// Dashboard cache: Redis when enabled, in-memory otherwise
	summaryCache, closeCache, err := cache.NewSummaryCache(cfg.Redis, cache.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize dashboard cache", zap.Error(err))
	}
	defer func() {
		if err := closeCache(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(eventapp.NewActivityLogHandler(log))
	eventBus.Subscribe(reportapp.NewSummaryInvalidationHandler(summaryCache, log))
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Application services
	categoryService := catalogapp.NewCategoryService(store.categories, store.txScope, log)
	categoryService.SetEventPublisher(eventBus)
	productService := catalogapp.NewProductService(store.products, store.txScope, log)
	productService.SetEventPublisher(eventBus)
	supplierService := partnerapp.NewSupplierService(store.suppliers, store.products, log)
	userService := identityapp.NewUserService(store.users, log)

	mailer := notification.NewMailer(cfg.Notification, log)
	notifier := inventoryapp.NewThresholdNotifier(mailer, cfg.Notification.OperatorEmail, log)
	adjustmentService := inventoryapp.NewStockAdjustmentService(store.txScope, notifier, log)
	adjustmentService.SetEventPublisher(eventBus)
	adjustmentService.SetNotificationTimeout(cfg.Notification.Timeout)
	historyService := inventoryapp.NewStockHistoryService(store.products, store.ledger)

	if meterProvider.IsEnabled() {
		stockMetrics, err := telemetry.NewStockMetrics(telemetry.StockMetricsConfig{
			Meter:    meterProvider.Meter("stocker.inventory"),
			Logger:   log,
			Provider: lowStockCounter{products: store.products},
		})
		if err != nil {
			log.Fatal("Failed to initialize stock metrics", zap.Error(err))
		}
		stockMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval)
		defer stockMetrics.Stop()
		adjustmentService.SetRecorder(stockMetrics)
	}

	dashboardService := reportapp.NewDashboardService(
		store.products, store.categories, store.suppliers, store.ledger,
		summaryCache, cfg.Cache.DashboardTTL, log,
	)
	exportService := reportapp.NewExportService(store.products, store.categories, store.suppliers, log)
	if cfg.Storage.Enabled {
		archiver, err := storage.NewS3ExportArchiver(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize export archive", zap.Error(err))
		}
		if err := archiver.EnsureBucket(ctx); err != nil {
			log.Warn("Export archive bucket unavailable, exports will not be archived", zap.Error(err))
		} else {
			exportService.SetArchiver(archiver)
			log.Info("Export archiving enabled", zap.String("bucket", archiver.Bucket()))
		}
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order: request ID, panic recovery, request logging,
	// tracing, metrics, security headers, CORS, body limit
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log, "/health"))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health and build info (outside API versioning, no identity)
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version)
	if store.ping != nil {
		systemHandler.AddCheck("database", store.ping)
	}
	engine.GET("/health", systemHandler.Health)
	engine.GET("/system/info", systemHandler.Info)

	// Swagger documentation
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:    cfg.Swagger.Enabled,
			AllowedIPs: cfg.Swagger.AllowedIPs,
		}),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	if cfg.HTTP.DevUserHeader {
		log.Warn("X-User-ID header accepted without a token; development only")
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Use(middleware.Identity(middleware.IdentityConfig{
			Tokens:         auth.NewJWTService(cfg.JWT),
			Users:          userService,
			AllowDevHeader: cfg.HTTP.DevUserHeader,
			Logger:         log,
		})).
		Use(middleware.SpanUserAttributes())
	r.RegisterAPI(router.APIHandlers{
		Categories: handler.NewCategoryHandler(categoryService),
		Products:   handler.NewProductHandler(productService),
		Suppliers:  handler.NewSupplierHandler(supplierService),
		Inventory:  handler.NewInventoryHandler(adjustmentService, historyService),
		Reports:    handler.NewReportHandler(dashboardService, exportService),
		Users:      handler.NewUserHandler(userService),
	})
	r.Setup()

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}

// lowStockCounter feeds the low-stock gauge from the product repository
type lowStockCounter struct {
	products catalog.ProductRepository
}

func (l lowStockCounter) LowStockCount(ctx context.Context) (int64, error) {
	summary, err := l.products.Summary(ctx, catalog.LowStockThreshold)
	if err != nil {
		return 0, err
	}
	return summary.LowStockCount, nil
}
