package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	_ "github.com/storefront/stockcore/docs"
	appstock "github.com/storefront/stockcore/internal/application/stock"
	"github.com/storefront/stockcore/internal/infrastructure/cache"
	"github.com/storefront/stockcore/internal/infrastructure/config"
	"github.com/storefront/stockcore/internal/infrastructure/event"
	"github.com/storefront/stockcore/internal/infrastructure/logger"
	"github.com/storefront/stockcore/internal/infrastructure/persistence"
	"github.com/storefront/stockcore/internal/infrastructure/scheduler"
	"github.com/storefront/stockcore/internal/infrastructure/telemetry"
	"github.com/storefront/stockcore/internal/interfaces/http/handler"
	"github.com/storefront/stockcore/internal/interfaces/http/middleware"
	"github.com/storefront/stockcore/internal/interfaces/http/router"
)

//	@title			StockCore API
//	@version		1.0
//	@description	Multi-tenant storefront stock engine
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
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

	log.Info("Starting stockcore",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:       cfg.Telemetry.Enabled,
		Endpoint:      cfg.Telemetry.Endpoint,
		SamplingRatio: cfg.Telemetry.SamplingRatio,
		ServiceName:   cfg.App.Name,
		Insecure:      cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLogLevel := gormlogger.Silent
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if cfg.Telemetry.Enabled && cfg.Telemetry.TraceSQL {
		if err := telemetry.InstrumentDB(db.DB, log); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}

	// Repositories
	itemRepo := persistence.NewGormStockItemRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	reservationRepo := persistence.NewGormReservationRepository(db.DB)
	alertRepo := persistence.NewGormLowStockAlertRepository(db.DB)
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus with low-stock alert handler
	eventBus := event.NewInMemoryEventBus(log)
	lowStockHandler := appstock.NewLowStockEventHandler(log, appstock.NewLoggingAlertNotifier(log))
	eventBus.Subscribe(lowStockHandler)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Summary cache is optional, the ledger degrades to direct reads
	var summaryCache appstock.SummaryCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisSummaryCache(&cfg.Redis, cfg.Cache.SummaryTTL, log)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
		summaryCache = redisCache
		log.Info("Summary cache enabled", zap.Duration("ttl", cfg.Cache.SummaryTTL))
	}

	// Application services
	monitor := appstock.NewLowStockMonitor(log)
	ledgerService := appstock.NewLedgerService(
		txScope, itemRepo, movementRepo, alertRepo, locationRepo,
		monitor, eventBus, summaryCache, log,
	)
	reservationService := appstock.NewReservationService(
		txScope, itemRepo, reservationRepo, eventBus, log, cfg.Reservation.TTL,
	)
	allocationService := appstock.NewAllocationService(txScope, eventBus, log)
	locationService := appstock.NewLocationService(locationRepo, log)

	// Expired reservation sweeper
	if cfg.Reservation.SweepEnabled {
		sweeper := scheduler.NewReservationSweeper(reservationService, cfg.Reservation.SweepInterval, log)
		if err := sweeper.Start(context.Background()); err != nil {
			log.Fatal("Failed to start reservation sweeper", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := sweeper.Stop(stopCtx); err != nil {
				log.Error("Error stopping reservation sweeper", zap.Error(err))
			}
		}()
		log.Info("Reservation sweeper started",
			zap.Duration("interval", cfg.Reservation.SweepInterval),
			zap.Duration("ttl", cfg.Reservation.TTL),
		)
	}

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.App.Name))
	}
	engine.Use(middleware.Recovery(log))
	engine.Use(middleware.RequestLogger(log))

	if cfg.App.Docs {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewStockHandler(ledgerService, log)).
		Register(handler.NewReservationHandler(reservationService, log)).
		Register(handler.NewAllocationHandler(allocationService, log)).
		Register(handler.NewLocationHandler(locationService, log))
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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

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
