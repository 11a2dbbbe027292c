package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/gestock/backend/internal/application/billing"
	catalogapp "github.com/gestock/backend/internal/application/catalog"
	inventoryapp "github.com/gestock/backend/internal/application/inventory"
	partnerapp "github.com/gestock/backend/internal/application/partner"
	"github.com/gestock/backend/internal/infrastructure/auth"
	"github.com/gestock/backend/internal/infrastructure/cache"
	"github.com/gestock/backend/internal/infrastructure/config"
	"github.com/gestock/backend/internal/infrastructure/event"
	"github.com/gestock/backend/internal/infrastructure/logger"
	"github.com/gestock/backend/internal/infrastructure/persistence"
	"github.com/gestock/backend/internal/interfaces/http/handler"
	"github.com/gestock/backend/internal/interfaces/http/middleware"
	"github.com/gestock/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

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

	log.Info("Starting GeStock backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	billingRepo := persistence.NewGormBillingRepository(db.DB)
	stockRepo := persistence.NewGormStockRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	thirdPartyRepo := persistence.NewGormThirdPartyRepository(db.DB)
	warehouseRepo := persistence.NewGormWarehouseRepository(db.DB)

	// Transaction scopes
	billingTxScope := persistence.NewGormBillingTransactionScope(db.DB)
	inventoryTxScope := persistence.NewGormInventoryTransactionScope(db.DB)

	// Application services
	billingService := billingapp.NewBillingService(billingRepo, productRepo, thirdPartyRepo, stockRepo, billingTxScope)
	stockService := inventoryapp.NewStockService(stockRepo, movementRepo, inventoryTxScope)
	productService := catalogapp.NewProductService(productRepo, stockRepo, billingRepo)
	thirdPartyService := partnerapp.NewThirdPartyService(thirdPartyRepo)
	warehouseService := partnerapp.NewWarehouseService(warehouseRepo)

	// Event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)
	stockAlertHandler := inventoryapp.NewStockAlertHandler(stockRepo, productRepo, log)
	eventBus.Subscribe(stockAlertHandler)
	log.Info("Event handlers registered",
		zap.Strings("stock_alert_events", stockAlertHandler.EventTypes()),
	)

	billingService.SetEventPublisher(eventBus)
	stockService.SetEventPublisher(eventBus)

	// Idempotency store for replay-sensitive endpoints
	var idempotency gin.HandlerFunc
	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStore(cfg, log)
		if err != nil {
			log.Fatal("Failed to initialize idempotency store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("Error closing idempotency store", zap.Error(err))
			}
		}()
		idempotency = middleware.Idempotency(store, cfg.Idempotency.TTL, log)
		log.Info("Idempotency protection enabled",
			zap.String("backend", cfg.Idempotency.Backend),
			zap.Duration("ttl", cfg.Idempotency.TTL),
		)
	}

	// Bearer authentication is only enforced when a secret is configured
	var jwtService *auth.JWTService
	if cfg.JWT.Secret != "" {
		jwtService = auth.NewJWTService(cfg.JWT)
		log.Info("JWT authentication enabled", zap.String("issuer", cfg.JWT.Issuer))
	}

	engine := router.New(router.Handlers{
		System:     handler.NewSystemHandler(db),
		Billing:    handler.NewBillingHandler(billingService),
		Stock:      handler.NewStockHandler(stockService),
		Product:    handler.NewProductHandler(productService),
		ThirdParty: handler.NewThirdPartyHandler(thirdPartyService),
		Warehouse:  handler.NewWarehouseHandler(warehouseService),
	}, router.Options{
		Config:      cfg,
		Logger:      log,
		JWTService:  jwtService,
		Idempotency: idempotency,
	})

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
