package router

import (
	"github.com/gestock/backend/internal/infrastructure/auth"
	"github.com/gestock/backend/internal/infrastructure/config"
	"github.com/gestock/backend/internal/infrastructure/logger"
	"github.com/gestock/backend/internal/interfaces/http/handler"
	"github.com/gestock/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers groups the handlers the router mounts
type Handlers struct {
	System     *handler.SystemHandler
	Billing    *handler.BillingHandler
	Stock      *handler.StockHandler
	Product    *handler.ProductHandler
	ThirdParty *handler.ThirdPartyHandler
	Warehouse  *handler.WarehouseHandler
}

// Options carries the cross-cutting pieces the router wires in
type Options struct {
	Config *config.Config
	Logger *zap.Logger

	// JWTService enables bearer authentication when non-nil
	JWTService *auth.JWTService

	// Idempotency guards replay-sensitive write endpoints when non-nil
	Idempotency gin.HandlerFunc
}

// New builds the gin engine with all middleware and routes mounted
func New(h Handlers, opts Options) *gin.Engine {
	if opts.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	_ = engine.SetTrustedProxies(opts.Config.HTTP.TrustedProxies)

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(opts.Logger))
	engine.Use(logger.Recovery(opts.Logger))
	engine.Use(middleware.Secure())

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = opts.Config.HTTP.CORSAllowOrigins
	corsCfg.AllowMethods = opts.Config.HTTP.CORSAllowMethods
	corsCfg.AllowHeaders = opts.Config.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsCfg))

	engine.GET("/healthz", h.System.Health)

	api := engine.Group("/api/v1")
	if opts.JWTService != nil {
		api.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
			JWTService: opts.JWTService,
			SkipPaths:  []string{"/healthz", "/api/v1/healthz"},
			Logger:     opts.Logger,
		}))
	}

	api.GET("/healthz", h.System.Health)

	idempotent := func() gin.HandlerFunc {
		if opts.Idempotency != nil {
			return opts.Idempotency
		}
		return func(c *gin.Context) { c.Next() }
	}()

	billings := api.Group("/billings")
	{
		billings.POST("", h.Billing.Create)
		billings.GET("", h.Billing.List)
		billings.GET("/summary", h.Billing.StatusSummary)
		billings.GET("/code/:code", h.Billing.GetByCode)
		billings.GET("/:id", h.Billing.GetByID)
		billings.PUT("/:id", h.Billing.Update)
		billings.DELETE("/:id", h.Billing.Delete)
		billings.GET("/:id/children", h.Billing.ListChildren)
		billings.POST("/:id/items", h.Billing.AddItem)
		billings.PUT("/:id/items/:itemId", h.Billing.UpdateItem)
		billings.DELETE("/:id/items/:itemId", h.Billing.RemoveItem)
		billings.POST("/:id/validate", h.Billing.Validate)
		billings.POST("/:id/status", h.Billing.SetStatus)
		billings.POST("/:id/payments", idempotent, h.Billing.AddPayment)
		billings.DELETE("/:id/payments/:paymentId", h.Billing.RemovePayment)
		billings.POST("/:id/credits", idempotent, h.Billing.CreateCredit)
		// Here :id is the credit note itself, not the parent
		billings.POST("/:id/validate-credit", h.Billing.ValidateCredit)
	}

	stocks := api.Group("/stocks")
	{
		stocks.GET("", h.Stock.List)
		stocks.GET("/movements", h.Stock.Movements)
		stocks.POST("/movements", idempotent, h.Stock.ApplyMovement)
		stocks.GET("/:id", h.Stock.GetByID)
		stocks.GET("/:id/movements", h.Stock.MovementsByStock)
		stocks.GET("/product/:productId/warehouse/:warehouseId", h.Stock.GetByProductAndWarehouse)
		stocks.GET("/product/:productId/warehouse/:warehouseId/wac", h.Stock.WeightedAverageCost)
	}

	products := api.Group("/products")
	{
		products.POST("", h.Product.Create)
		products.GET("", h.Product.List)
		products.GET("/reference/:reference", h.Product.GetByReference)
		products.GET("/:id", h.Product.GetByID)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}

	thirdParties := api.Group("/third-parties")
	{
		thirdParties.POST("", h.ThirdParty.Create)
		thirdParties.GET("", h.ThirdParty.List)
		thirdParties.GET("/:id", h.ThirdParty.GetByID)
		thirdParties.PUT("/:id", h.ThirdParty.Update)
		thirdParties.DELETE("/:id", h.ThirdParty.Delete)
	}

	warehouses := api.Group("/warehouses")
	{
		warehouses.POST("", h.Warehouse.Create)
		warehouses.GET("", h.Warehouse.List)
		warehouses.GET("/:id", h.Warehouse.GetByID)
		warehouses.PUT("/:id", h.Warehouse.Update)
		warehouses.DELETE("/:id", h.Warehouse.Delete)
	}

	return engine
}
