package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted under /api.
type Handlers struct {
	Bikes     *handlers.BikeHandler
	Suppliers *handlers.SupplierHandler
	Customers *handlers.CustomerHandler
	Sales     *handlers.SaleHandler
	Reports   *handlers.ReportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	handlers.RegisterBindingRules()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	bikes := api.Group("/bikes")
	bikes.GET("", h.Bikes.List)
	bikes.POST("", h.Bikes.Create)
	bikes.GET("/:id", h.Bikes.Get)
	bikes.PUT("/:id", h.Bikes.Update)
	bikes.DELETE("/:id", h.Bikes.Delete)
	bikes.GET("/:id/price", h.Bikes.Price)
	bikes.GET("/:id/inventory", h.Bikes.Inventory)
	bikes.PUT("/:id/inventory", h.Bikes.UpdateInventory)
	bikes.POST("/:id/restock", h.Bikes.Restock)
	api.GET("/inventory/reorder", h.Bikes.Reorder)

	suppliers := api.Group("/suppliers")
	suppliers.GET("", h.Suppliers.List)
	suppliers.POST("", h.Suppliers.Create)
	suppliers.GET("/:id", h.Suppliers.Get)
	suppliers.PUT("/:id", h.Suppliers.Update)
	suppliers.DELETE("/:id", h.Suppliers.Delete)

	customers := api.Group("/customers")
	customers.GET("", h.Customers.List)
	customers.POST("", h.Customers.Create)
	customers.GET("/:id", h.Customers.Get)
	customers.PUT("/:id", h.Customers.Update)
	customers.DELETE("/:id", h.Customers.Delete)

	sales := api.Group("/sales")
	sales.GET("", h.Sales.List)
	sales.POST("", h.Sales.Create)
	sales.GET("/:id", h.Sales.Get)
	sales.PATCH("/:id", h.Sales.UpdateNotes)

	api.GET("/dashboard", h.Reports.Dashboard)
	api.GET("/reports", h.Reports.Reports)
	api.GET("/charts/sales-by-type", h.Reports.SalesByType)
	api.GET("/charts/inventory-by-type", h.Reports.InventoryByType)

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request completed", fields...)
			return
		}
		logger.Info("request completed", fields...)
	}
}
