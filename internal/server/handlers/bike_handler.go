package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/service/catalog"
	"github.com/mamadbah2/bikestore/internal/service/inventory"
)

// BikeHandler serves the bike catalog and per-bike inventory endpoints.
type BikeHandler struct {
	catalog   *catalog.Service
	inventory *inventory.Service
	logger    *zap.Logger
}

// NewBikeHandler constructs the bike HTTP adapter.
func NewBikeHandler(catalogSvc *catalog.Service, inventorySvc *inventory.Service, logger *zap.Logger) *BikeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BikeHandler{catalog: catalogSvc, inventory: inventorySvc, logger: logger}
}

type bikeRequest struct {
	Brand         string          `json:"brand" binding:"required,max=50"`
	Model         string          `json:"model" binding:"required,max=100"`
	Type          models.BikeType `json:"type" binding:"omitempty,biketype"`
	Price         decimal.Decimal `json:"price" binding:"gte=0.01,lte=99999999.99"`
	StockQuantity int             `json:"stock_quantity" binding:"gte=0,lte=2147483647"`
	Color         string          `json:"color" binding:"max=30"`
	Description   string          `json:"description"`
	SupplierID    string          `json:"supplier_id"`
}

type restockRequest struct {
	Quantity int `json:"quantity" binding:"gte=1,lte=2147483647"`
}

func (r bikeRequest) bike() models.Bike {
	return models.Bike{
		Brand:         r.Brand,
		Model:         r.Model,
		Type:          r.Type,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		Color:         r.Color,
		Description:   r.Description,
		SupplierID:    r.SupplierID,
	}
}

// List handles GET /api/bikes.
func (h *BikeHandler) List(c *gin.Context) {
	filter := models.BikeFilter{
		Search:     c.Query("search"),
		Type:       models.BikeType(c.Query("type")),
		SupplierID: c.Query("supplier_id"),
	}

	var err error
	if filter.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if filter.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		respondError(c, h.logger, err)
		return
	}
	if raw := c.Query("in_stock_only"); raw != "" {
		if filter.InStockOnly, err = strconv.ParseBool(raw); err != nil {
			respondError(c, h.logger, models.Invalid("in_stock_only", "must be true or false"))
			return
		}
	}

	page, err := h.catalog.ListBikes(c.Request.Context(), filter, pageParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func decimalQuery(c *gin.Context, key string) (*decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, models.Invalid(key, "must be a decimal number")
	}
	return &d, nil
}

// Create handles POST /api/bikes.
func (h *BikeHandler) Create(c *gin.Context) {
	var req bikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	bike, err := h.catalog.CreateBike(c.Request.Context(), req.bike())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, bike)
}

// Get handles GET /api/bikes/:id.
func (h *BikeHandler) Get(c *gin.Context) {
	bike, err := h.catalog.GetBike(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bike)
}

// Update handles PUT /api/bikes/:id.
func (h *BikeHandler) Update(c *gin.Context) {
	var req bikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	bike, err := h.catalog.UpdateBike(c.Request.Context(), c.Param("id"), req.bike())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, bike)
}

// Delete handles DELETE /api/bikes/:id.
func (h *BikeHandler) Delete(c *gin.Context) {
	if err := h.catalog.DeleteBike(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Price handles GET /api/bikes/:id/price. Unknown bikes answer 200 with success=false.
func (h *BikeHandler) Price(c *gin.Context) {
	lookup, err := h.catalog.BikePrice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lookup)
}

// Inventory handles GET /api/bikes/:id/inventory.
func (h *BikeHandler) Inventory(c *gin.Context) {
	view, err := h.inventory.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateInventory handles PUT /api/bikes/:id/inventory.
func (h *BikeHandler) UpdateInventory(c *gin.Context) {
	var req inventory.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	view, err := h.inventory.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Restock handles POST /api/bikes/:id/restock.
func (h *BikeHandler) Restock(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	view, err := h.inventory.Restock(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Reorder handles GET /api/inventory/reorder.
func (h *BikeHandler) Reorder(c *gin.Context) {
	views, err := h.inventory.ReorderList(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": views, "count": len(views)})
}
