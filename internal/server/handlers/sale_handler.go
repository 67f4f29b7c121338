package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/service/sales"
)

// SaleHandler serves /api/sales.
type SaleHandler struct {
	svc    *sales.Service
	logger *zap.Logger
}

// NewSaleHandler constructs the sale HTTP adapter.
func NewSaleHandler(svc *sales.Service, logger *zap.Logger) *SaleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleHandler{svc: svc, logger: logger}
}

// Create handles POST /api/sales. A request larger than the stock on hand
// answers 409 with the available quantity.
func (h *SaleHandler) Create(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	sale, err := h.svc.RecordSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// List handles GET /api/sales?customer_id=&bike_id=&page=.
func (h *SaleHandler) List(c *gin.Context) {
	filter := models.SaleFilter{
		CustomerID: c.Query("customer_id"),
		BikeID:     c.Query("bike_id"),
	}

	page, err := h.svc.ListSales(c.Request.Context(), filter, pageParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SaleHandler) Get(c *gin.Context) {
	sale, err := h.svc.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// UpdateNotes handles PATCH /api/sales/:id. Only notes can change.
func (h *SaleHandler) UpdateNotes(c *gin.Context) {
	var req struct {
		Notes *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.Notes == nil {
		respondError(c, h.logger, models.Invalid("notes", "notes is the only editable field of a sale"))
		return
	}

	sale, err := h.svc.UpdateNotes(c.Request.Context(), c.Param("id"), *req.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}
