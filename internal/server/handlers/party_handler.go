package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
	"github.com/mamadbah2/bikestore/internal/service/catalog"
	"github.com/mamadbah2/bikestore/internal/service/customers"
)

// SupplierHandler serves /api/suppliers.
type SupplierHandler struct {
	svc    *catalog.Service
	logger *zap.Logger
}

// NewSupplierHandler constructs the supplier HTTP adapter.
func NewSupplierHandler(svc *catalog.Service, logger *zap.Logger) *SupplierHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierHandler{svc: svc, logger: logger}
}

// Email and phone are trimmed before the format and length rules of
// models.Supplier apply.
type supplierRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	ContactPerson string `json:"contact_person" binding:"required,max=100"`
	Email         string `json:"email" binding:"required"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

func (r supplierRequest) supplier() models.Supplier {
	return models.Supplier{
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Phone:         r.Phone,
		Address:       r.Address,
	}
}

func (h *SupplierHandler) List(c *gin.Context) {
	page, err := h.svc.ListSuppliers(c.Request.Context(), pageParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SupplierHandler) Create(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	supplier, err := h.svc.CreateSupplier(c.Request.Context(), req.supplier())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *SupplierHandler) Get(c *gin.Context) {
	supplier, err := h.svc.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *SupplierHandler) Update(c *gin.Context) {
	var req supplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	supplier, err := h.svc.UpdateSupplier(c.Request.Context(), c.Param("id"), req.supplier())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (h *SupplierHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CustomerHandler serves /api/customers.
type CustomerHandler struct {
	svc    *customers.Service
	logger *zap.Logger
}

// NewCustomerHandler constructs the customer HTTP adapter.
func NewCustomerHandler(svc *customers.Service, logger *zap.Logger) *CustomerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerHandler{svc: svc, logger: logger}
}

type customerRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (r customerRequest) customer() models.Customer {
	return models.Customer{Name: r.Name, Email: r.Email, Phone: r.Phone, Address: r.Address}
}

// List handles GET /api/customers?search=&page=.
func (h *CustomerHandler) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Query("search"), pageParam(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	customer, err := h.svc.Create(c.Request.Context(), req.customer())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	customer, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.customer())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
