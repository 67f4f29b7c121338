package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/bikestore/internal/domain/models"
)

// respondError maps domain errors to HTTP statuses:
// validation 400, not found 404, duplicate 409, insufficient stock 409, anything else 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		stockErr      *models.InsufficientStockError
		validationErr *models.ValidationError
	)

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     fmt.Sprintf("Insufficient stock. Available: %d", stockErr.Available),
			"available": stockErr.Available,
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// badRequest answers a body that failed to bind. Rejected binding rules are
// reported like domain validation errors, with the offending field.
func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request payload", zap.String("path", c.FullPath()), zap.Error(err))
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		respondError(c, logger, models.FieldError(fieldErrs))
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
}

var bindingRules sync.Once

// RegisterBindingRules teaches gin's validator the rules and json field names
// the request types rely on. Only the first call has an effect.
func RegisterBindingRules() {
	bindingRules.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			models.RegisterValidations(v)
		}
	})
}

// pageParam reads ?page=N. Missing or malformed values mean the first page.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
