package handler

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/WhoSowSee/CurrencyConverter/internal/models"
	"github.com/WhoSowSee/CurrencyConverter/internal/service"
)

// CurrencyHandler exposes the converter core over HTTP. The core expects a
// single logical flow, so the handler serializes access with a mutex.
type CurrencyHandler struct {
	mu        sync.Mutex
	converter *service.Converter
	logger    *zap.Logger
}

func NewCurrencyHandler(converter *service.Converter, logger *zap.Logger) *CurrencyHandler {
	return &CurrencyHandler{
		converter: converter,
		logger:    logger,
	}
}

func (h *CurrencyHandler) ConvertCurrency(c *gin.Context) {
	var req models.ConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	result, err := h.converter.ConvertCurrency(req.Amount, req.Reverse)
	h.mu.Unlock()
	if err != nil {
		h.writeError(c, err, "failed to convert currency")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CurrencyHandler) ConvertToSteam(c *gin.Context) {
	var req models.SteamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	result, err := h.converter.ConvertToSteam(c.Request.Context(), req.Amount, req.FromUAH)
	h.mu.Unlock()
	if err != nil {
		h.writeError(c, err, "failed to price marketplace top-up")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *CurrencyHandler) GetStatus(c *gin.Context) {
	h.mu.Lock()
	info := h.converter.StatusInfo()
	h.mu.Unlock()

	c.JSON(http.StatusOK, info)
}

func (h *CurrencyHandler) SetManualRate(c *gin.Context) {
	var req models.ManualRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	err := h.converter.SetManualRate(req.Rate)
	info := h.converter.StatusInfo()
	h.mu.Unlock()
	if err != nil {
		h.writeError(c, err, "failed to set manual rate")
		return
	}

	c.JSON(http.StatusOK, info)
}

func (h *CurrencyHandler) Refresh(c *gin.Context) {
	h.mu.Lock()
	source := h.converter.Reload(c.Request.Context())
	info := h.converter.StatusInfo()
	h.mu.Unlock()

	h.logger.Info("cache refreshed", zap.String("rate_source", string(source)))
	c.JSON(http.StatusOK, info)
}

func (h *CurrencyHandler) writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrRateUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
