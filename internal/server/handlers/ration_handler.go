package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
	"github.com/mamadbah2/herdbook/internal/service/feeding"
)

// RationHandler exposes the ration calculator over HTTP.
type RationHandler struct {
	svc    feeding.Calculator
	logger *zap.Logger
}

// NewRationHandler constructs the HTTP handler adapter.
func NewRationHandler(svc feeding.Calculator, logger *zap.Logger) *RationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RationHandler{svc: svc, logger: logger}
}

// Calculate returns the ration recommendation for the posted parameters.
func (h *RationHandler) Calculate(c *gin.Context) {
	var req models.FeedingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Debug("invalid ration payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	resp, err := h.svc.Calculate(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, feeding.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, feeding.ErrUnknownCategory), errors.Is(err, feeding.ErrUnknownStage):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.Error("ration calculation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to calculate ration"})
	}
}

// Labels returns the display catalog for category and stage codes.
func (h *RationHandler) Labels(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Labels())
}

// History lists archived calculations, newest first.
func (h *RationHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	calcs, err := h.svc.History(c.Request.Context(), c.Query("herd"), limit)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"calculations": calcs})
	case errors.Is(err, feeding.ErrHistoryDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("failed to list calculations", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "unable to load history"})
	}
}
