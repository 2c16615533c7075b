package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"campus-facilities-api/services"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	readings *services.ReadingService
}

func NewAlertHandler(readings *services.ReadingService) *AlertHandler {
	return &AlertHandler{readings: readings}
}

type PredictRequest struct {
	Temperature *float64 `json:"temperature" binding:"required"`
	Humidity    *float64 `json:"humidity" binding:"required,gte=0,lte=100"`
}

// Predict returns the odor thresholds for the given conditions.
func (h *AlertHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	thresholds, err := h.readings.PredictThresholds(*req.Temperature, *req.Humidity)
	if err != nil {
		if errors.Is(err, services.ErrModelUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction model not loaded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
		return
	}

	c.JSON(http.StatusOK, thresholds)
}

// Evaluate runs a full alert evaluation over a stored reading and returns
// the decision whether or not a notification fired.
func (h *AlertHandler) Evaluate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	decision, err := h.readings.EvaluateReading(c.Request.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "reading not found"})
		case errors.Is(err, services.ErrModelUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "prediction model not loaded"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "alert evaluation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, decision)
}
