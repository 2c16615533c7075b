package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"campus-facilities-api/models"
	"campus-facilities-api/services"

	"github.com/gin-gonic/gin"
)

type ReadingHandler struct {
	readings *services.ReadingService
	cache    *services.CacheService
}

func NewReadingHandler(readings *services.ReadingService, cache *services.CacheService) *ReadingHandler {
	return &ReadingHandler{readings: readings, cache: cache}
}

type CreateReadingRequest struct {
	AmmoniaPPM  *float64 `json:"ammonia_ppm" binding:"required,gte=0"`
	H2SPPM      *float64 `json:"h2s_ppm" binding:"required,gte=0"`
	Temperature *float64 `json:"temperature" binding:"required"`
	Humidity    *float64 `json:"humidity" binding:"required,gte=0,lte=100"`
}

// CreateReading persists a telemetry sample. Alert evaluation runs as a side
// effect inside the service; its failure never fails this request.
func (h *ReadingHandler) CreateReading(c *gin.Context) {
	var req CreateReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reading, err := h.readings.CreateReading(
		c.Request.Context(),
		*req.AmmoniaPPM, *req.H2SPPM, *req.Temperature, *req.Humidity,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store reading"})
		return
	}

	c.JSON(http.StatusCreated, reading)
}

func (h *ReadingHandler) GetReadings(c *gin.Context) {
	p := ParsePagination(c)
	cacheKey := fmt.Sprintf("readings:%d:%d", p.Limit, p.Offset)

	var cached ListResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil && cached.Data != nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	readings, err := h.readings.ListReadings(c.Request.Context(), p.Limit, p.Offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}
	if readings == nil {
		readings = []models.SensorReading{}
	}

	resp := ListResponse{Data: readings}
	go h.cache.Set(context.Background(), cacheKey, resp, 5*time.Second)

	c.JSON(http.StatusOK, resp)
}

func (h *ReadingHandler) GetReading(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reading id"})
		return
	}

	reading, err := h.readings.GetReading(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reading not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	c.JSON(http.StatusOK, reading)
}
