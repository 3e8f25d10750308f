package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"reverse-geocoding/internal/models"
	"reverse-geocoding/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ReverseGeocodeHandler handles reverse geocoding requests
type ReverseGeocodeHandler struct {
	service ReverseGeocoder
}

// ReverseGeocoder interface for dependency injection
type ReverseGeocoder interface {
	ReverseGeocode(context.Context, float64, float64) (*models.ReverseGeocodeResult, error)
}

// NewReverseGeocodeHandler creates a new reverse geocode handler
func NewReverseGeocodeHandler(svc ReverseGeocoder) *ReverseGeocodeHandler {
	return &ReverseGeocodeHandler{service: svc}
}

// ReverseGeocode handles GET /reverse-geocode requests. A coordinate outside
// the table's coverage is answered with found=false, not 404.
func (h *ReverseGeocodeHandler) ReverseGeocode(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameters 'lat' and 'lon'"})
		return
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude format"})
		return
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude format"})
		return
	}

	result, err := h.service.ReverseGeocode(c.Request.Context(), lat, lon)
	if errors.Is(err, service.ErrInvalidCoordinate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinate out of range"})
		return
	}
	if err != nil {
		log.Error().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("reverse geocode failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}
