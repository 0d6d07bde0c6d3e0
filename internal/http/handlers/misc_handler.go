// README: Root, health, weather and usage handlers.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"atlas/internal/usage"
	"atlas/internal/weather"
)

// Root handles GET /.
func Root(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"message": "Hello World"})
}

// Health handles GET /health.
func Health(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"status": "ok"})
}

// Forecaster returns daily weather for a coordinate.
type Forecaster interface {
	Forecast(ctx context.Context, lat, lng float64, days int) (*weather.Forecast, error)
}

type WeatherHandler struct {
	forecaster Forecaster
}

func NewWeatherHandler(forecaster Forecaster) *WeatherHandler {
	return &WeatherHandler{forecaster: forecaster}
}

type weatherReq struct {
	Lat  *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng  *float64 `json:"lng" binding:"required,min=-180,max=180"`
	Days int      `json:"days" binding:"required,min=1,max=14"`
}

// Forecast handles POST /weather.
func (h *WeatherHandler) Forecast(c *gin.Context) {
	var req weatherReq
	if !bindJSON(c, &req) {
		return
	}
	f, err := h.forecaster.Forecast(c.Request.Context(), *req.Lat, *req.Lng, req.Days)
	if err != nil {
		switch {
		case errors.Is(err, weather.ErrInvalidRequest):
			writeError(c, http.StatusBadRequest, err.Error())
		default:
			writeError(c, http.StatusBadGateway, "weather service error")
		}
		return
	}
	writeJSON(c, http.StatusOK, f)
}

// UsageReporter summarizes the generation ledger.
type UsageReporter interface {
	Summary(ctx context.Context, month string) (*usage.MonthlyUsage, error)
}

type UsageHandler struct {
	reporter UsageReporter
}

// NewUsageHandler accepts a nil reporter when no ledger is configured.
func NewUsageHandler(reporter UsageReporter) *UsageHandler {
	return &UsageHandler{reporter: reporter}
}

// Summary handles GET /usage.
func (h *UsageHandler) Summary(c *gin.Context) {
	if h.reporter == nil {
		writeError(c, http.StatusNotFound, "usage ledger not configured")
		return
	}
	u, err := h.reporter.Summary(c.Request.Context(), c.Query("month"))
	if err != nil {
		switch {
		case errors.Is(err, usage.ErrInvalidMonth):
			writeError(c, http.StatusBadRequest, err.Error())
		default:
			writeError(c, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(c, http.StatusOK, u)
}
