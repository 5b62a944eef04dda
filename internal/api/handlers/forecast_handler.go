package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

type ForecastHandler struct {
	forecastService *service.ForecastService
}

func NewForecastHandler(forecastService *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{forecastService: forecastService}
}

// GetForecasts lists the stored forecasts for ?date=YYYY-MM-DD.
func (h *ForecastHandler) GetForecasts(c *gin.Context) {
	list, err := h.forecastService.ListForecasts(c.Request.Context(), c.Param("account"), strings.TrimSpace(c.Query("date")))
	if err != nil {
		respondError(c, "failed to list forecasts", err)
		return
	}

	c.JSON(http.StatusOK, list)
}
