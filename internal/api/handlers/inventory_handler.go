package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

type InventoryHandler struct {
	riskService *service.RiskService
}

func NewInventoryHandler(riskService *service.RiskService) *InventoryHandler {
	return &InventoryHandler{riskService: riskService}
}

// GetRisk returns every inventory item with its waste-risk figures.
func (h *InventoryHandler) GetRisk(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		respondError(c, "invalid window", err)
		return
	}

	report, err := h.riskService.Report(c.Request.Context(), c.Param("account"), window)
	if err != nil {
		respondError(c, "failed to evaluate inventory risk", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetSustainability returns the at-risk items ordered by waste value.
func (h *InventoryHandler) GetSustainability(c *gin.Context) {
	window, err := parseWindow(c)
	if err != nil {
		respondError(c, "invalid window", err)
		return
	}

	report, err := h.riskService.Sustainability(c.Request.Context(), c.Param("account"), window)
	if err != nil {
		respondError(c, "failed to build sustainability report", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// parseWindow reads ?window=; absent means the configured default.
func parseWindow(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.Query("window"))
	if raw == "" {
		return 0, nil
	}
	window, err := strconv.Atoi(raw)
	if err != nil || window < 0 {
		return 0, fmt.Errorf("%w: %q", service.ErrInvalidWindow, raw)
	}
	return window, nil
}
