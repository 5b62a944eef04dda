package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

type PlanHandler struct {
	planService   *service.OrderPlanService
	recipeService *service.RecipeService
}

func NewPlanHandler(planService *service.OrderPlanService, recipeService *service.RecipeService) *PlanHandler {
	return &PlanHandler{planService: planService, recipeService: recipeService}
}

// GetOrderPlan returns the ingredient order plan for ?date=YYYY-MM-DD.
func (h *PlanHandler) GetOrderPlan(c *gin.Context) {
	plan, err := h.planService.GeneratePlan(c.Request.Context(), c.Param("account"), strings.TrimSpace(c.Query("date")))
	if err != nil {
		respondError(c, "failed to generate order plan", err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ExportOrderPlan downloads the supplier order list as CSV.
func (h *PlanHandler) ExportOrderPlan(c *gin.Context) {
	export, err := h.planService.ExportCSV(c.Request.Context(), c.Param("account"), strings.TrimSpace(c.Query("date")))
	if err != nil {
		respondError(c, "failed to export order plan", err)
		return
	}

	if export.StoredKey != "" {
		c.Header("X-Export-Key", export.StoredKey)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", export.Data)
}

type calculateRecipeRequest struct {
	Servings *float64 `json:"servings" binding:"required"`
}

// CalculateRecipe returns what to order to cook the requested servings.
func (h *PlanHandler) CalculateRecipe(c *gin.Context) {
	var req calculateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	lines, err := h.recipeService.Calculate(c.Request.Context(), c.Param("account"), c.Param("recipe"), *req.Servings)
	if err != nil {
		respondError(c, "failed to calculate recipe order", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipe_id": c.Param("recipe"),
		"servings":  *req.Servings,
		"lines":     lines,
	})
}
