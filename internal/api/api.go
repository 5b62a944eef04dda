package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/themagicbeanstock/backend-go/internal/api/handlers"
	"github.com/themagicbeanstock/backend-go/internal/api/middleware"
	"github.com/themagicbeanstock/backend-go/internal/metrics"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

type Services struct {
	RiskService      *service.RiskService
	OrderPlanService *service.OrderPlanService
	RecipeService    *service.RecipeService
	ForecastService  *service.ForecastService
	IngestService    *service.IngestService
}

type RouterConfig struct {
	AllowedOrigins []string
	UploadDir      string
	// MaxUploadBytes bounds multipart memory; zero keeps gin's default.
	MaxUploadBytes int64
	Metrics        *metrics.Collector
}

func NewRouter(services *Services, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger(cfg.Metrics))
	router.Use(middleware.Recovery())
	if cfg.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = cfg.MaxUploadBytes
	}

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Export-Key"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	accountGroup := router.Group("/api/v1/accounts/:account")

	if services != nil {
		if services.RiskService != nil {
			inventoryHandler := handlers.NewInventoryHandler(services.RiskService)
			accountGroup.GET("/inventory/risk", inventoryHandler.GetRisk)
			accountGroup.GET("/sustainability", inventoryHandler.GetSustainability)
		}

		if services.OrderPlanService != nil || services.RecipeService != nil {
			planHandler := handlers.NewPlanHandler(services.OrderPlanService, services.RecipeService)
			if services.OrderPlanService != nil {
				accountGroup.GET("/order-plan", planHandler.GetOrderPlan)
				accountGroup.GET("/order-plan/export", planHandler.ExportOrderPlan)
			}
			if services.RecipeService != nil {
				accountGroup.POST("/recipes/:recipe/calculate", planHandler.CalculateRecipe)
			}
		}

		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService)
			accountGroup.GET("/forecasts", forecastHandler.GetForecasts)
		}

		if services.IngestService != nil {
			uploadHandler := handlers.NewUploadHandler(services.IngestService, cfg.UploadDir)
			accountGroup.POST("/uploads", uploadHandler.UploadBatch)
			accountGroup.POST("/uploads/:kind", uploadHandler.Upload)
			accountGroup.GET("/datasets", uploadHandler.GetDatasets)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
