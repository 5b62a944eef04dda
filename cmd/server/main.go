package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/api"
	"github.com/themagicbeanstock/backend-go/internal/cache"
	"github.com/themagicbeanstock/backend-go/internal/config"
	"github.com/themagicbeanstock/backend-go/internal/metrics"
	"github.com/themagicbeanstock/backend-go/internal/repository/postgres"
	"github.com/themagicbeanstock/backend-go/internal/service"
	"github.com/themagicbeanstock/backend-go/internal/storage"
	"github.com/themagicbeanstock/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if cfg.App.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := db.EnsureSchema(ctx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
	}

	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		planCache = cache.NewNoopPlanCache()
	}

	objects, err := storage.New(cfg.Storage, cfg.App.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	var collector *metrics.Collector
	if cfg.Server.MetricsEnabled {
		collector = metrics.NewCollector()
	}

	services, err := buildServices(cfg, db, planCache, objects, collector)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}

	router := api.NewRouter(services, api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		UploadDir:      cfg.App.UploadDir,
		MaxUploadBytes: int64(cfg.App.MaxUploadMB) << 20,
		Metrics:        collector,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

func buildServices(
	cfg *config.Config,
	db *postgres.DB,
	planCache cache.PlanCache,
	objects storage.ObjectStorage,
	collector *metrics.Collector,
) (*api.Services, error) {
	planningRepo := postgres.NewPlanningRepository(db)
	ingestRepo := postgres.NewIngestRepository(db)
	policy := cfg.Engine.Policy()
	opts := service.Options{
		Location:    cfg.App.Location(),
		Metrics:     collector,
		LoadTimeout: time.Duration(cfg.App.LoadTimeout) * time.Second,
	}

	riskService, err := service.NewRiskService(planningRepo, planCache, policy, opts)
	if err != nil {
		return nil, err
	}
	planService, err := service.NewOrderPlanService(planningRepo, planCache, objects, cfg.Storage.Prefix, policy, opts)
	if err != nil {
		return nil, err
	}
	recipeService, err := service.NewRecipeService(planningRepo, policy, opts)
	if err != nil {
		return nil, err
	}
	ingestService := service.NewIngestService(ingestRepo, planningRepo, planCache, service.IngestConfig{
		Store:         objects,
		StoragePrefix: cfg.Storage.Prefix,
		MaxBytes:      int64(cfg.App.MaxUploadMB) << 20,
	}, opts)

	return &api.Services{
		RiskService:      riskService,
		OrderPlanService: planService,
		RecipeService:    recipeService,
		ForecastService:  service.NewForecastService(planningRepo, opts),
		IngestService:    ingestService,
	}, nil
}
