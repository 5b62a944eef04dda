package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/cache"
	"github.com/themagicbeanstock/backend-go/internal/config"
	"github.com/themagicbeanstock/backend-go/internal/drive"
	"github.com/themagicbeanstock/backend-go/internal/repository/postgres"
	"github.com/themagicbeanstock/backend-go/internal/service"
	"github.com/themagicbeanstock/backend-go/internal/storage"
	"github.com/themagicbeanstock/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)

	driveService, err := drive.NewService(context.Background(), cfg.Drive.CredentialsJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
	}

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	planCache, err := cache.NewPlanCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, continuing without cache")
		planCache = cache.NewNoopPlanCache()
	}

	objects, err := storage.New(cfg.Storage, cfg.App.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize object storage")
	}

	ingestService := service.NewIngestService(
		postgres.NewIngestRepository(db),
		postgres.NewPlanningRepository(db),
		planCache,
		service.IngestConfig{
			Store:         objects,
			StoragePrefix: cfg.Storage.Prefix,
			MaxBytes:      int64(cfg.App.MaxUploadMB) << 20,
		},
		service.Options{Location: cfg.App.Location()},
	)

	r := mux.NewRouter()
	driveIngest := drive.NewIngestService(driveService, ingestService, cfg.Drive.DownloadDir)
	drive.NewHandler(driveService, driveService, driveIngest, cfg.Drive.FolderID).RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Drive.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Info().Str("port", cfg.Drive.Port).Msg("Drive ingest server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Drive ingest server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Drive ingest server forced to shutdown")
	}
}
