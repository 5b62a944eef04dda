package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/ingest"
	"github.com/themagicbeanstock/backend-go/internal/repository/postgres"
	"github.com/themagicbeanstock/backend-go/internal/service"
	"github.com/themagicbeanstock/backend-go/internal/storage"
	"github.com/urfave/cli/v2"
)

func newIngestService(db *postgres.DB, store storage.ObjectStorage, prefix string) *service.IngestService {
	return service.NewIngestService(
		postgres.NewIngestRepository(db),
		postgres.NewPlanningRepository(db),
		nil,
		service.IngestConfig{Store: store, StoragePrefix: prefix},
		service.Options{},
	)
}

func runSchema(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}
	if err := db.EnsureSchema(c.Context); err != nil {
		return err
	}
	log.Info().Msg("Schema is up to date")
	return nil
}

func runUpload(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("a file path is required")
	}

	var kind ingest.Kind
	if name := c.String("kind"); name != "" {
		if kind, err = ingest.ParseKind(name); err != nil {
			return err
		}
	} else {
		var ok bool
		if kind, ok = ingest.KindForFilename(path); !ok {
			return fmt.Errorf("cannot infer upload kind from %s; pass --kind", path)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	result, err := newIngestService(db, nil, "").Ingest(c.Context, c.String("account"), kind, filepath.Base(path), f, c.String("date"))
	if err != nil {
		return err
	}
	logResults(result)
	return nil
}

func runFolder(c *cli.Context) error {
	db, err := dbFromContext(c)
	if err != nil {
		return err
	}

	dataDir := c.String("data-dir")
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", dataDir, err)
	}

	var files []*domain.UploadedFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := ingest.KindForFilename(e.Name()); !ok {
			log.Debug().Str("file", e.Name()).Msg("Skipping file with no upload kind")
			continue
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		files = append(files, &domain.UploadedFile{
			Filename: e.Name(),
			Path:     filepath.Join(dataDir, e.Name()),
			Size:     info.Size(),
		})
	}
	if len(files) == 0 {
		return fmt.Errorf("no ingestible files found in %s", dataDir)
	}

	log.Info().Str("dir", dataDir).Int("files", len(files)).Msg("Starting folder ingest")
	results, err := newIngestService(db, nil, "").IngestFiles(c.Context, c.String("account"), files, c.String("date"))
	logResults(results...)
	return err
}

func logResults(results ...*domain.IngestResult) {
	sort.Slice(results, func(i, j int) bool { return results[i].Filename < results[j].Filename })
	for _, r := range results {
		log.Info().
			Str("file", r.Filename).
			Str("kind", r.Kind).
			Int("rows", r.Rows).
			Int("written", r.Written).
			Int("skipped", r.Skipped).
			Msg("Ingested")
	}
}
