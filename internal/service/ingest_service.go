package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/cache"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/ingest"
	"github.com/themagicbeanstock/backend-go/internal/repository"
	"github.com/themagicbeanstock/backend-go/internal/storage"
)

const (
	// DefaultMaxUploadBytes caps a single upload when no limit is configured.
	DefaultMaxUploadBytes = 20 << 20
	// DefaultIngestWorkers is the number of files ingested at once.
	DefaultIngestWorkers = 4
)

// IngestService parses uploaded files and writes them to the store.
type IngestService struct {
	writer        repository.IngestRepository
	reader        repository.PlanningRepository
	cache         cache.PlanCache
	store         storage.ObjectStorage
	storagePrefix string
	maxBytes      int64
	workers       int
	opts          Options
}

type IngestConfig struct {
	Store         storage.ObjectStorage
	StoragePrefix string
	MaxBytes      int64
	Workers       int
}

func NewIngestService(
	writer repository.IngestRepository,
	reader repository.PlanningRepository,
	cacheImpl cache.PlanCache,
	cfg IngestConfig,
	opts Options,
) *IngestService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopPlanCache()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxUploadBytes
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultIngestWorkers
	}
	return &IngestService{
		writer:        writer,
		reader:        reader,
		cache:         cacheImpl,
		store:         cfg.Store,
		storagePrefix: cfg.StoragePrefix,
		maxBytes:      cfg.MaxBytes,
		workers:       cfg.Workers,
		opts:          opts,
	}
}

// Ingest parses one file of the given kind and upserts its records.
// The raw file is archived to object storage and the account's cached
// plans are dropped.
func (s *IngestService) Ingest(ctx context.Context, accountID string, kind ingest.Kind, filename string, r io.Reader, forecastDate string) (*domain.IngestResult, error) {
	accountID, err := normalizeAccount(accountID)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", filename, err)
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, fmt.Errorf("%w: %s", ErrUploadTooLarge, filename)
	}

	batch, err := ingest.Parse(kind, filename, bytes.NewReader(raw), ingest.Options{
		ForecastDate: forecastDate,
		Now:          s.opts.Now,
	})
	if err != nil {
		return nil, err
	}

	written, err := s.write(ctx, accountID, batch)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	result := &domain.IngestResult{
		Kind:        string(kind),
		Filename:    filepath.Base(filename),
		Rows:        batch.Rows,
		Written:     written,
		Skipped:     batch.Skipped,
		ProcessedAt: now.UTC(),
	}

	if s.store != nil {
		key := storage.ArchiveKey(s.storagePrefix, accountID, string(kind), filename, now)
		if err := s.store.UploadObject(ctx, key, raw, contentType(filename)); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("ingest: archive upload failed")
		} else {
			result.ArchivedKey = key
		}
	}

	if err := s.cache.InvalidateAccount(ctx, accountID); err != nil {
		log.Warn().Err(err).Str("account", accountID).Msg("ingest: cache invalidation failed")
	}

	s.opts.Metrics.ObserveIngest(string(kind), written, batch.Skipped)
	log.Info().
		Str("account", accountID).
		Str("kind", string(kind)).
		Str("file", result.Filename).
		Int("rows", result.Rows).
		Int("written", written).
		Int("skipped", batch.Skipped).
		Msg("upload ingested")

	return result, nil
}

func (s *IngestService) write(ctx context.Context, accountID string, b *ingest.Batch) (int, error) {
	switch b.Kind {
	case ingest.KindInventoryCSV:
		return s.writer.UpsertInventory(ctx, accountID, b.Inventory)
	case ingest.KindSalesCSV:
		return s.writer.UpsertSales(ctx, accountID, b.Sales)
	case ingest.KindRecipesJSON:
		return s.writer.UpsertRecipes(ctx, accountID, b.Recipes)
	case ingest.KindMenuJSON:
		return s.writer.UpsertMenuCatalog(ctx, accountID, b.Menu)
	case ingest.KindConversionsCSV:
		return s.writer.UpsertUnitConversions(ctx, accountID, b.Conversions)
	case ingest.KindForecastsJSON:
		return s.writer.UpsertForecasts(ctx, accountID, b.Forecasts)
	}
	return 0, fmt.Errorf("%w: %q", ingest.ErrUnknownKind, b.Kind)
}

// IngestFiles ingests local files concurrently on a fixed pool of workers.
// Files whose name maps to no upload kind are skipped. Results keep the
// input order; the first failure is returned after every file has run.
func (s *IngestService) IngestFiles(ctx context.Context, accountID string, files []*domain.UploadedFile, forecastDate string) ([]*domain.IngestResult, error) {
	type fileJob struct {
		index int
		file  *domain.UploadedFile
		kind  ingest.Kind
	}

	jobs := make([]fileJob, 0, len(files))
	for _, file := range files {
		kind, ok := ingest.KindForFilename(file.Filename)
		if !ok {
			log.Warn().Str("file", file.Filename).Msg("ingest: no upload kind for file, skipping")
			continue
		}
		jobs = append(jobs, fileJob{index: len(jobs), file: file, kind: kind})
	}

	workerCount := s.workers
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}

	var (
		wg      sync.WaitGroup
		jobChan = make(chan fileJob, len(jobs))
		errChan = make(chan error, len(jobs))
		slots   = make([]*domain.IngestResult, len(jobs))
	)

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				result, err := s.ingestFile(ctx, accountID, job.file, job.kind, forecastDate)
				if err != nil {
					log.Error().Err(err).Int("worker", workerID).Str("file", job.file.Filename).Msg("ingest: file failed")
					errChan <- err
					continue
				}
				slots[job.index] = result
			}
		}(i)
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	wg.Wait()
	close(errChan)

	results := make([]*domain.IngestResult, 0, len(jobs))
	for _, r := range slots {
		if r != nil {
			results = append(results, r)
		}
	}

	if err := <-errChan; err != nil {
		return results, err
	}
	return results, nil
}

func (s *IngestService) ingestFile(ctx context.Context, accountID string, f *domain.UploadedFile, kind ingest.Kind, forecastDate string) (*domain.IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("error processing file %s: %w", f.Filename, err)
	}

	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", f.Filename, err)
	}
	defer fh.Close()

	result, err := s.Ingest(ctx, accountID, kind, f.Filename, fh, forecastDate)
	if err != nil {
		return nil, fmt.Errorf("error processing file %s: %w", f.Filename, err)
	}
	return result, nil
}

// IngestFromStorage pulls every object under prefix and ingests those whose
// file name maps to an upload kind.
func (s *IngestService) IngestFromStorage(ctx context.Context, accountID, prefix, forecastDate string) ([]*domain.IngestResult, error) {
	if s.store == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	objects, err := s.store.ListObjects(ctx, prefix)
	if err != nil {
		return nil, err
	}

	results := make([]*domain.IngestResult, 0, len(objects))
	for _, obj := range objects {
		kind, ok := ingest.KindForFilename(obj.Key)
		if !ok {
			log.Debug().Str("key", obj.Key).Msg("ingest: skipping object with no upload kind")
			continue
		}

		data, err := s.store.GetObject(ctx, obj.Key)
		if err != nil {
			return results, err
		}

		result, err := s.Ingest(ctx, accountID, kind, obj.Key, bytes.NewReader(data), forecastDate)
		if err != nil {
			return results, fmt.Errorf("error processing object %s: %w", obj.Key, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// DatasetStatus reports how many records each dataset holds for the account.
func (s *IngestService) DatasetStatus(ctx context.Context, accountID string) ([]domain.DatasetStatus, error) {
	accountID, err := normalizeAccount(accountID)
	if err != nil {
		return nil, err
	}

	counts, err := s.reader.DatasetCounts(ctx, accountID)
	if err != nil {
		return nil, err
	}

	out := make([]domain.DatasetStatus, 0, len(domain.AllDatasets))
	for _, ds := range domain.AllDatasets {
		n := counts[ds]
		out = append(out, domain.DatasetStatus{Dataset: ds, Count: n, Present: n > 0})
	}
	return out, nil
}

func contentType(filename string) string {
	switch filepath.Ext(filename) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}
