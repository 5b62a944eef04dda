package drive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/ingest"
	"github.com/themagicbeanstock/backend-go/internal/service"
)

var ErrFolderNotFound = errors.New("drive folder not found")

// IngestService feeds files stored in Google Drive through the upload pipeline.
type IngestService struct {
	source      Source
	downloader  *Downloader
	ingest      *service.IngestService
	downloadDir string
}

func NewIngestService(source Source, ingestService *service.IngestService, downloadDir string) *IngestService {
	if downloadDir == "" {
		downloadDir = os.TempDir()
	}
	return &IngestService{
		source:      source,
		downloader:  NewDownloader(source),
		ingest:      ingestService,
		downloadDir: downloadDir,
	}
}

// IngestFile downloads one Drive file and ingests it. The kind is taken from
// the file name when kindName is empty.
func (s *IngestService) IngestFile(ctx context.Context, accountID, fileID, kindName, forecastDate string) (*domain.IngestResult, error) {
	f, err := s.source.GetFile(ctx, fileID)
	if err != nil {
		return nil, err
	}

	var kind ingest.Kind
	if kindName != "" {
		kind, err = ingest.ParseKind(kindName)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		kind, ok = ingest.KindForFilename(f.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ingest.ErrUnsupportedFile, f.Name)
		}
	}

	var buf bytes.Buffer
	if err := s.source.DownloadFile(ctx, fileID, &buf); err != nil {
		return nil, err
	}

	return s.ingest.Ingest(ctx, accountID, kind, f.Name, &buf, forecastDate)
}

// IngestFolder downloads every recognised file of a folder into a scratch
// directory and ingests them together.
func (s *IngestService) IngestFolder(ctx context.Context, accountID, folderID, forecastDate string) ([]*domain.IngestResult, error) {
	if err := os.MkdirAll(s.downloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}
	dir, err := os.MkdirTemp(s.downloadDir, "drive-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	files, err := s.downloader.DownloadFolder(ctx, DownloadOptions{FolderID: folderID, DownloadDir: dir})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Info().Str("folder", folderID).Msg("drive: no ingestible files found")
		return []*domain.IngestResult{}, nil
	}

	return s.ingest.IngestFiles(ctx, accountID, files, forecastDate)
}
