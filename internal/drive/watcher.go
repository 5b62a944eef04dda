package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/themagicbeanstock/backend-go/internal/domain"
	"github.com/themagicbeanstock/backend-go/internal/ingest"
)

// DownloadOptions controls how files are pulled from Google Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
}

// Downloader pulls the ingestible files of a Drive folder to local disk.
type Downloader struct {
	source Source
}

func NewDownloader(source Source) *Downloader {
	return &Downloader{source: source}
}

// DownloadFolder downloads every file in the folder whose name maps to an
// upload kind. Other files are skipped.
func (d *Downloader) DownloadFolder(ctx context.Context, opts DownloadOptions) ([]*domain.UploadedFile, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.source.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var downloaded []*domain.UploadedFile
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if _, ok := ingest.KindForFilename(f.Name); !ok {
			log.Debug().Str("file", f.Name).Msg("drive: skipping file with no upload kind")
			continue
		}

		localPath := filepath.Join(opts.DownloadDir, filepath.Base(f.Name))
		size, err := d.downloadTo(ctx, f.ID, localPath)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", f.Name, err)
		}

		downloaded = append(downloaded, &domain.UploadedFile{
			Filename: f.Name,
			Path:     localPath,
			Size:     size,
		})
	}

	return downloaded, nil
}

func (d *Downloader) downloadTo(ctx context.Context, fileID, path string) (int64, error) {
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create local file %s: %w", path, err)
	}
	defer out.Close()

	if err := d.source.DownloadFile(ctx, fileID, out); err != nil {
		return 0, err
	}

	info, err := out.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
