package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/themagicbeanstock/backend-go/internal/config"
)

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage captures the S3-style operations used to archive uploads
// and publish exports.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObject(ctx context.Context, key string) ([]byte, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte, contentType string) error
}

// New returns the S3 client when remote storage is enabled, otherwise a
// filesystem store rooted under dataDir.
func New(cfg config.StorageConfig, dataDir string) (ObjectStorage, error) {
	if cfg.Enabled {
		return NewS3Client(cfg)
	}
	return NewLocalClient(filepath.Join(dataDir, "objects"))
}

// ArchiveKey builds the object key for a raw upload.
func ArchiveKey(prefix, accountID, kind, filename string, at time.Time) string {
	name := filepath.Base(strings.TrimSpace(filename))
	return path.Join(
		strings.Trim(prefix, "/"),
		sanitize(accountID),
		kind,
		fmt.Sprintf("%s_%s", at.UTC().Format("20060102T150405Z"), sanitize(name)),
	)
}

// ExportKey builds the object key for a generated order-plan export.
func ExportKey(prefix, accountID, date string) string {
	return path.Join(strings.Trim(prefix, "/"), sanitize(accountID), "exports", "order_plan_"+sanitize(date)+".csv")
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, s)
}
