package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chartmuseum/storage"
)

// LocalClient implements ObjectStorage on the local filesystem.
type LocalClient struct {
	root    string
	backend storage.Backend
}

// NewLocalClient stores objects as files below root.
func NewLocalClient(root string) (*LocalClient, error) {
	if root == "" {
		return nil, fmt.Errorf("local storage root must be provided")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating storage root %s: %w", root, err)
	}
	return &LocalClient{root: root, backend: storage.NewLocalFilesystemBackend(root)}, nil
}

// ListObjects lists all objects for a given prefix.
func (c *LocalClient) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects, err := c.backend.ListObjects(prefix)
	if err != nil {
		return nil, fmt.Errorf("local list failed: %w", err)
	}
	results := make([]ObjectInfo, 0, len(objects))
	for _, object := range objects {
		key := filepath.ToSlash(filepath.Join(prefix, object.Path))
		// listings carry no content, so size comes from the file itself
		var size int64
		if info, err := os.Stat(filepath.Join(c.root, filepath.FromSlash(key))); err == nil {
			size = info.Size()
		}
		results = append(results, ObjectInfo{
			Key:          key,
			Size:         size,
			LastModified: object.LastModified,
		})
	}
	return results, nil
}

func (c *LocalClient) GetObject(ctx context.Context, key string) ([]byte, error) {
	object, err := c.backend.GetObject(key)
	if err != nil {
		return nil, fmt.Errorf("local get %s failed: %w", key, err)
	}
	return object.Content, nil
}

// DownloadObject copies an object to the provided destination path.
func (c *LocalClient) DownloadObject(ctx context.Context, key, destPath string) error {
	data, err := c.GetObject(ctx, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", destPath, err)
	}
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return fmt.Errorf("failed writing %s: %w", destPath, err)
	}
	return nil
}

func (c *LocalClient) UploadObject(ctx context.Context, key string, data []byte, contentType string) error {
	if err := c.backend.PutObject(key, data); err != nil {
		return fmt.Errorf("local upload %s failed: %w", key, err)
	}
	return nil
}

var _ ObjectStorage = (*LocalClient)(nil)
