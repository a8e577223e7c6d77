package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// FileStore keeps the cache as a pretty-printed JSON file.
type FileStore struct {
	path string
	log  *slog.Logger
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string, log *slog.Logger) *FileStore {
	return &FileStore{path: path, log: log}
}

// Path returns the location of the cache file.
func (fst *FileStore) Path() string {
	return fst.path
}

// Load reads the cache file. A missing file yields an empty cache;
// a file that cannot be decoded is an error so it is never silently overwritten.
func (fst *FileStore) Load(ctx context.Context) (*Cache, error) {
	data, err := os.ReadFile(fst.path)
	if errors.Is(err, os.ErrNotExist) {
		fst.log.InfoContext(ctx, "Cache file not found, creating new cache", "path", fst.path)
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	cache := New()
	if err = json.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to load cache file %s: %w", fst.path, err)
	}

	fst.log.DebugContext(ctx, "Cache loaded", "path", fst.path, "entries", cache.Len())

	return cache, nil
}

// Save overwrites the cache file with the full contents of c.
func (fst *FileStore) Save(ctx context.Context, c *Cache) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(fst.path), dirPerm); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err = os.WriteFile(fst.path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	fst.log.InfoContext(ctx, "Cache saved", "path", fst.path, "entries", c.Len())

	return nil
}

