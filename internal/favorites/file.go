package favorites

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// FileStore keeps the list in <dir>/<key>.json.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore returns a store for key inside dir. An empty key uses
// types.DefaultFavoritesKey.
func NewFileStore(dir, key string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: filepath.Join(dir, keyOrDefault(key)+".json"), logger: logger}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string { return s.path }

// Close is a no-op for files.
func (s *FileStore) Close() error { return nil }

// Load reads the list. A missing file is an empty list.
func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return decode(data, s.path, s.logger), nil
}

// Save replaces the list. The file is written to a temporary sibling,
// synced and renamed into place.
func (s *FileStore) Save(ctx context.Context, ids []string) error {
	data, err := encode(ids)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating favorites dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".favorites-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing favorites: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing favorites: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing favorites: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("renaming favorites: %w", err)
	}
	return nil
}
