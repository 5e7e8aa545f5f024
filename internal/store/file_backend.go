package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend stores each key as a JSON file under a data directory.
// Writes go to a temp file first and rename into place so a crash never
// leaves a half-written collection.
type FileBackend struct {
	dir string
}

func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &FileBackend{dir: dir}, nil
}

func (backend *FileBackend) path(key string) string {
	return filepath.Join(backend.dir, key+".json")
}

func (backend *FileBackend) Read(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(backend.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (backend *FileBackend) Write(_ context.Context, key string, data []byte) error {
	target := backend.path(key)

	tmp, err := os.CreateTemp(backend.dir, key+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func (backend *FileBackend) Close() error {
	return nil
}
