package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zenstudio/backend/internal/model"
)

const defaultFilePath = "database.json"

// FileBackend keeps the dataset in one pretty-printed JSON file.
type FileBackend struct {
	path string
}

// NewFileBackend returns a backend for the JSON file at path
// (default "database.json").
func NewFileBackend(path string) *FileBackend {
	if path == "" {
		path = defaultFilePath
	}
	return &FileBackend{path: path}
}

func (b *FileBackend) Name() string { return "file:" + b.path }

// Path returns the dataset file location.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *FileBackend) Read(_ context.Context) (*model.Dataset, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return nil, err
	}
	var ds model.Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.path, err)
	}
	return &ds, nil
}

// Write replaces the file contents. The dataset is written to a temporary
// file in the same directory and renamed over the target, so readers see
// either the old or the new dataset.
func (b *FileBackend) Write(_ context.Context, ds *model.Dataset) error {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
