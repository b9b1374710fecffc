package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zenstudio/backend/internal/metrics"
	"github.com/zenstudio/backend/internal/model"
)

// Backend persists the raw dataset. Implementations exist for a JSON file,
// SQLite, Postgres and Redis. A Backend does no locking of its own.
type Backend interface {
	// Name identifies the backend and its location, e.g. "file:database.json".
	Name() string
	// Exists reports whether a dataset has ever been written.
	Exists(ctx context.Context) (bool, error)
	Read(ctx context.Context) (*model.Dataset, error)
	Write(ctx context.Context, ds *model.Dataset) error
	Close() error
}

// StorageError reports a failed read or write against a backend.
type StorageError struct {
	Op      string // "init" | "read" | "write"
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Store holds the whole dataset and loads or saves it as a single unit.
// Concurrent load-modify-save cycles against one Store race with each other
// (last save wins); callers that mutate must coordinate.
type Store struct {
	backend Backend
	metrics *metrics.Metrics
}

// New wraps a backend. m may be nil.
func New(backend Backend, m *metrics.Metrics) *Store {
	return &Store{backend: backend, metrics: m}
}

// Init writes an empty dataset if none exists yet. It never overwrites
// existing data, so calling it on every boot is safe.
func (s *Store) Init(ctx context.Context) error {
	exists, err := s.backend.Exists(ctx)
	if err != nil {
		return &StorageError{Op: "init", Backend: s.backend.Name(), Err: err}
	}
	if exists {
		slog.Info("dataset found", "backend", s.backend.Name())
		return nil
	}
	slog.Info("creating empty dataset", "backend", s.backend.Name())
	if err := s.backend.Write(ctx, model.NewDataset()); err != nil {
		return &StorageError{Op: "init", Backend: s.backend.Name(), Err: err}
	}
	return nil
}

// Load returns the full dataset. A read or decode failure is logged and
// counted, and an empty dataset is returned instead; Load never fails the
// caller.
func (s *Store) Load(ctx context.Context) *model.Dataset {
	ds, err := s.backend.Read(ctx)
	if err != nil {
		slog.Error("dataset read failed, serving empty dataset",
			"error", &StorageError{Op: "read", Backend: s.backend.Name(), Err: err})
		s.metrics.IncrementReadFailures()
		return model.NewDataset()
	}
	ds.Normalize()
	return ds
}

// Snapshot reads the dataset like Load but reports failures instead of
// degrading to an empty dataset.
func (s *Store) Snapshot(ctx context.Context) (*model.Dataset, error) {
	ds, err := s.backend.Read(ctx)
	if err != nil {
		return nil, &StorageError{Op: "read", Backend: s.backend.Name(), Err: err}
	}
	ds.Normalize()
	return ds, nil
}

// Exists reports whether the backend holds a dataset.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	return s.backend.Exists(ctx)
}

// Save replaces the persisted dataset with ds.
func (s *Store) Save(ctx context.Context, ds *model.Dataset) error {
	defer s.metrics.ObserveSave(time.Now())
	ds.Normalize()
	if err := s.backend.Write(ctx, ds); err != nil {
		return &StorageError{Op: "write", Backend: s.backend.Name(), Err: err}
	}
	return nil
}

// Location describes where the dataset lives.
func (s *Store) Location() string { return s.backend.Name() }

// Close releases the backend.
func (s *Store) Close() error { return s.backend.Close() }

// Config selects and locates a backend.
type Config struct {
	Driver      string // file | sqlite | postgres | redis
	Path        string
	SQLitePath  string
	PostgresURL string
	RedisURL    string
	RedisPrefix string
}

// Open builds the Store described by cfg.
func Open(ctx context.Context, cfg Config, m *metrics.Metrics) (*Store, error) {
	var (
		backend Backend
		err     error
	)
	switch cfg.Driver {
	case "", "file":
		backend = NewFileBackend(cfg.Path)
	case "sqlite":
		backend, err = NewSQLiteBackend(ctx, cfg.SQLitePath)
	case "postgres":
		backend, err = NewPostgresBackend(ctx, cfg.PostgresURL)
	case "redis":
		backend, err = NewRedisBackend(ctx, cfg.RedisURL, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Driver, err)
	}
	return New(backend, m), nil
}
