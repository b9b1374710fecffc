package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/zenstudio/backend/internal/metrics"
	"github.com/zenstudio/backend/internal/model"
	"github.com/zenstudio/backend/internal/repository"
)

// recordServiceImpl is the production implementation of RecordService.
// mu serializes every load-mutate-save cycle so concurrent mutations never
// save over each other's snapshot. Reads take no lock.
type recordServiceImpl struct {
	mu      sync.Mutex
	store   DatasetStore
	metrics *metrics.Metrics
	opts    []repository.Option
}

// NewRecordService creates a RecordService over store. m may be nil; opts
// are passed to every repository the service opens.
func NewRecordService(store DatasetStore, m *metrics.Metrics, opts ...repository.Option) RecordService {
	return &recordServiceImpl{store: store, metrics: m, opts: opts}
}

func (s *recordServiceImpl) List(ctx context.Context, c model.Collection) (any, error) {
	repo, err := repository.Open(s.store.Load(ctx), c, s.opts...)
	if err != nil {
		return nil, err
	}
	return repo.List(), nil
}

func (s *recordServiceImpl) Create(ctx context.Context, c model.Collection, fields repository.Fields) (any, error) {
	rec, err := s.mutate(ctx, c, func(repo repository.Repository) (any, error) {
		return repo.Create(fields)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementCreated(string(c))
	return rec, nil
}

func (s *recordServiceImpl) Update(ctx context.Context, c model.Collection, id string, patch repository.Fields) (any, error) {
	rec, err := s.mutate(ctx, c, func(repo repository.Repository) (any, error) {
		return repo.Update(id, patch)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementUpdated(string(c))
	return rec, nil
}

func (s *recordServiceImpl) Delete(ctx context.Context, c model.Collection, id string) error {
	_, err := s.mutate(ctx, c, func(repo repository.Repository) (any, error) {
		return nil, repo.Delete(id)
	})
	if err != nil {
		return err
	}
	s.metrics.IncrementDeleted(string(c))
	return nil
}

func (s *recordServiceImpl) ToggleStatus(ctx context.Context, c model.Collection, id string) (any, error) {
	rec, err := s.mutate(ctx, c, func(repo repository.Repository) (any, error) {
		current, err := repo.Status(id)
		if err != nil {
			return nil, err
		}
		return repo.ToggleStatus(id, current)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncrementUpdated(string(c))
	return rec, nil
}

// mutate runs fn against a freshly loaded dataset and saves it only when fn
// succeeds. A failed fn leaves persisted state untouched.
func (s *recordServiceImpl) mutate(ctx context.Context, c model.Collection, fn func(repository.Repository) (any, error)) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", c, err)
	}
	repo, err := repository.Open(ds, c, s.opts...)
	if err != nil {
		return nil, err
	}
	rec, err := fn(repo)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, ds); err != nil {
		return nil, fmt.Errorf("save %s: %w", c, err)
	}
	return rec, nil
}
