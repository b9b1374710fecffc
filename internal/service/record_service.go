package service

import (
	"context"

	"github.com/zenstudio/backend/internal/model"
	"github.com/zenstudio/backend/internal/repository"
)

// DatasetStore loads and saves the whole dataset. *storage.Store satisfies it.
// Load degrades to an empty dataset on a read failure and serves listings;
// Snapshot reports the failure and feeds mutations, which must never save
// an empty dataset over data they could not read.
type DatasetStore interface {
	Load(ctx context.Context) *model.Dataset
	Snapshot(ctx context.Context) (*model.Dataset, error)
	Save(ctx context.Context, ds *model.Dataset) error
}

// RecordService defines CRUD over the three record collections. Records are
// returned as their concrete model type boxed in any.
type RecordService interface {
	// List returns every record of c in insertion order, never nil.
	List(ctx context.Context, c model.Collection) (any, error)

	// Create validates fields, assigns identity, timestamp, defaults and
	// initial status, and persists the new record.
	Create(ctx context.Context, c model.Collection, fields repository.Fields) (any, error)

	// Update shallow-merges patch onto the record and persists it.
	Update(ctx context.Context, c model.Collection, id string, patch repository.Fields) (any, error)

	// Delete removes the record and persists the collection.
	Delete(ctx context.Context, c model.Collection, id string) error

	// ToggleStatus flips the record's status to the other value of its
	// collection's enumeration.
	ToggleStatus(ctx context.Context, c model.Collection, id string) (any, error)
}
