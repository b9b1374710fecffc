package repository

import (
	"fmt"

	"github.com/zenstudio/backend/internal/model"
)

// Repository is the kind-erased view of a Collection used by callers that
// route by collection name. Records are returned as their concrete model
// type (or a slice of it) boxed in any.
type Repository interface {
	Create(f Fields) (any, error)
	List() any
	Find(id string) (any, error)
	Update(id string, patch Fields) (any, error)
	Delete(id string) error
	ToggleStatus(id string, current model.Status) (any, error)
	Status(id string) (model.Status, error)
	Len() int
}

// Open returns the repository for collection c within ds.
func Open(ds *model.Dataset, c model.Collection, opts ...Option) (Repository, error) {
	switch c {
	case model.CollectionLeads:
		return erased[model.Lead]{NewCollection(LeadSchema, &ds.Leads, opts...)}, nil
	case model.CollectionEnrollments:
		return erased[model.Enrollment]{NewCollection(EnrollmentSchema, &ds.Enrollments, opts...)}, nil
	case model.CollectionContacts:
		return erased[model.ContactMessage]{NewCollection(ContactSchema, &ds.Contacts, opts...)}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownCollection, c)
	}
}

type erased[T any] struct {
	c *Collection[T]
}

func (e erased[T]) Create(f Fields) (any, error) { return box(e.c.Create(f)) }
func (e erased[T]) List() any                    { return e.c.List() }
func (e erased[T]) Find(id string) (any, error)  { return box(e.c.Find(id)) }
func (e erased[T]) Delete(id string) error       { return e.c.Delete(id) }
func (e erased[T]) Len() int                     { return len(*e.c.items) }

func (e erased[T]) Update(id string, patch Fields) (any, error) {
	return box(e.c.Update(id, patch))
}

func (e erased[T]) ToggleStatus(id string, current model.Status) (any, error) {
	return box(e.c.ToggleStatus(id, current))
}

func (e erased[T]) Status(id string) (model.Status, error) {
	return e.c.Status(id)
}

// box drops the zero value on error so callers never encode a half-built record.
func box[T any](v T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return v, nil
}
