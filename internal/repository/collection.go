package repository

import (
	"encoding/json"
	"errors"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zenstudio/backend/internal/model"
)

// Schema describes one record kind to the generic Collection.
type Schema[T any] struct {
	Collection model.Collection
	// Required lists the fields that must be present at creation.
	Required []string
	// Build creates a record from validated fields. It returns the names of
	// fields whose values are unacceptable.
	Build func(f Fields, id string, now time.Time) (T, []string)
	ID    func(*T) string
	// Status reads the record's current status.
	Status func(*T) model.Status
	// Check validates a merged record after an update and returns offending fields.
	Check func(*T) []string
}

// Option customizes identity and clock sources.
type Option func(*options)

type options struct {
	newID func() string
	now   func() time.Time
}

// WithIDGenerator overrides identity generation (UUIDv4 by default).
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithClock overrides the creation timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(o *options) { o.now = fn }
}

func buildOptions(opts []Option) options {
	o := options{
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Collection provides typed CRUD over one collection of a loaded dataset.
// It mutates the slice it was opened on; persisting the dataset is the
// caller's job.
type Collection[T any] struct {
	schema Schema[T]
	items  *[]T
	opts   options
}

// NewCollection opens a Collection over items.
func NewCollection[T any](schema Schema[T], items *[]T, opts ...Option) *Collection[T] {
	if *items == nil {
		*items = []T{}
	}
	return &Collection[T]{schema: schema, items: items, opts: buildOptions(opts)}
}

// Create validates f, assigns identity, timestamp, defaults and initial
// status, and appends the new record.
func (c *Collection[T]) Create(f Fields) (T, error) {
	var zero T
	verr := &ValidationError{Collection: c.schema.Collection, Missing: f.missing(c.schema.Required)}
	if !verr.empty() {
		return zero, verr
	}

	rec, invalid := c.schema.Build(f, c.nextID(), c.opts.now())
	if len(invalid) > 0 {
		verr.Invalid = invalid
		return zero, verr
	}

	*c.items = append(*c.items, rec)
	return rec, nil
}

// nextID draws identities until one is unused in this collection.
func (c *Collection[T]) nextID() string {
	for {
		id := c.opts.newID()
		if c.index(id) < 0 {
			return id
		}
	}
}

// List returns all records in insertion order. The result is never nil.
func (c *Collection[T]) List() []T {
	out := make([]T, len(*c.items))
	copy(out, *c.items)
	return out
}

// Find returns the record with the given identity.
func (c *Collection[T]) Find(id string) (T, error) {
	i := c.index(id)
	if i < 0 {
		var zero T
		return zero, c.notFound(id)
	}
	return (*c.items)[i], nil
}

// Update shallow-merges patch onto the record with the given identity.
// Keys in patch win field by field; the identity itself never changes.
// Keys that are not fields of the record are rejected as invalid.
func (c *Collection[T]) Update(id string, patch Fields) (T, error) {
	var zero T
	i := c.index(id)
	if i < 0 {
		return zero, c.notFound(id)
	}

	if unknown := unknownKeys[T](patch); len(unknown) > 0 {
		return zero, &ValidationError{Collection: c.schema.Collection, Invalid: unknown}
	}
	merged, err := merge((*c.items)[i], patch)
	if err != nil {
		return zero, &ValidationError{Collection: c.schema.Collection, Invalid: []string{invalidField(err, patch)}}
	}
	if invalid := c.schema.Check(&merged); len(invalid) > 0 {
		return zero, &ValidationError{Collection: c.schema.Collection, Invalid: invalid}
	}

	(*c.items)[i] = merged
	return merged, nil
}

// Delete removes the record with the given identity.
func (c *Collection[T]) Delete(id string) error {
	i := c.index(id)
	if i < 0 {
		return c.notFound(id)
	}
	*c.items = append((*c.items)[:i], (*c.items)[i+1:]...)
	return nil
}

// ToggleStatus flips current to the other value of the collection's status
// enumeration and stores it through Update.
func (c *Collection[T]) ToggleStatus(id string, current model.Status) (T, error) {
	next := model.ToggleStatus(c.schema.Collection, current)
	return c.Update(id, Fields{"status": string(next)})
}

// Status returns the current status of the record with the given identity.
func (c *Collection[T]) Status(id string) (model.Status, error) {
	rec, err := c.Find(id)
	if err != nil {
		return "", err
	}
	return c.schema.Status(&rec), nil
}

func (c *Collection[T]) index(id string) int {
	for i := range *c.items {
		if c.schema.ID(&(*c.items)[i]) == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) notFound(id string) error {
	return &NotFoundError{Collection: c.schema.Collection, ID: id}
}

// invalidField names the patch key that failed to decode into the record.
func invalidField(err error, patch Fields) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// unknownKeys returns, sorted, the keys of patch that name no JSON field
// of T.
func unknownKeys[T any](patch Fields) []string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	known := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		known[name] = true
	}
	var unknown []string
	for k := range patch {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// merge overlays patch onto rec through their JSON representations so that
// only the named keys change.
func merge[T any](rec T, patch Fields) (T, error) {
	var zero T
	raw, err := json.Marshal(rec)
	if err != nil {
		return zero, err
	}
	base := map[string]any{}
	if err := json.Unmarshal(raw, &base); err != nil {
		return zero, err
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		base[k] = v
	}
	raw, err = json.Marshal(base)
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, err
	}
	return out, nil
}
