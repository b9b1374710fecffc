package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/zenstudio/backend/internal/metrics"
	"github.com/zenstudio/backend/internal/model"
	"github.com/zenstudio/backend/internal/repository"
	"github.com/zenstudio/backend/internal/storage"
)

// ---------------------------------------------------------------------------
// memStore
// ---------------------------------------------------------------------------

// memStore hands out a fresh copy on every Load, the way a real backend
// does, so interleaved cycles would lose updates without the service lock.
type memStore struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
}

func newMemStore(t *testing.T) *memStore {
	t.Helper()
	data, err := json.Marshal(model.NewDataset())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &memStore{data: data}
}

func (m *memStore) Load(_ context.Context) *model.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ds model.Dataset
	if err := json.Unmarshal(m.data, &ds); err != nil {
		return model.NewDataset()
	}
	ds.Normalize()
	return &ds
}

func (m *memStore) Snapshot(ctx context.Context) (*model.Dataset, error) {
	return m.Load(ctx), nil
}

func (m *memStore) Save(_ context.Context, ds *model.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := json.Marshal(ds)
	if err != nil {
		return err
	}
	m.data = data
	return nil
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func enrollmentFields() repository.Fields {
	return repository.Fields{
		"nome":     "Ana",
		"email":    "a@x.com",
		"telefone": "11999999999",
		"plano":    "premium",
	}
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestRecordService_Create_PersistsRecord(t *testing.T) {
	store := newMemStore(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := NewRecordService(store, m)

	rec, err := svc.Create(context.Background(), model.CollectionEnrollments, enrollmentFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e, ok := rec.(model.Enrollment)
	if !ok {
		t.Fatalf("expected model.Enrollment, got %T", rec)
	}
	if e.Status != model.EnrollmentActive {
		t.Errorf("expected status=%q, got %q", model.EnrollmentActive, e.Status)
	}

	list, err := svc.List(context.Background(), model.CollectionEnrollments)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := list.([]model.Enrollment); len(got) != 1 || got[0].ID != e.ID {
		t.Errorf("expected persisted enrollment %s, got %+v", e.ID, got)
	}
	if got := testutil.ToFloat64(m.RecordsCreated.WithLabelValues("matriculas")); got != 1 {
		t.Errorf("expected created counter 1, got %v", got)
	}
}

func TestRecordService_Create_ValidationSkipsSave(t *testing.T) {
	store := newMemStore(t)
	svc := NewRecordService(store, nil)

	_, err := svc.Create(context.Background(), model.CollectionLeads, repository.Fields{"nome": "Ana"})

	var verr *repository.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if store.saveCount() != 0 {
		t.Errorf("expected no Save on validation failure, got %d", store.saveCount())
	}
}

func TestRecordService_Create_SaveFailure(t *testing.T) {
	store := newMemStore(t)
	store.saveErr = errors.New("disk full")
	svc := NewRecordService(store, nil)

	rec, err := svc.Create(context.Background(), model.CollectionLeads, repository.Fields{
		"nome": "Ana", "email": "a@x.com", "telefone": "1",
	})
	if err == nil {
		t.Fatal("expected error when save fails")
	}
	if rec != nil {
		t.Errorf("expected no record on failed save, got %+v", rec)
	}
	if !errors.Is(err, store.saveErr) {
		t.Errorf("expected wrapped save error, got %v", err)
	}
}

func TestRecordService_UnknownCollection(t *testing.T) {
	svc := NewRecordService(newMemStore(t), nil)

	if _, err := svc.List(context.Background(), "alunos"); !errors.Is(err, repository.ErrUnknownCollection) {
		t.Errorf("List: expected ErrUnknownCollection, got %v", err)
	}
	if err := svc.Delete(context.Background(), "alunos", "1"); !errors.Is(err, repository.ErrUnknownCollection) {
		t.Errorf("Delete: expected ErrUnknownCollection, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// Update / Delete / ToggleStatus tests
// ---------------------------------------------------------------------------

func TestRecordService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	svc := NewRecordService(store, nil)

	rec, err := svc.Create(ctx, model.CollectionEnrollments, enrollmentFields())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := rec.(model.Enrollment).ID

	updated, err := svc.Update(ctx, model.CollectionEnrollments, id, repository.Fields{"status": "inativa"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s := updated.(model.Enrollment).Status; s != model.EnrollmentInactive {
		t.Errorf("expected inativa, got %q", s)
	}

	toggled, err := svc.ToggleStatus(ctx, model.CollectionEnrollments, id)
	if err != nil {
		t.Fatalf("ToggleStatus: %v", err)
	}
	if s := toggled.(model.Enrollment).Status; s != model.EnrollmentActive {
		t.Errorf("expected ativa after toggle, got %q", s)
	}

	if err := svc.Delete(ctx, model.CollectionEnrollments, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ := svc.List(ctx, model.CollectionEnrollments)
	if got := list.([]model.Enrollment); len(got) != 0 {
		t.Errorf("expected empty collection, got %d records", len(got))
	}
}

func TestRecordService_NotFoundSkipsSave(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(t)
	svc := NewRecordService(store, nil)

	if _, err := svc.Update(ctx, model.CollectionContacts, "missing", repository.Fields{"status": "Respondido"}); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Update: expected ErrNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, model.CollectionContacts, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Delete: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.ToggleStatus(ctx, model.CollectionContacts, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("ToggleStatus: expected ErrNotFound, got %v", err)
	}
	if store.saveCount() != 0 {
		t.Errorf("expected no saves, got %d", store.saveCount())
	}
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func TestRecordService_ConcurrentCreatesAllPersist(t *testing.T) {
	const n = 50
	store := newMemStore(t)
	svc := NewRecordService(store, nil)

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), model.CollectionLeads, repository.Fields{
				"nome":     fmt.Sprintf("lead-%d", i),
				"email":    fmt.Sprintf("lead%d@x.com", i),
				"telefone": "11999999999",
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, _ := svc.List(context.Background(), model.CollectionLeads)
	leads := list.([]model.Lead)
	if len(leads) != n {
		t.Fatalf("expected %d leads, got %d", n, len(leads))
	}
	seen := make(map[string]bool, n)
	for _, l := range leads {
		if seen[l.ID] {
			t.Errorf("duplicate id %s", l.ID)
		}
		seen[l.ID] = true
	}
}

// flakyBackend fails the next failReads reads, then behaves like the
// wrapped backend.
type flakyBackend struct {
	storage.Backend
	mu        sync.Mutex
	failReads int
}

func (b *flakyBackend) failNextRead() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failReads = 1
}

func (b *flakyBackend) Read(ctx context.Context) (*model.Dataset, error) {
	b.mu.Lock()
	fail := b.failReads > 0
	if fail {
		b.failReads--
	}
	b.mu.Unlock()
	if fail {
		return nil, errors.New("connection reset by peer")
	}
	return b.Backend.Read(ctx)
}

func TestRecordService_ReadFailureNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{Backend: storage.NewFileBackend(filepath.Join(t.TempDir(), "database.json"))}
	store := storage.New(backend, nil)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	svc := NewRecordService(store, nil)

	for _, name := range []string{"Ana", "Bia"} {
		if _, err := svc.Create(ctx, model.CollectionLeads, repository.Fields{
			"nome": name, "email": name + "@x.com", "telefone": "11999999999",
		}); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
	}

	backend.failNextRead()
	_, err := svc.Create(ctx, model.CollectionContacts, repository.Fields{
		"nome": "Caio", "email": "caio@x.com", "mensagem": "Oi",
	})
	var serr *storage.StorageError
	if !errors.As(err, &serr) || serr.Op != "read" {
		t.Fatalf("expected a read StorageError, got %v", err)
	}

	got, err := svc.List(ctx, model.CollectionLeads)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if leads := got.([]model.Lead); len(leads) != 2 {
		t.Errorf("expected the 2 stored leads to survive, got %d", len(leads))
	}
	contacts, _ := svc.List(ctx, model.CollectionContacts)
	if n := len(contacts.([]model.ContactMessage)); n != 0 {
		t.Errorf("failed create must not persist a contact, got %d", n)
	}

	// Listings stay fail-soft.
	backend.failNextRead()
	got, err = svc.List(ctx, model.CollectionLeads)
	if err != nil {
		t.Fatalf("list during read failure: %v", err)
	}
	if leads := got.([]model.Lead); len(leads) != 0 {
		t.Errorf("expected an empty listing while reads fail, got %d", len(leads))
	}
}
