package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zenstudio/backend/internal/model"
)

// Snapshot is one consistent read of every collection.
type Snapshot struct {
	Leads       []model.Lead
	Enrollments []model.Enrollment
	Contacts    []model.ContactMessage
}

// EmptySnapshot has three empty collections.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Leads:       []model.Lead{},
		Enrollments: []model.Enrollment{},
		Contacts:    []model.ContactMessage{},
	}
}

// Stats derives the dashboard figures.
func (s Snapshot) Stats() model.Stats {
	return model.ComputeStats(s.Leads, s.Enrollments, s.Contacts)
}

// LoadAll fetches the three collections concurrently. Any fetch that
// exhausts its retries fails the whole load. A response that is not a JSON
// array is treated as an empty collection.
func (c *Client) LoadAll(ctx context.Context) (Snapshot, error) {
	snap := EmptySnapshot()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return loadInto(ctx, c, model.CollectionLeads, &snap.Leads) })
	g.Go(func() error { return loadInto(ctx, c, model.CollectionEnrollments, &snap.Enrollments) })
	g.Go(func() error { return loadInto(ctx, c, model.CollectionContacts, &snap.Contacts) })

	if err := g.Wait(); err != nil {
		return EmptySnapshot(), err
	}
	return snap, nil
}

func loadInto[T any](ctx context.Context, c *Client, coll model.Collection, dst *[]T) error {
	raw, err := c.FetchWithRetry(ctx, "/api/"+string(coll))
	if err != nil {
		return err
	}
	*dst = coerceArray[T](raw)
	return nil
}

// coerceArray decodes raw as a JSON array of T. Anything else, including
// null, yields an empty slice.
func coerceArray[T any](raw json.RawMessage) []T {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []T{}
	}
	return items
}

// ErrAmbiguousID is returned by Resolve when a prefix matches several records.
var ErrAmbiguousID = errors.New("ambiguous id prefix")

// ErrUnknownID is returned by Resolve when nothing matches.
var ErrUnknownID = errors.New("no record with that id")

// Resolve finds the record of c whose identity equals ref or, failing
// that, is the only one starting with ref. It returns the full identity
// and the record's current status.
func (s Snapshot) Resolve(c model.Collection, ref string) (string, model.Status, error) {
	type entry struct {
		id     string
		status model.Status
	}
	var entries []entry
	switch c {
	case model.CollectionLeads:
		for _, l := range s.Leads {
			entries = append(entries, entry{l.ID, l.Status})
		}
	case model.CollectionEnrollments:
		for _, e := range s.Enrollments {
			entries = append(entries, entry{e.ID, e.Status})
		}
	case model.CollectionContacts:
		for _, m := range s.Contacts {
			entries = append(entries, entry{m.ID, m.Status})
		}
	}

	for _, e := range entries {
		if e.id == ref {
			return e.id, e.status, nil
		}
	}

	var match *entry
	for i := range entries {
		if ref != "" && strings.HasPrefix(entries[i].id, ref) {
			if match != nil {
				return "", "", fmt.Errorf("%w %q in %s", ErrAmbiguousID, ref, c)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return "", "", fmt.Errorf("%w %q in %s", ErrUnknownID, ref, c)
	}
	return match.id, match.status, nil
}
