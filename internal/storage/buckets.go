package storage

import (
	"encoding/json"
	"fmt"

	"github.com/zenstudio/backend/internal/model"
)

// Bucketed backends (SQLite, Postgres, Redis) store each collection as one
// JSON array under its collection name.

func encodeBuckets(ds *model.Dataset) (map[model.Collection][]byte, error) {
	values := map[model.Collection]any{
		model.CollectionLeads:       ds.Leads,
		model.CollectionEnrollments: ds.Enrollments,
		model.CollectionContacts:    ds.Contacts,
	}
	out := make(map[model.Collection][]byte, len(values))
	for _, c := range model.Collections {
		data, err := json.Marshal(values[c])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", c, err)
		}
		out[c] = data
	}
	return out, nil
}

// decodeBucket fills the collection named bucket. Unknown buckets are ignored.
func decodeBucket(ds *model.Dataset, bucket string, payload []byte) error {
	var target any
	switch model.Collection(bucket) {
	case model.CollectionLeads:
		target = &ds.Leads
	case model.CollectionEnrollments:
		target = &ds.Enrollments
	case model.CollectionContacts:
		target = &ds.Contacts
	default:
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
