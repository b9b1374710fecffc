package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zenstudio/backend/internal/model"
)

// ErrNotFound is returned when a requested record does not exist in its collection.
var ErrNotFound = errors.New("not found")

// ErrUnknownCollection is returned by Open for a name outside model.Collections.
var ErrUnknownCollection = errors.New("unknown collection")

// NotFoundError names the collection and identity that were looked up.
// It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Collection model.Collection
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Collection, e.ID, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports fields that are missing at creation or carry a
// value the collection does not accept.
type ValidationError struct {
	Collection model.Collection
	Missing    []string
	Invalid    []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Collection, strings.Join(parts, "; "))
}

// Fields returns every offending field name, missing ones first.
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	return append(out, e.Invalid...)
}

func (e *ValidationError) empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}
