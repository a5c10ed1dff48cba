// Package assembly correlates independently fetched record sets into the
// ordered, aggregated view models printed on school documents. Everything in
// this package operates on already-fetched snapshots and performs no I/O.
package assembly

import (
	"errors"
	"fmt"
)

// ErrMissingKey marks a record that cannot be indexed because its key is empty.
var ErrMissingKey = errors.New("record key missing")

// IndexError reports a malformed record found while building an index.
type IndexError struct {
	Entity   string
	Position int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %s: record %d: %v", e.Entity, e.Position, ErrMissingKey)
}

// Unwrap exposes ErrMissingKey to errors.Is.
func (e *IndexError) Unwrap() error {
	return ErrMissingKey
}

// Index is an O(1) lookup over records of one entity type.
type Index[T any] struct {
	entity string
	byKey  map[string]*T
}

// BuildIndex maps every record by the selected key. Duplicate keys are
// last-write-wins.
func BuildIndex[T any](entity string, records []T, key func(T) string) (*Index[T], error) {
	idx := &Index[T]{entity: entity, byKey: make(map[string]*T, len(records))}
	for i := range records {
		rec := records[i]
		k := key(rec)
		if k == "" {
			return nil, &IndexError{Entity: entity, Position: i}
		}
		idx.byKey[k] = &rec
	}
	return idx, nil
}

// Entity names the indexed record type.
func (i *Index[T]) Entity() string {
	if i == nil {
		return ""
	}
	return i.entity
}

// Len returns the number of distinct keys.
func (i *Index[T]) Len() int {
	if i == nil {
		return 0
	}
	return len(i.byKey)
}

// Get returns the record for key.
func (i *Index[T]) Get(key string) (*T, bool) {
	if i == nil || key == "" {
		return nil, false
	}
	rec, ok := i.byKey[key]
	return rec, ok
}

// Lookup resolves an optional foreign key; nil when the key or the record is absent.
func (i *Index[T]) Lookup(key *string) *T {
	if key == nil {
		return nil
	}
	rec, _ := i.Get(*key)
	return rec
}

// GroupBy buckets records by key, keeping input order inside each bucket.
// Records with an empty key are dropped.
func GroupBy[T any](records []T, key func(T) string) map[string][]T {
	groups := make(map[string][]T)
	for _, rec := range records {
		k := key(rec)
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], rec)
	}
	return groups
}
