package model

import (
	"context"
)

// Collection names known to the schema registry.
const (
	CollectionUsers       = "Users"
	CollectionExamResults = "ExamResults"
)

// Record is one row of a collection keyed by field name.
// Values are string, int, bool or float64.
type Record map[string]any

// String returns the text form of a field, or "" when absent.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return FormatValue(v)
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// RecordSet is the full content of a collection as loaded from a backend.
type RecordSet struct {
	Collection string
	// Fields lists schema fields first, then any extra persisted fields.
	Fields  []string
	Records []Record
	// Recovered is set when corrupt persisted data was replaced by an empty set.
	Recovered error
}

// Len returns the number of records.
func (s RecordSet) Len() int {
	return len(s.Records)
}

// RecordStore reads and fully replaces named collections.
type RecordStore interface {
	Read(ctx context.Context, collection string) (RecordSet, error)
	Write(ctx context.Context, collection string, records []Record) error
}

// Locker is implemented by backends whose collections share one physical resource.
// Collections with equal lock keys must not be written concurrently.
type Locker interface {
	LockKey(collection string) string
}

// UpdateFunc receives the current content of a collection and returns its replacement.
// Returning an error aborts the update without writing.
type UpdateFunc func(current RecordSet) ([]Record, error)

// UpdatingRecordStore can run a read-modify-write cycle that no other writer
// sharing the store interleaves with.
type UpdatingRecordStore interface {
	RecordStore
	Update(ctx context.Context, collection string, fn UpdateFunc) error
}
