// Package schema holds the static field lists of every record collection.
package schema

import (
	"fmt"
	"sort"

	"github.com/dtroode/examcert-server/internal/model"
)

var registry = map[string][]string{
	model.CollectionUsers:       {"username", "password", "registered_date"},
	model.CollectionExamResults: {"username", "score", "passed", "cert_id", "date"},
}

var order = []string{model.CollectionUsers, model.CollectionExamResults}

// FieldsFor returns the ordered field names of a collection.
func FieldsFor(collection string) ([]string, error) {
	fields, ok := registry[collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownCollection, collection)
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out, nil
}

// Collections returns all known collection names in declaration order.
func Collections() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// Empty returns a record set with no records typed to the collection schema.
func Empty(collection string) (model.RecordSet, error) {
	fields, err := FieldsFor(collection)
	if err != nil {
		return model.RecordSet{}, err
	}
	return model.RecordSet{
		Collection: collection,
		Fields:     fields,
		Records:    []model.Record{},
	}, nil
}

// Conform builds a record set whose records expose every schema field.
// Missing fields are backfilled with "". Extra fields are kept and listed after the schema fields.
func Conform(collection string, records []model.Record) (model.RecordSet, error) {
	set, err := Empty(collection)
	if err != nil {
		return model.RecordSet{}, err
	}

	known := make(map[string]struct{}, len(set.Fields))
	for _, f := range set.Fields {
		known[f] = struct{}{}
	}
	var extras []string

	for _, rec := range records {
		out := make(model.Record, len(set.Fields))
		for k, v := range rec {
			out[k] = model.NormalizeValue(v)
			if _, ok := known[k]; !ok {
				known[k] = struct{}{}
				extras = append(extras, k)
			}
		}
		for _, f := range set.Fields {
			if _, ok := out[f]; !ok {
				out[f] = ""
			}
		}
		set.Records = append(set.Records, out)
	}

	sort.Strings(extras)
	set.Fields = append(set.Fields, extras...)
	return set, nil
}
