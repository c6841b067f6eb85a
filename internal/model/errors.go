package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by document storages when the addressed document does not exist yet.
	ErrNotFound = errors.New("not found")
	// ErrUnknownCollection is returned for a collection name outside the schema registry.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrAuth is returned when the identity provider rejects or cannot issue credentials.
	ErrAuth = errors.New("authentication failed")
	// ErrTransport covers network, storage and filesystem failures other than not found.
	ErrTransport = errors.New("transport failure")
	// ErrDecode is returned when persisted data cannot be parsed.
	ErrDecode = errors.New("malformed persisted data")
)

// StoreError describes a failed record store operation on a collection.
type StoreError struct {
	Op         string // "read" or "write"
	Collection string
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Collection, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op, collection string, err error) *StoreError {
	return &StoreError{
		Op:         op,
		Collection: collection,
		Err:        err,
	}
}
