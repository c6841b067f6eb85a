package testutil

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/dtroode/examcert-server/internal/model"
)

var _ model.DocumentStorage = (*MemoryDocuments)(nil)

// MemoryDocuments is an in-memory DocumentStorage for tests.
type MemoryDocuments struct {
	mu        sync.Mutex
	docs      map[string][]byte
	Uploads   int
	Downloads int

	// Injected failures, returned before touching the stored documents.
	DownloadErr error
	UploadErr   error
}

// NewMemoryDocuments creates an empty MemoryDocuments.
func NewMemoryDocuments() *MemoryDocuments {
	return &MemoryDocuments{docs: make(map[string][]byte)}
}

func (m *MemoryDocuments) Upload(_ context.Context, key string, reader io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return m.UploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.docs[key] = data
	m.Uploads++
	return nil
}

func (m *MemoryDocuments) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	m.Downloads++
	data, ok := m.docs[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(data))), nil
}

// Put stores raw document bytes.
func (m *MemoryDocuments) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = bytes.Clone(data)
}

// Get returns raw document bytes.
func (m *MemoryDocuments) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	return bytes.Clone(data), ok
}
