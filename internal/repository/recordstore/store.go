// Package recordstore is the single entry point callers use to read and
// replace record collections, whatever backend holds them.
//
// Read and Write alone give no ordering guarantee across callers: a caller
// that reads, decides and writes back can lose a concurrent caller's write.
// Update closes that window inside one process by holding the backend lock
// from the read to the write. Separate processes sharing one backend are not
// coordinated.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/examcert-server/internal/config"
	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/repository/local"
	"github.com/dtroode/examcert-server/internal/repository/workbook"
	"github.com/dtroode/examcert-server/internal/schema"
	"github.com/dtroode/examcert-server/internal/storage/graph"
	storage "github.com/dtroode/examcert-server/internal/storage/minio"
)

var _ model.UpdatingRecordStore = (*Store)(nil)

// Store is the record store facade. The backend is fixed at construction.
type Store struct {
	backend model.RecordStore
	name    string
	timeout time.Duration
	locks   *keyedMutex
	logger  *logger.Logger
}

// New builds the backend selected by cfg and wraps it in a Store.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Store, error) {
	name := cfg.StorageBackend()

	var backend model.RecordStore
	switch name {
	case config.BackendLocal:
		s, err := local.NewStore(cfg.Storage.DataDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local store: %w", err)
		}
		backend = s
	case config.BackendGraph:
		client := graph.NewClient(graph.Options{
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
			TokenURL:     cfg.Graph.Endpoint(),
			Scope:        cfg.Graph.Scope,
			BaseURL:      cfg.Graph.BaseURL,
			DriveUser:    cfg.Graph.DriveUser,
			ContentType:  workbook.ContentType,
			Timeout:      cfg.Storage.Timeout,
		}, logger)
		backend = workbook.NewStore(client, cfg.Storage.DocumentPath, logger)
	case config.BackendMinIO:
		mc, err := miniogo.New(cfg.MinIO.Endpoint, &miniogo.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		initCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
		defer cancel()
		client, err := storage.NewClient(initCtx, mc, cfg.MinIO.Bucket, workbook.ContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize minio storage: %w", err)
		}
		backend = workbook.NewStore(client, cfg.Storage.DocumentPath, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", name)
	}

	logger.Info("Record store: backend selected",
		"backend", name)

	return NewWithBackend(backend, name, cfg.Storage.Timeout, logger), nil
}

// NewWithBackend wraps an already constructed backend.
func NewWithBackend(backend model.RecordStore, name string, timeout time.Duration, logger *logger.Logger) *Store {
	return &Store{
		backend: backend,
		name:    name,
		timeout: timeout,
		locks:   newKeyedMutex(),
		logger:  logger.With("backend", name),
	}
}

// Backend returns the name of the selected backend.
func (s *Store) Backend() string {
	return s.name
}

// Read returns the full content of a collection.
func (s *Store) Read(ctx context.Context, collection string) (model.RecordSet, error) {
	if _, err := schema.FieldsFor(collection); err != nil {
		return model.RecordSet{}, model.NewStoreError("read", collection, err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	set, err := s.backend.Read(ctx, collection)
	if err != nil {
		s.logger.Error("Record store: read failed",
			"collection", collection,
			"error", err.Error())
		var storeErr *model.StoreError
		if !errors.As(err, &storeErr) {
			err = model.NewStoreError("read", collection, err)
		}
		return model.RecordSet{}, err
	}
	if set.Recovered != nil {
		s.logger.Warn("Record store: collection recovered to empty",
			"collection", collection,
			"error", set.Recovered.Error())
	}
	return set, nil
}

// Write replaces the full content of a collection.
// Writes sharing a backend lock key are serialised.
func (s *Store) Write(ctx context.Context, collection string, records []model.Record) error {
	if _, err := schema.FieldsFor(collection); err != nil {
		return model.NewStoreError("write", collection, err)
	}

	unlock, err := s.locks.lock(ctx, s.lockKey(collection))
	if err != nil {
		return model.NewStoreError("write", collection, fmt.Errorf("waiting for lock: %w", err))
	}
	defer unlock()

	return s.write(ctx, collection, records)
}

// Update runs read, fn and write while holding the collection's lock.
func (s *Store) Update(ctx context.Context, collection string, fn model.UpdateFunc) error {
	if _, err := schema.FieldsFor(collection); err != nil {
		return model.NewStoreError("write", collection, err)
	}

	unlock, err := s.locks.lock(ctx, s.lockKey(collection))
	if err != nil {
		return model.NewStoreError("write", collection, fmt.Errorf("waiting for lock: %w", err))
	}
	defer unlock()

	current, err := s.Read(ctx, collection)
	if err != nil {
		return err
	}

	records, err := fn(current)
	if err != nil {
		return err
	}

	return s.write(ctx, collection, records)
}

func (s *Store) write(ctx context.Context, collection string, records []model.Record) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	if err := s.backend.Write(ctx, collection, records); err != nil {
		s.logger.Error("Record store: write failed",
			"collection", collection,
			"error", err.Error())
		var storeErr *model.StoreError
		if !errors.As(err, &storeErr) {
			err = model.NewStoreError("write", collection, err)
		}
		return err
	}

	s.logger.Info("Record store: collection written",
		"collection", collection,
		"records", len(records),
		"duration_ms", time.Since(start).Milliseconds())

	return nil
}

func (s *Store) lockKey(collection string) string {
	if l, ok := s.backend.(model.Locker); ok {
		return l.LockKey(collection)
	}
	return collection
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
