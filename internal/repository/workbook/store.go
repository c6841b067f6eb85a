package workbook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/schema"
)

// ContentType is the media type of the stored document.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var (
	_ model.RecordStore = (*Store)(nil)
	_ model.Locker      = (*Store)(nil)
)

// Store keeps every collection as one sheet of a single remote workbook.
// Each write downloads the whole workbook, replaces one sheet and uploads the
// whole workbook again; nothing is cached between calls.
type Store struct {
	storage model.DocumentStorage
	path    string
	logger  *logger.Logger
}

// NewStore creates a Store for the workbook at path.
func NewStore(storage model.DocumentStorage, path string, logger *logger.Logger) *Store {
	return &Store{
		storage: storage,
		path:    path,
		logger:  logger,
	}
}

// LockKey returns the document path: all collections share one document.
func (s *Store) LockKey(string) string {
	return "document:" + s.path
}

// Read loads one sheet. A missing document or sheet yields an empty set.
func (s *Store) Read(ctx context.Context, collection string) (model.RecordSet, error) {
	if _, err := schema.FieldsFor(collection); err != nil {
		return model.RecordSet{}, model.NewStoreError("read", collection, err)
	}

	f, err := s.fetch(ctx)
	if err != nil {
		s.logger.Error("Workbook store: failed to fetch document",
			"collection", collection,
			"path", s.path,
			"error", err.Error())
		return model.RecordSet{}, model.NewStoreError("read", collection, err)
	}
	if f == nil {
		s.logger.Debug("Workbook store: document not created yet",
			"collection", collection,
			"path", s.path)
		return schema.Empty(collection)
	}
	defer f.Close()

	if !hasSheet(f, collection) {
		return schema.Empty(collection)
	}

	records, err := decodeSheet(f, collection)
	if err != nil {
		return model.RecordSet{}, model.NewStoreError("read", collection, fmt.Errorf("%w: %w", model.ErrDecode, err))
	}

	return schema.Conform(collection, records)
}

// Write replaces one sheet and uploads the full workbook.
func (s *Store) Write(ctx context.Context, collection string, records []model.Record) error {
	fields, err := schema.FieldsFor(collection)
	if err != nil {
		return model.NewStoreError("write", collection, err)
	}

	f, err := s.fetch(ctx)
	if err != nil {
		s.logger.Error("Workbook store: failed to fetch document before write",
			"collection", collection,
			"path", s.path,
			"error", err.Error())
		return model.NewStoreError("write", collection, err)
	}
	fresh := f == nil
	if fresh {
		f = excelize.NewFile()
	}
	defer f.Close()

	if err := replaceSheet(f, collection, columns(fields, records), records); err != nil {
		return model.NewStoreError("write", collection, err)
	}
	if fresh && collection != defaultSheet && hasSheet(f, defaultSheet) {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return model.NewStoreError("write", collection, fmt.Errorf("failed to drop placeholder sheet: %w", err))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return model.NewStoreError("write", collection, fmt.Errorf("failed to encode workbook: %w", err))
	}

	if err := s.storage.Upload(ctx, s.path, buf); err != nil {
		s.logger.Error("Workbook store: failed to upload document",
			"collection", collection,
			"path", s.path,
			"error", err.Error())
		return model.NewStoreError("write", collection, classify(err))
	}

	s.logger.Debug("Workbook store: collection written",
		"collection", collection,
		"records", len(records),
		"path", s.path)

	return nil
}

// fetch downloads and opens the workbook. It returns nil, nil when the document does not exist.
func (s *Store) fetch(ctx context.Context) (*excelize.File, error) {
	body, err := s.storage.Download(ctx, s.path)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, nil
		}
		return nil, classify(err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read document: %w", model.ErrTransport, err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %w", model.ErrDecode, err)
	}
	return f, nil
}

func classify(err error) error {
	if errors.Is(err, model.ErrAuth) || errors.Is(err, model.ErrTransport) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrTransport, err)
}
