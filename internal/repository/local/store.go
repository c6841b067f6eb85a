package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/schema"
)

var _ model.RecordStore = (*Store)(nil)

// Store keeps each collection as a JSON array in its own file.
//
// Layout:
//
//	data_dir/
//	  Users.json
//	  ExamResults.json
type Store struct {
	dir    string
	logger *logger.Logger
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string, logger *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) collectionPath(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// LockKey keys locks per collection since every collection has its own file.
func (s *Store) LockKey(collection string) string {
	return "local:" + collection
}

// Read loads a collection. A missing file yields an empty set; a corrupt file
// yields an empty set with Recovered set.
func (s *Store) Read(ctx context.Context, collection string) (model.RecordSet, error) {
	if _, err := schema.FieldsFor(collection); err != nil {
		return model.RecordSet{}, model.NewStoreError("read", collection, err)
	}
	if err := ctx.Err(); err != nil {
		return model.RecordSet{}, model.NewStoreError("read", collection, fmt.Errorf("%w: %w", model.ErrTransport, err))
	}

	path := s.collectionPath(collection)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return schema.Empty(collection)
		}
		return model.RecordSet{}, model.NewStoreError("read", collection, fmt.Errorf("%w: %w", model.ErrTransport, err))
	}

	records, err := decodeRecords(data)
	if err != nil {
		recovered := model.NewStoreError("read", collection, fmt.Errorf("%w: %w", model.ErrDecode, err))
		s.logger.Warn("Local store: corrupt collection file replaced by empty set",
			"collection", collection,
			"path", path,
			"error", err.Error())

		set, emptyErr := schema.Empty(collection)
		if emptyErr != nil {
			return model.RecordSet{}, emptyErr
		}
		set.Recovered = recovered
		return set, nil
	}

	return schema.Conform(collection, records)
}

// Write fully replaces a collection file. The new content is written to a
// temporary file and renamed over the target. A target that does not decode is
// kept under a .corrupt-* name instead of being overwritten.
func (s *Store) Write(ctx context.Context, collection string, records []model.Record) error {
	if _, err := schema.FieldsFor(collection); err != nil {
		return model.NewStoreError("write", collection, err)
	}
	if err := ctx.Err(); err != nil {
		return model.NewStoreError("write", collection, fmt.Errorf("%w: %w", model.ErrTransport, err))
	}

	data, err := encodeRecords(records)
	if err != nil {
		return model.NewStoreError("write", collection, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return model.NewStoreError("write", collection, fmt.Errorf("%w: %w", model.ErrTransport, err))
	}
	path := s.collectionPath(collection)
	if err := s.setAsideCorrupt(collection, path); err != nil {
		return model.NewStoreError("write", collection, fmt.Errorf("%w: %w", model.ErrTransport, err))
	}
	if err := writeFileAtomic(path, data); err != nil {
		return model.NewStoreError("write", collection, fmt.Errorf("%w: %w", model.ErrTransport, err))
	}

	s.logger.Debug("Local store: collection written",
		"collection", collection,
		"records", len(records))

	return nil
}

// setAsideCorrupt renames an undecodable collection file to
// <name>.corrupt-<unix nanos> so a write never destroys it.
func (s *Store) setAsideCorrupt(collection, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if _, err := decodeRecords(data); err == nil {
		return nil
	}

	aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().UnixNano())
	if err := os.Rename(path, aside); err != nil {
		return fmt.Errorf("failed to set aside corrupt file: %w", err)
	}
	s.logger.Warn("Local store: corrupt collection file set aside before write",
		"collection", collection,
		"path", aside)
	return nil
}

func decodeRecords(data []byte) ([]model.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected content after records at offset %d", dec.InputOffset())
	}

	records := make([]model.Record, 0, len(raw))
	for _, r := range raw {
		records = append(records, model.Record(r))
	}
	return records, nil
}

func encodeRecords(records []model.Record) ([]byte, error) {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row := make(map[string]any, len(rec))
		for k, v := range rec {
			switch v.(type) {
			case nil:
				row[k] = ""
			case string, bool, int, int64, float64:
				row[k] = v
			default:
				row[k] = model.FormatValue(v)
			}
		}
		out = append(out, row)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode records: %w", err)
	}
	return data, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace collection file: %w", err)
	}
	return nil
}
