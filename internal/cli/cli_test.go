package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/examcert-server/internal/config"
	"github.com/dtroode/examcert-server/internal/logger"
	"github.com/dtroode/examcert-server/internal/mocks"
	"github.com/dtroode/examcert-server/internal/model"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&RootOptions{newStore: defaultStore})
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCollections(t *testing.T) {
	out, _, err := run(t, "", "collections")
	require.NoError(t, err)
	assert.Equal(t, "Users\tusername,password,registered_date\nExamResults\tusername,score,passed,cert_id,date\n", out)
}

func TestWriteReadAppend_Local(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORAGE_BACKEND", "")

	out, _, err := run(t, "", "read", "Users", "--backend", "local", "--data-dir", dir)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, out)

	file := filepath.Join(dir, "in.json")
	require.NoError(t, os.WriteFile(file, []byte(`[{"username":"alice","password":"pw","registered_date":"2024-01-01 10:00"}]`), 0o644))

	out, _, err = run(t, "", "write", "Users", "-f", file, "--backend", "local", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "wrote 1 records to Users\n", out)

	out, _, err = run(t, `[{"username":"bob","password":"pw2"}]`, "append", "Users", "--backend", "local", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "appended 1 records to Users (2 total)\n", out)

	out, _, err = run(t, "", "read", "Users", "--backend", "local", "--data-dir", dir)
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "alice", got[0]["username"])
	assert.Equal(t, "bob", got[1]["username"])
	assert.Equal(t, "", got[1]["registered_date"])
}

func TestRead_UnknownCollection(t *testing.T) {
	_, _, err := run(t, "", "read", "Payments", "--backend", "local", "--data-dir", t.TempDir())
	assert.ErrorIs(t, err, model.ErrUnknownCollection)
}

func TestWrite_MalformedInput(t *testing.T) {
	_, _, err := run(t, `{"not":"an array"}`, "write", "Users", "--backend", "local", "--data-dir", t.TempDir())
	assert.ErrorContains(t, err, "failed to decode records")
}

func TestRead_BackendFailureSurfaces(t *testing.T) {
	store := &mocks.RecordStore{}
	store.On("Read", mock.Anything, model.CollectionExamResults).
		Return(model.RecordSet{}, model.NewStoreError("read", model.CollectionExamResults, model.ErrAuth))

	cmd := newRootCmd(&RootOptions{
		newStore: func(context.Context, *config.Config, *logger.Logger) (model.UpdatingRecordStore, error) {
			return store, nil
		},
	})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"read", "ExamResults", "--backend", "local", "--data-dir", t.TempDir()})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorIs(t, err, model.ErrAuth)
	assert.Empty(t, stdout.String())
}

func TestRead_InvalidBackend(t *testing.T) {
	_, _, err := run(t, "", "read", "Users", "--backend", "sqlite")
	assert.ErrorContains(t, err, "unknown storage backend")
}
