package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dtroode/examcert-server/internal/config"
	"github.com/dtroode/examcert-server/internal/repository/local"
	"github.com/dtroode/examcert-server/internal/repository/recordstore"
	"github.com/dtroode/examcert-server/internal/testutil"
)

func newLocalStore(t *testing.T) *recordstore.Store {
	t.Helper()
	backend, err := local.NewStore(t.TempDir(), testutil.MakeNoopLogger())
	require.NoError(t, err)
	return recordstore.NewWithBackend(backend, config.BackendLocal, time.Second, testutil.MakeNoopLogger())
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC) }
}

// allCorrect answers every question of DefaultQuestions.
func allCorrect() map[int]string {
	answers := make(map[int]string, len(DefaultQuestions))
	for i, q := range DefaultQuestions {
		answers[i] = q.Answer
	}
	return answers
}
