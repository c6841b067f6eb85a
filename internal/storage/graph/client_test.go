package graph

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/examcert-server/internal/model"
	"github.com/dtroode/examcert-server/internal/testutil"
)

const contentPath = "/v1.0/users/owner@example.com/drive/root:/ExamApp/exam_data.xlsx:/content"

func newTestClient(g *testutil.FakeGraph, timeout time.Duration) *Client {
	return NewClient(Options{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		TokenURL:     g.TokenURL(),
		Scope:        "https://graph.microsoft.com/.default",
		BaseURL:      g.BaseURL(),
		DriveUser:    "owner@example.com",
		ContentType:  "application/octet-stream",
		Timeout:      timeout,
	}, testutil.MakeNoopLogger())
}

func TestClient_DownloadMissingDocument(t *testing.T) {
	g := testutil.NewFakeGraph(t)
	c := newTestClient(g, time.Second)

	rc, err := c.Download(context.Background(), "ExamApp/exam_data.xlsx")
	assert.Nil(t, rc)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestClient_UploadThenDownload(t *testing.T) {
	g := testutil.NewFakeGraph(t)
	c := newTestClient(g, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Upload(ctx, "ExamApp/exam_data.xlsx", bytes.NewReader([]byte("payload"))))

	stored, ok := g.Document(contentPath)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), stored)
	assert.Equal(t, []string{"application/octet-stream"}, g.ContentTypes)

	rc, err := c.Download(ctx, "ExamApp/exam_data.xlsx")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestClient_TokenRequestedPerOperation(t *testing.T) {
	g := testutil.NewFakeGraph(t)
	c := newTestClient(g, time.Second)
	ctx := context.Background()

	require.NoError(t, c.Upload(ctx, "doc.xlsx", strings.NewReader("a")))
	rc, err := c.Download(ctx, "doc.xlsx")
	require.NoError(t, err)
	rc.Close()
	_, err = c.Download(ctx, "missing.xlsx")
	require.ErrorIs(t, err, model.ErrNotFound)

	assert.Equal(t, 3, g.TokenRequests)
}

func TestClient_AuthFailures(t *testing.T) {
	t.Run("rejected credentials", func(t *testing.T) {
		g := testutil.NewFakeGraph(t)
		g.RejectToken = true
		c := newTestClient(g, time.Second)

		_, err := c.Download(context.Background(), "doc.xlsx")
		assert.ErrorIs(t, err, model.ErrAuth)

		err = c.Upload(context.Background(), "doc.xlsx", strings.NewReader("a"))
		assert.ErrorIs(t, err, model.ErrAuth)
		assert.Empty(t, g.Paths())
	})

	t.Run("wrong secret", func(t *testing.T) {
		g := testutil.NewFakeGraph(t)
		c := newTestClient(g, time.Second)
		c.credentials.ClientSecret = "stale"

		_, err := c.Download(context.Background(), "doc.xlsx")
		assert.ErrorIs(t, err, model.ErrAuth)
	})

	t.Run("identity provider unreachable", func(t *testing.T) {
		g := testutil.NewFakeGraph(t)
		c := newTestClient(g, time.Second)
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()
		c.credentials.TokenURL = dead.URL + "/token"

		_, err := c.Download(context.Background(), "doc.xlsx")
		assert.ErrorIs(t, err, model.ErrAuth)
	})
}

func TestClient_TransportFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "throttled", status: http.StatusTooManyRequests},
		{name: "forbidden", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testutil.NewFakeGraph(t)
			g.ContentStatus = tt.status
			c := newTestClient(g, time.Second)

			_, err := c.Download(context.Background(), "doc.xlsx")
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrTransport)
			assert.NotErrorIs(t, err, model.ErrNotFound)

			err = c.Upload(context.Background(), "doc.xlsx", strings.NewReader("a"))
			assert.ErrorIs(t, err, model.ErrTransport)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	g := testutil.NewFakeGraph(t)
	g.Delay = 500 * time.Millisecond
	c := newTestClient(g, 50*time.Millisecond)

	_, err := c.Download(context.Background(), "doc.xlsx")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTransport)
}

func TestClient_ContentURL(t *testing.T) {
	c := NewClient(Options{BaseURL: "https://graph.example.com/v1.0/", DriveUser: "owner@example.com"}, testutil.MakeNoopLogger())

	assert.Equal(t,
		"https://graph.example.com/v1.0/users/owner@example.com/drive/root:/Exam%20App/data%23.xlsx:/content",
		c.contentURL("/Exam App/data#.xlsx"))
}
