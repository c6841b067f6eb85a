package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// FakeGraph serves a token endpoint and a drive content endpoint keyed by escaped path.
type FakeGraph struct {
	Server *httptest.Server

	ClientID     string
	ClientSecret string
	AccessToken  string

	mu            sync.Mutex
	docs          map[string][]byte
	TokenRequests int
	ContentTypes  []string

	// RejectToken makes the token endpoint answer 401 invalid_client.
	RejectToken bool
	// ContentStatus, when non-zero, is returned by the content endpoint for every request.
	ContentStatus int
	// Delay is applied before answering content requests.
	Delay time.Duration
}

// NewFakeGraph starts a FakeGraph that is closed when the test ends.
func NewFakeGraph(t *testing.T) *FakeGraph {
	t.Helper()
	g := &FakeGraph{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AccessToken:  "access-token",
		docs:         make(map[string][]byte),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", g.handleToken)
	mux.HandleFunc("/v1.0/", g.handleContent)
	g.Server = httptest.NewServer(mux)
	t.Cleanup(g.Server.Close)
	return g
}

// TokenURL returns the token endpoint URL.
func (g *FakeGraph) TokenURL() string {
	return g.Server.URL + "/token"
}

// BaseURL returns the API base URL.
func (g *FakeGraph) BaseURL() string {
	return g.Server.URL + "/v1.0"
}

// Document returns the stored bytes for an escaped content path.
func (g *FakeGraph) Document(escapedPath string) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	data, ok := g.docs[escapedPath]
	return data, ok
}

// Paths returns every escaped content path that holds a document.
func (g *FakeGraph) Paths() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.docs))
	for p := range g.docs {
		out = append(out, p)
	}
	return out
}

func (g *FakeGraph) handleToken(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	g.TokenRequests++
	reject := g.RejectToken
	g.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if reject ||
		r.PostForm.Get("grant_type") != "client_credentials" ||
		r.PostForm.Get("client_id") != g.ClientID ||
		r.PostForm.Get("client_secret") != g.ClientSecret {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_client",
			"error_description": "client secret is invalid",
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": g.AccessToken,
		"token_type":   "Bearer",
		"expires_in":   3600,
	})
}

func (g *FakeGraph) handleContent(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	delay := g.Delay
	status := g.ContentStatus
	g.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if r.Header.Get("Authorization") != "Bearer "+g.AccessToken {
		http.Error(w, `{"error":{"code":"InvalidAuthenticationToken"}}`, http.StatusUnauthorized)
		return
	}
	path := r.URL.EscapedPath()
	if !strings.HasSuffix(path, ":/content") {
		http.NotFound(w, r)
		return
	}
	if status != 0 {
		http.Error(w, `{"error":{"code":"serviceNotAvailable"}}`, status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		g.mu.Lock()
		data, ok := g.docs[path]
		g.mu.Unlock()
		if !ok {
			http.Error(w, `{"error":{"code":"itemNotFound"}}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g.mu.Lock()
		_, existed := g.docs[path]
		g.docs[path] = data
		g.ContentTypes = append(g.ContentTypes, r.Header.Get("Content-Type"))
		g.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if existed {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
		_, _ = w.Write([]byte(`{"id":"01ABCDEF"}`))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
