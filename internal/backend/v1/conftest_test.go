package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/vecadmin/vecadmin/internal/domain"
	"github.com/vecadmin/vecadmin/internal/resolve"
)

// capturedRequest is one request the fake backend received, body included.
type capturedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// fakeBackend is an httptest server that records every request before
// routing it to per-test handlers.
type fakeBackend struct {
	mu       sync.Mutex
	requests []capturedRequest
	mux      *http.ServeMux
	srv      *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{mux: http.NewServeMux()}
	fb.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.requests = append(fb.requests, capturedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		fb.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		fb.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) handle(pattern string, h http.HandlerFunc) {
	fb.mux.HandleFunc(pattern, h)
}

func (fb *fakeBackend) conn() domain.Connection {
	return domain.Connection{
		Endpoint: fb.srv.URL,
		Tenant:   "default_tenant",
		Database: "default_database",
		Version:  domain.VersionV1,
	}
}

// captured returns all recorded requests.
func (fb *fakeBackend) captured() []capturedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]capturedRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// find returns the first recorded request matching method and path.
func (fb *fakeBackend) find(t *testing.T, method, path string) capturedRequest {
	t.Helper()
	for _, req := range fb.captured() {
		if req.Method == method && req.Path == path {
			return req
		}
	}
	t.Fatalf("no %s %s request recorded", method, path)
	return capturedRequest{}
}

// serveCollections registers the list endpoint with a fixed payload.
func (fb *fakeBackend) serveCollections(rows []collectionRow) {
	fb.handle("GET /api/v1/collections", func(w http.ResponseWriter, _ *http.Request) {
		respond(w, rows)
	})
}

func respond(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestStore(t *testing.T) (*Store, *fakeBackend) {
	t.Helper()
	fb := newFakeBackend(t)
	cache := resolve.New(30 * time.Second)
	return New(cache, 5*time.Second), fb
}

func decodeBody[T any](t *testing.T, req capturedRequest) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(req.Body, &v); err != nil {
		t.Fatalf("decode %s %s body: %v", req.Method, req.Path, err)
	}
	return v
}

func strPtr(s string) *string { return &s }
