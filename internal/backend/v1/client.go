// Package v1 implements backend.Store over the legacy wire protocol, which
// addresses every per-collection operation by the backend-assigned
// collection id rather than by name.
package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vecadmin/vecadmin/internal/backend"
	"github.com/vecadmin/vecadmin/internal/domain"
	"github.com/vecadmin/vecadmin/internal/metrics"
	"github.com/vecadmin/vecadmin/internal/resolve"
)

const defaultTimeout = 30 * time.Second

// Store is the legacy protocol facade.
type Store struct {
	cache *resolve.Cache
	http  *http.Client
}

// New creates a legacy facade sharing the given name-resolution cache.
// A non-positive timeout falls back to the default.
//
// Automatic redirect following is disabled on purpose: the default client
// downgrades non-GET methods on 301/302, which corrupts mutation calls
// behind a reverse proxy. Redirects are replayed manually in roundTrip
// with the original method and body, one hop at most.
func New(cache *resolve.Cache, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{
		cache: cache,
		http: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

var _ backend.Store = (*Store)(nil)

// do issues one instrumented call against the legacy API.
func (s *Store) do(ctx context.Context, conn domain.Connection, op, method, path string, body any) ([]byte, error) {
	start := time.Now()
	data, err := s.roundTrip(ctx, conn, method, path, body)
	metrics.ObserveBackend("v1", op, start, err)
	return data, err
}

func (s *Store) roundTrip(ctx context.Context, conn domain.Connection, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	target := apiURL(conn, path)
	resp, err := s.issue(ctx, conn, method, target, payload)
	if err != nil {
		return nil, err
	}

	// One manual hop: replay the original method, headers and body against
	// the Location target and treat that response as authoritative.
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		loc, locErr := resp.Location()
		if locErr != nil {
			// No Location to follow; surface the response like any other
			// non-2xx, status and body intact.
			data, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, backend.NewStatusError(resp.StatusCode, string(data))
		}
		drain(resp)
		resp, err = s.issue(ctx, conn, method, loc.String(), payload)
		if err != nil {
			return nil, err
		}
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, backend.NewStatusError(resp.StatusCode, string(data))
	}
	return data, nil
}

func (s *Store) issue(ctx context.Context, conn domain.Connection, method, target string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h, ok := conn.Auth.Header(); ok {
		req.Header.Set("Authorization", h)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	return resp, nil
}

// apiURL builds a legacy API URL; tenant and database travel as query
// parameters on every call.
func apiURL(conn domain.Connection, path string) string {
	q := url.Values{}
	if conn.Tenant != "" {
		q.Set("tenant", conn.Tenant)
	}
	if conn.Database != "" {
		q.Set("database", conn.Database)
	}
	u := strings.TrimRight(conn.Endpoint, "/") + "/api/v1" + path
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
