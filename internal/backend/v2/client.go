// Package v2 implements backend.Store over the current wire protocol.
// Collections are addressed by name directly, so per-collection operations
// need no id resolution at all.
package v2

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
)

const (
	defaultTimeout  = 30 * time.Second
	defaultTenant   = "default_tenant"
	defaultDatabase = "default_database"
)

// Client is a typed client for the current API generation. It speaks the
// wire format; operation policy (page sizes, include sets, not-found
// semantics, the rename copy) lives in Store.
type Client struct {
	http *http.Client
}

// NewClient creates a current-protocol client. A non-positive timeout falls
// back to the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{http: &http.Client{Timeout: timeout}}
}

// ListCollections returns every collection of the connection's scope.
func (c *Client) ListCollections(ctx context.Context, conn domain.Connection) ([]domain.Collection, error) {
	data, err := c.do(ctx, conn, "list", http.MethodGet, "/collections", nil)
	if err != nil {
		return nil, err
	}
	var rows []collectionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode collections: %w", err)
	}
	cols := make([]domain.Collection, len(rows))
	for i, row := range rows {
		cols[i] = domain.Collection{ID: row.ID, Name: row.Name, Metadata: row.Metadata}
	}
	return cols, nil
}

// GetRecords runs a get against a named collection.
func (c *Client) GetRecords(ctx context.Context, conn domain.Connection, collection string, req getRequest) (getResponse, error) {
	data, err := c.do(ctx, conn, "get", http.MethodPost, collectionPath(collection, "get"), req)
	if err != nil {
		return getResponse{}, err
	}
	var resp getResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return getResponse{}, fmt.Errorf("decode records: %w", err)
	}
	return resp, nil
}

// QueryRecords runs a similarity query. A response carrying an explicit
// error field is a failure and is raised with that message, mirroring the
// legacy facade's error contract.
func (c *Client) QueryRecords(ctx context.Context, conn domain.Connection, collection string, req queryRequest) (queryResponse, error) {
	data, err := c.do(ctx, conn, "query", http.MethodPost, collectionPath(collection, "query"), req)
	if err != nil {
		return queryResponse{}, err
	}
	var resp queryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return queryResponse{}, fmt.Errorf("decode query result: %w", err)
	}
	if resp.Error != "" {
		return queryResponse{}, backend.NewQueryError(resp.Error)
	}
	return resp, nil
}

// CountRecords returns the unfiltered record count of a collection.
func (c *Client) CountRecords(ctx context.Context, conn domain.Connection, collection string) (int, error) {
	data, err := c.do(ctx, conn, "count", http.MethodGet, collectionPath(collection, "count"), nil)
	if err != nil {
		return 0, err
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return n, nil
}

// DeleteRecords deletes records by id.
func (c *Client) DeleteRecords(ctx context.Context, conn domain.Connection, collection string, ids []string) error {
	_, err := c.do(ctx, conn, "delete", http.MethodPost, collectionPath(collection, "delete"), deleteRequest{IDs: ids})
	return err
}

// CreateCollection creates an empty collection under the given name.
func (c *Client) CreateCollection(ctx context.Context, conn domain.Connection, name string) error {
	_, err := c.do(ctx, conn, "create_collection", http.MethodPost, "/collections", createCollectionRequest{Name: name})
	return err
}

// AddRecords bulk-inserts records into a named collection.
func (c *Client) AddRecords(ctx context.Context, conn domain.Connection, collection string, req addRequest) error {
	_, err := c.do(ctx, conn, "add", http.MethodPost, collectionPath(collection, "add"), req)
	return err
}

// DeleteCollection removes a collection by name.
func (c *Client) DeleteCollection(ctx context.Context, conn domain.Connection, collection string) error {
	_, err := c.do(ctx, conn, "delete_collection", http.MethodDelete, "/collections/"+url.PathEscape(collection), nil)
	return err
}

func (c *Client) do(ctx context.Context, conn domain.Connection, op, method, path string, body any) ([]byte, error) {
	start := time.Now()
	data, err := c.roundTrip(ctx, conn, method, path, body)
	metrics.ObserveBackend("v2", op, start, err)
	return data, err
}

func (c *Client) roundTrip(ctx context.Context, conn domain.Connection, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL(conn)+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h, ok := conn.Auth.Header(); ok {
		req.Header.Set("Authorization", h)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
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

// baseURL scopes every call to the connection's tenant and database, which
// the current protocol carries in the path.
func baseURL(conn domain.Connection) string {
	tenant := conn.Tenant
	if tenant == "" {
		tenant = defaultTenant
	}
	database := conn.Database
	if database == "" {
		database = defaultDatabase
	}
	return strings.TrimRight(conn.Endpoint, "/") +
		"/api/v2/tenants/" + url.PathEscape(tenant) +
		"/databases/" + url.PathEscape(database)
}

func collectionPath(name, op string) string {
	return "/collections/" + url.PathEscape(name) + "/" + op
}
