package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vecadmin/vecadmin/internal/domain"
)

// fakeStore implements backend.Store with per-test function fields. A call
// hitting an unset field fails the test.
type fakeStore struct {
	t *testing.T

	listCollectionsFn  func(ctx context.Context, conn domain.Connection) ([]domain.Collection, error)
	fetchRecordsFn     func(ctx context.Context, conn domain.Connection, collection string, page int, filter domain.Filter) ([]domain.Record, error)
	getRecordFn        func(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error)
	countRecordsFn     func(ctx context.Context, conn domain.Connection, collection string, filter domain.Filter) (int, error)
	queryFn            func(ctx context.Context, conn domain.Connection, collection string, embedding []float32, filter domain.Filter) ([]domain.Record, error)
	queryByIDFn        func(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error)
	deleteRecordFn     func(ctx context.Context, conn domain.Connection, collection, id string) error
	deleteCollectionFn func(ctx context.Context, conn domain.Connection, collection string) error
	renameCollectionFn func(ctx context.Context, conn domain.Connection, oldName, newName string) error
}

func (f *fakeStore) ListCollections(ctx context.Context, conn domain.Connection) ([]domain.Collection, error) {
	if f.listCollectionsFn == nil {
		f.t.Fatal("unexpected ListCollections call")
	}
	return f.listCollectionsFn(ctx, conn)
}

func (f *fakeStore) FetchRecords(ctx context.Context, conn domain.Connection, collection string, page int, filter domain.Filter) ([]domain.Record, error) {
	if f.fetchRecordsFn == nil {
		f.t.Fatal("unexpected FetchRecords call")
	}
	return f.fetchRecordsFn(ctx, conn, collection, page, filter)
}

func (f *fakeStore) GetRecord(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error) {
	if f.getRecordFn == nil {
		f.t.Fatal("unexpected GetRecord call")
	}
	return f.getRecordFn(ctx, conn, collection, id)
}

func (f *fakeStore) CountRecords(ctx context.Context, conn domain.Connection, collection string, filter domain.Filter) (int, error) {
	if f.countRecordsFn == nil {
		f.t.Fatal("unexpected CountRecords call")
	}
	return f.countRecordsFn(ctx, conn, collection, filter)
}

func (f *fakeStore) Query(ctx context.Context, conn domain.Connection, collection string, embedding []float32, filter domain.Filter) ([]domain.Record, error) {
	if f.queryFn == nil {
		f.t.Fatal("unexpected Query call")
	}
	return f.queryFn(ctx, conn, collection, embedding, filter)
}

func (f *fakeStore) QueryByID(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error) {
	if f.queryByIDFn == nil {
		f.t.Fatal("unexpected QueryByID call")
	}
	return f.queryByIDFn(ctx, conn, collection, id)
}

func (f *fakeStore) DeleteRecord(ctx context.Context, conn domain.Connection, collection, id string) error {
	if f.deleteRecordFn == nil {
		f.t.Fatal("unexpected DeleteRecord call")
	}
	return f.deleteRecordFn(ctx, conn, collection, id)
}

func (f *fakeStore) DeleteCollection(ctx context.Context, conn domain.Connection, collection string) error {
	if f.deleteCollectionFn == nil {
		f.t.Fatal("unexpected DeleteCollection call")
	}
	return f.deleteCollectionFn(ctx, conn, collection)
}

func (f *fakeStore) RenameCollection(ctx context.Context, conn domain.Connection, oldName, newName string) error {
	if f.renameCollectionFn == nil {
		f.t.Fatal("unexpected RenameCollection call")
	}
	return f.renameCollectionFn(ctx, conn, oldName, newName)
}

// fakeEmbedder implements Embedder with a function field.
type fakeEmbedder struct {
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.embedFn(ctx, text)
}

func newTestRouter(store *fakeStore, embedder Embedder) chi.Router {
	r := chi.NewRouter()
	NewServer(store, embedder, zap.NewNop()).Routes(r)
	return r
}

// doRequest runs one request against the router and returns status and
// decoded JSON body.
func doRequest(t *testing.T, r chi.Router, method, target string, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var decoded map[string]any
	raw, _ := io.ReadAll(rec.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			// Array payloads land under a synthetic key.
			var arr []any
			if err := json.Unmarshal(raw, &arr); err != nil {
				t.Fatalf("response is not JSON: %q", raw)
			}
			decoded = map[string]any{"_array": arr}
		}
	}
	return rec.Code, decoded
}

func errorMessage(t *testing.T, body map[string]any) string {
	t.Helper()
	msg, ok := body["error"].(string)
	if !ok {
		t.Fatalf("response has no error field: %v", body)
	}
	return msg
}
