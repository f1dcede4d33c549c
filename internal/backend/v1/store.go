package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/vecadmin/vecadmin/internal/backend"
	"github.com/vecadmin/vecadmin/internal/domain"
)

// ListCollections fetches all collections and seeds the resolution cache
// with every returned name, not only ones that were asked about.
func (s *Store) ListCollections(ctx context.Context, conn domain.Connection) ([]domain.Collection, error) {
	cols, err := s.list(ctx, conn)
	if err != nil {
		return nil, err
	}
	s.cache.Seed(conn, cols)
	return cols, nil
}

func (s *Store) list(ctx context.Context, conn domain.Connection) ([]domain.Collection, error) {
	data, err := s.do(ctx, conn, "list", http.MethodGet, "/collections", nil)
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

// resolveID turns a collection name into the backend id the legacy wire
// format demands, going through the shared cache.
func (s *Store) resolveID(ctx context.Context, conn domain.Connection, name string) (string, error) {
	return s.cache.Resolve(ctx, conn, name, func(ctx context.Context) ([]domain.Collection, error) {
		return s.list(ctx, conn)
	})
}

// FetchRecords fetches one page of records. Embeddings are deliberately not
// requested: they are large and the listing never shows them.
func (s *Store) FetchRecords(ctx context.Context, conn domain.Connection, collection string, page int, filter domain.Filter) ([]domain.Record, error) {
	id, err := s.resolveID(ctx, conn, collection)
	if err != nil {
		return nil, err
	}

	limit := backend.PageSize
	offset := backend.Offset(page)
	data, err := s.do(ctx, conn, "get", http.MethodPost, collectionPath(id, "get"), getRequest{
		Where:   filter,
		Limit:   &limit,
		Offset:  &offset,
		Include: []string{includeDocuments, includeMetadatas},
	})
	if err != nil {
		return nil, err
	}

	var resp getResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return recordsFromColumns(resp), nil
}

// GetRecord fetches one record including its embedding.
func (s *Store) GetRecord(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error) {
	colID, err := s.resolveID(ctx, conn, collection)
	if err != nil {
		return domain.Record{}, err
	}

	data, err := s.do(ctx, conn, "get", http.MethodPost, collectionPath(colID, "get"), getRequest{
		IDs:     []string{id},
		Include: []string{includeDocuments, includeMetadatas, includeEmbeddings},
	})
	if err != nil {
		return domain.Record{}, err
	}

	var resp getResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return domain.Record{}, fmt.Errorf("decode record: %w", err)
	}
	records := recordsFromColumns(resp)
	if len(records) == 0 {
		return domain.Record{}, fmt.Errorf("%q: %w", id, domain.ErrRecordNotFound)
	}
	return records[0], nil
}

// CountRecords counts records. The legacy count endpoint takes no filter,
// so a filtered count is an id-only get whose result length is the count.
func (s *Store) CountRecords(ctx context.Context, conn domain.Connection, collection string, filter domain.Filter) (int, error) {
	id, err := s.resolveID(ctx, conn, collection)
	if err != nil {
		return 0, err
	}

	if len(filter) == 0 {
		data, err := s.do(ctx, conn, "count", http.MethodGet, collectionPath(id, "count"), nil)
		if err != nil {
			return 0, err
		}
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return 0, fmt.Errorf("decode count: %w", err)
		}
		return n, nil
	}

	data, err := s.do(ctx, conn, "count", http.MethodPost, collectionPath(id, "get"), getRequest{
		Where:   filter,
		Include: []string{},
	})
	if err != nil {
		return 0, err
	}
	var resp getResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("decode filtered count: %w", err)
	}
	return len(resp.IDs), nil
}

// Query runs a similarity search. The wire format is batch-oriented, so the
// single query vector travels as a one-element batch.
func (s *Store) Query(ctx context.Context, conn domain.Connection, collection string, embedding []float32, filter domain.Filter) ([]domain.Record, error) {
	id, err := s.resolveID(ctx, conn, collection)
	if err != nil {
		return nil, err
	}

	data, err := s.do(ctx, conn, "query", http.MethodPost, collectionPath(id, "query"), queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        backend.QueryLimit,
		Where:           filter,
		Include:         []string{includeDocuments, includeMetadatas, includeEmbeddings, includeDistances},
	})
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode query result: %w", err)
	}
	return recordsFromBatch(resp), nil
}

// QueryByID is an exact-id lookup, not a similarity search: the matching
// record is returned with distance 0.
func (s *Store) QueryByID(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error) {
	rec, err := s.GetRecord(ctx, conn, collection, id)
	if err != nil {
		return domain.Record{}, err
	}
	rec.Distance = 0
	return rec, nil
}

// DeleteRecord removes one record by id.
func (s *Store) DeleteRecord(ctx context.Context, conn domain.Connection, collection, id string) error {
	colID, err := s.resolveID(ctx, conn, collection)
	if err != nil {
		return err
	}
	_, err = s.do(ctx, conn, "delete", http.MethodPost, collectionPath(colID, "delete"), deleteRequest{
		IDs: []string{id},
	})
	return err
}

// DeleteCollection removes a collection. The legacy delete endpoint is one
// of the few that addresses by name, so no resolution happens here.
func (s *Store) DeleteCollection(ctx context.Context, conn domain.Connection, collection string) error {
	_, err := s.do(ctx, conn, "delete_collection", http.MethodDelete, "/collections/"+url.PathEscape(collection), nil)
	if err != nil {
		return err
	}
	s.cache.Invalidate(conn, collection)
	return nil
}

// RenameCollection emulates the missing rename primitive as a strictly
// sequential copy: fetch everything, create the target, bulk-insert, delete
// the source, drop the old cache entry. A failure before the create leaves
// the old collection untouched; a failure after it leaves both collections
// present with duplicated data, which is reported by propagating the error
// rather than rolled back, so data is never the thing that gets lost.
func (s *Store) RenameCollection(ctx context.Context, conn domain.Connection, oldName, newName string) error {
	oldID, err := s.resolveID(ctx, conn, oldName)
	if err != nil {
		return err
	}

	data, err := s.do(ctx, conn, "get", http.MethodPost, collectionPath(oldID, "get"), getRequest{
		Include: []string{includeDocuments, includeMetadatas, includeEmbeddings},
	})
	if err != nil {
		return fmt.Errorf("fetch records of %q: %w", oldName, err)
	}
	var resp getResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode records of %q: %w", oldName, err)
	}
	records := recordsFromColumns(resp)

	newID, err := s.createCollection(ctx, conn, newName)
	if err != nil {
		return fmt.Errorf("create collection %q: %w", newName, err)
	}

	if len(records) > 0 {
		if _, err := s.do(ctx, conn, "add", http.MethodPost, collectionPath(newID, "add"), columnsFromRecords(records)); err != nil {
			return fmt.Errorf("copy records into %q: %w", newName, err)
		}
	}

	// DeleteCollection also drops the old name from the cache; the new name
	// is simply resolved fresh on its next use.
	if err := s.DeleteCollection(ctx, conn, oldName); err != nil {
		return fmt.Errorf("delete old collection %q: %w", oldName, err)
	}
	return nil
}

func (s *Store) createCollection(ctx context.Context, conn domain.Connection, name string) (string, error) {
	data, err := s.do(ctx, conn, "create_collection", http.MethodPost, "/collections", createCollectionRequest{
		Name: name,
	})
	if err != nil {
		return "", err
	}
	var resp createCollectionResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode created collection: %w", err)
	}
	return resp.ID, nil
}

func collectionPath(id, op string) string {
	return "/collections/" + url.PathEscape(id) + "/" + op
}
