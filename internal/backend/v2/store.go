package v2

import (
	"context"
	"fmt"
	"time"

	"github.com/vecadmin/vecadmin/internal/backend"
	"github.com/vecadmin/vecadmin/internal/domain"
	"github.com/vecadmin/vecadmin/internal/resolve"
)

// Store is the current protocol facade. It needs no name resolution of its
// own, but still seeds and invalidates the shared cache so that switching
// protocol versions against the same backend stays coherent.
type Store struct {
	client *Client
	cache  *resolve.Cache
}

// New creates a current-protocol facade sharing the given cache.
func New(cache *resolve.Cache, timeout time.Duration) *Store {
	return &Store{client: NewClient(timeout), cache: cache}
}

var _ backend.Store = (*Store)(nil)

func (s *Store) ListCollections(ctx context.Context, conn domain.Connection) ([]domain.Collection, error) {
	cols, err := s.client.ListCollections(ctx, conn)
	if err != nil {
		return nil, err
	}
	s.cache.Seed(conn, cols)
	return cols, nil
}

func (s *Store) FetchRecords(ctx context.Context, conn domain.Connection, collection string, page int, filter domain.Filter) ([]domain.Record, error) {
	limit := backend.PageSize
	offset := backend.Offset(page)
	resp, err := s.client.GetRecords(ctx, conn, collection, getRequest{
		Where:   filter,
		Limit:   &limit,
		Offset:  &offset,
		Include: []string{includeDocuments, includeMetadatas},
	})
	if err != nil {
		return nil, err
	}
	return recordsFromColumns(resp), nil
}

func (s *Store) GetRecord(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error) {
	resp, err := s.client.GetRecords(ctx, conn, collection, getRequest{
		IDs:     []string{id},
		Include: []string{includeDocuments, includeMetadatas, includeEmbeddings},
	})
	if err != nil {
		return domain.Record{}, err
	}
	records := recordsFromColumns(resp)
	if len(records) == 0 {
		return domain.Record{}, fmt.Errorf("%q: %w", id, domain.ErrRecordNotFound)
	}
	return records[0], nil
}

func (s *Store) CountRecords(ctx context.Context, conn domain.Connection, collection string, filter domain.Filter) (int, error) {
	if len(filter) == 0 {
		return s.client.CountRecords(ctx, conn, collection)
	}
	resp, err := s.client.GetRecords(ctx, conn, collection, getRequest{
		Where:   filter,
		Include: []string{},
	})
	if err != nil {
		return 0, err
	}
	return len(resp.IDs), nil
}

func (s *Store) Query(ctx context.Context, conn domain.Connection, collection string, embedding []float32, filter domain.Filter) ([]domain.Record, error) {
	resp, err := s.client.QueryRecords(ctx, conn, collection, queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        backend.QueryLimit,
		Where:           filter,
		Include:         []string{includeDocuments, includeMetadatas, includeEmbeddings, includeDistances},
	})
	if err != nil {
		return nil, err
	}
	return recordsFromBatch(resp), nil
}

func (s *Store) QueryByID(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error) {
	rec, err := s.GetRecord(ctx, conn, collection, id)
	if err != nil {
		return domain.Record{}, err
	}
	rec.Distance = 0
	return rec, nil
}

func (s *Store) DeleteRecord(ctx context.Context, conn domain.Connection, collection, id string) error {
	return s.client.DeleteRecords(ctx, conn, collection, []string{id})
}

func (s *Store) DeleteCollection(ctx context.Context, conn domain.Connection, collection string) error {
	if err := s.client.DeleteCollection(ctx, conn, collection); err != nil {
		return err
	}
	s.cache.Invalidate(conn, collection)
	return nil
}

// RenameCollection is the same sequential copy the legacy facade performs:
// fetch → create → insert → delete, never parallelized, never rolled back
// past the create, so a partial failure leaves data present rather than
// deleted.
func (s *Store) RenameCollection(ctx context.Context, conn domain.Connection, oldName, newName string) error {
	resp, err := s.client.GetRecords(ctx, conn, oldName, getRequest{
		Include: []string{includeDocuments, includeMetadatas, includeEmbeddings},
	})
	if err != nil {
		return fmt.Errorf("fetch records of %q: %w", oldName, err)
	}
	records := recordsFromColumns(resp)

	if err := s.client.CreateCollection(ctx, conn, newName); err != nil {
		return fmt.Errorf("create collection %q: %w", newName, err)
	}

	if len(records) > 0 {
		if err := s.client.AddRecords(ctx, conn, newName, columnsFromRecords(records)); err != nil {
			return fmt.Errorf("copy records into %q: %w", newName, err)
		}
	}

	if err := s.DeleteCollection(ctx, conn, oldName); err != nil {
		return fmt.Errorf("delete old collection %q: %w", oldName, err)
	}
	return nil
}
