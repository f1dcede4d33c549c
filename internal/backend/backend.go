// Package backend defines the version-agnostic contract over the two
// backend protocol generations. The v1 and v2 subpackages implement Store
// over their respective wire formats; Dispatcher selects between them per
// call. Nothing in this layer retries or recovers from errors, every
// failure propagates to the caller as-is.
package backend

import (
	"context"

	"github.com/vecadmin/vecadmin/internal/domain"
)

const (
	// PageSize is the fixed record-listing page size. Page numbers are
	// 1-based, so page n maps to offset (n-1)*PageSize.
	PageSize = 20
	// QueryLimit is the maximum number of results a vector query returns.
	QueryLimit = 10
)

// Offset converts a 1-based page number to a wire offset.
func Offset(page int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * PageSize
}

// Store is the shared operation set both protocol facades implement.
type Store interface {
	// ListCollections returns every collection of the connection's
	// tenant+database and seeds the name-resolution cache with the result.
	ListCollections(ctx context.Context, conn domain.Connection) ([]domain.Collection, error)

	// FetchRecords returns one page of records with documents and metadata
	// but never embeddings.
	FetchRecords(ctx context.Context, conn domain.Connection, collection string, page int, filter domain.Filter) ([]domain.Record, error)

	// GetRecord returns a single record including its embedding, or
	// domain.ErrRecordNotFound.
	GetRecord(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error)

	// CountRecords counts records, optionally restricted by a filter.
	CountRecords(ctx context.Context, conn domain.Connection, collection string, filter domain.Filter) (int, error)

	// Query runs a vector similarity search returning at most QueryLimit
	// records with distances.
	Query(ctx context.Context, conn domain.Connection, collection string, embedding []float32, filter domain.Filter) ([]domain.Record, error)

	// QueryByID is an exact-id lookup: one record with Distance 0, or
	// domain.ErrRecordNotFound.
	QueryByID(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error)

	// DeleteRecord removes one record by id.
	DeleteRecord(ctx context.Context, conn domain.Connection, collection, id string) error

	// DeleteCollection removes a collection by name.
	DeleteCollection(ctx context.Context, conn domain.Connection, collection string) error

	// RenameCollection copies a collection under a new name and deletes the
	// old one. The backend has no rename primitive, so this is a
	// compensating transaction: a failure after the new collection was
	// created leaves both collections present.
	RenameCollection(ctx context.Context, conn domain.Connection, oldName, newName string) error
}
