package backend

import (
	"context"

	"github.com/vecadmin/vecadmin/internal/domain"
)

// Dispatcher forwards each operation to the facade matching the
// connection's protocol version. It holds no state beyond the two facades,
// performs no validation, and adds no error translation. An empty version
// selects the legacy protocol.
type Dispatcher struct {
	v1 Store
	v2 Store
}

// NewDispatcher creates a dispatcher over the two protocol facades.
func NewDispatcher(v1, v2 Store) *Dispatcher {
	return &Dispatcher{v1: v1, v2: v2}
}

var _ Store = (*Dispatcher)(nil)

func (d *Dispatcher) store(conn domain.Connection) Store {
	if conn.Version == domain.VersionV2 {
		return d.v2
	}
	return d.v1
}

func (d *Dispatcher) ListCollections(ctx context.Context, conn domain.Connection) ([]domain.Collection, error) {
	return d.store(conn).ListCollections(ctx, conn)
}

func (d *Dispatcher) FetchRecords(ctx context.Context, conn domain.Connection, collection string, page int, filter domain.Filter) ([]domain.Record, error) {
	return d.store(conn).FetchRecords(ctx, conn, collection, page, filter)
}

func (d *Dispatcher) GetRecord(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error) {
	return d.store(conn).GetRecord(ctx, conn, collection, id)
}

func (d *Dispatcher) CountRecords(ctx context.Context, conn domain.Connection, collection string, filter domain.Filter) (int, error) {
	return d.store(conn).CountRecords(ctx, conn, collection, filter)
}

func (d *Dispatcher) Query(ctx context.Context, conn domain.Connection, collection string, embedding []float32, filter domain.Filter) ([]domain.Record, error) {
	return d.store(conn).Query(ctx, conn, collection, embedding, filter)
}

func (d *Dispatcher) QueryByID(ctx context.Context, conn domain.Connection, collection, id string) (domain.Record, error) {
	return d.store(conn).QueryByID(ctx, conn, collection, id)
}

func (d *Dispatcher) DeleteRecord(ctx context.Context, conn domain.Connection, collection, id string) error {
	return d.store(conn).DeleteRecord(ctx, conn, collection, id)
}

func (d *Dispatcher) DeleteCollection(ctx context.Context, conn domain.Connection, collection string) error {
	return d.store(conn).DeleteCollection(ctx, conn, collection)
}

func (d *Dispatcher) RenameCollection(ctx context.Context, conn domain.Connection, oldName, newName string) error {
	return d.store(conn).RenameCollection(ctx, conn, oldName, newName)
}
