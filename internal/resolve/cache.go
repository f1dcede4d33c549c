// Package resolve maps human-readable collection names to the opaque
// backend identifiers the legacy protocol requires.
package resolve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/vecadmin/vecadmin/internal/domain"
	"github.com/vecadmin/vecadmin/internal/logger"
)

// DefaultTTL is the freshness window for a cached name→id mapping.
const DefaultTTL = 30 * time.Second

// ListFunc fetches the full collection listing from the backend.
type ListFunc func(ctx context.Context) ([]domain.Collection, error)

// key identifies an entry by the full connection tuple plus name, so that
// distinct backends never collide.
type key struct {
	endpoint string
	tenant   string
	database string
	name     string
}

type entry struct {
	id         string
	resolvedAt time.Time
}

// Cache resolves collection names to backend ids with a TTL bound. Entries
// are only ever replaced or deleted, never mutated in place, and there is
// no eviction beyond TTL staleness: the map grows with the number of
// distinct names seen, which is fine for an admin tool's cardinality.
//
// Concurrent resolutions of the same missing or stale key are coalesced
// through a per-key singleflight group: the first caller performs the list
// call and the rest await its result.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[key]entry
	group   singleflight.Group
}

// New creates a cache. A non-positive ttl falls back to DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[key]entry),
	}
}

// WithClock overrides the time source, used by TTL tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Resolve returns the backend id for the named collection. A fresh entry is
// served without any network call; otherwise one list call is issued and an
// entry is seeded for every collection it returned, amortizing future
// lookups for sibling names. A name absent from the fresh listing fails
// with domain.ErrCollectionNotFound.
func (c *Cache) Resolve(ctx context.Context, conn domain.Connection, name string, list ListFunc) (string, error) {
	k := keyFor(conn, name)
	if id, ok := c.lookup(k); ok {
		return id, nil
	}

	v, err, _ := c.group.Do(flightKey(k), func() (any, error) {
		// An earlier flight may have repopulated the entry already.
		if id, ok := c.lookup(k); ok {
			return id, nil
		}

		logger.FromContext(ctx).Debug("resolving collection id",
			zap.String("collection", name),
			zap.String("endpoint", conn.Endpoint),
		)

		cols, err := list(ctx)
		if err != nil {
			return "", fmt.Errorf("list collections: %w", err)
		}
		c.Seed(conn, cols)

		if id, ok := c.lookup(k); ok {
			return id, nil
		}
		return "", fmt.Errorf("%q: %w", name, domain.ErrCollectionNotFound)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Seed inserts or replaces an entry for every listed collection.
func (c *Cache) Seed(conn domain.Connection, cols []domain.Collection) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, col := range cols {
		c.entries[keyFor(conn, col.Name)] = entry{id: col.ID, resolvedAt: now}
	}
}

// Invalidate drops the entry for a single name. Used after a rename (old
// name only) and after a collection delete.
func (c *Cache) Invalidate(conn domain.Connection, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, keyFor(conn, name))
}

// lookup returns a cached id when the entry exists and is younger than the
// TTL. An entry aged exactly TTL is stale.
func (c *Cache) lookup(k key) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[k]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.resolvedAt) >= c.ttl {
		return "", false
	}
	return e.id, true
}

func keyFor(conn domain.Connection, name string) key {
	return key{
		endpoint: conn.Endpoint,
		tenant:   conn.Tenant,
		database: conn.Database,
		name:     name,
	}
}

func flightKey(k key) string {
	return k.endpoint + "\x00" + k.tenant + "\x00" + k.database + "\x00" + k.name
}
