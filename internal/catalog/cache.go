package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/confplan/confplan/internal/confplan"
)

// DefaultTTL is the freshness window for a cached catalog.
const DefaultTTL = 30 * time.Minute

// Cache owns the one piece of cross-call mutable state in the engine: the
// last fetched catalog. Every non-persisted read path (search, details,
// filters, schedule) goes through Get; nothing else mutates it.
type Cache struct {
	client *Client
	ttl    time.Duration

	// Called with the freshly fetched catalog after a successful refresh,
	// before Get returns. Used to persist and ledger the batch.
	onRefresh func(ctx context.Context, sessions []confplan.Session)

	mu        sync.Mutex
	sessions  []confplan.Session
	fetchedAt time.Time
}

func NewCache(client *Client, ttl time.Duration, onRefresh func(ctx context.Context, sessions []confplan.Session)) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client:    client,
		ttl:       ttl,
		onRefresh: onRefresh,
	}
}

// Get returns the catalog, fetching only when the cache is cold, stale, or
// force is set. On a failed fetch any previous catalog, stale included, is
// returned instead of the error; with nothing cached the error propagates.
func (c *Cache) Get(ctx context.Context, force bool) ([]confplan.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.sessions != nil && time.Since(c.fetchedAt) < c.ttl {
		return c.sessions, nil
	}

	sessions, err := c.client.Fetch(ctx)
	if err != nil {
		if c.sessions != nil {
			slog.Warn("catalog fetch failed, serving cached data", "error", err, "age", time.Since(c.fetchedAt))
			return c.sessions, nil
		}
		return nil, err
	}

	c.sessions = sessions
	c.fetchedAt = time.Now()
	slog.Info("fetched catalog", "sessions", len(sessions))

	if c.onRefresh != nil {
		c.onRefresh(ctx, sessions)
	}

	return c.sessions, nil
}

// Invalidate drops the freshness of the cached catalog without discarding it,
// so the next Get refetches but a failed refetch can still fall back.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchedAt = time.Time{}
}
