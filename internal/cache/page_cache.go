package cache

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/yatube/yatube/pkg/logging"
	"github.com/yatube/yatube/pkg/telemetry"
)

// DefaultTTL is how long a rendered home feed page is served unchanged.
const DefaultTTL = 20 * time.Second

// PageCache caches rendered home feed pages. Writes to posts never invalidate
// it: a page may be up to one ttl stale, and only InvalidateAll clears it early.
type PageCache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewPageCache creates a page cache over store
func NewPageCache(store Store, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PageCache{store: store, ttl: ttl, logger: logging.WithComponent("feed_cache")}
}

// PageKey derives the cache key from everything that shapes the response:
// the route and its full query string.
func PageKey(path string, query url.Values) string {
	// Encode sorts by key, so parameter order does not matter.
	return "feed:" + HashKey(path, query.Encode())
}

// Fetch returns the cached bytes for key, or computes, stores and returns them.
// A failing store degrades to computing every time.
func (p *PageCache) Fetch(ctx context.Context, key string, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	val, found, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found {
		telemetry.RecordCacheLookup(ctx, true)
		return val, nil
	}
	telemetry.RecordCacheLookup(ctx, false)

	val, err = compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.store.Set(ctx, key, val, p.ttl); err != nil {
		p.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return val, nil
}

// InvalidateAll drops every cached page immediately
func (p *PageCache) InvalidateAll(ctx context.Context) error {
	if err := p.store.Clear(ctx); err != nil {
		return err
	}
	p.logger.Info("Feed cache invalidated")
	return nil
}

// TTL returns the entry lifetime
func (p *PageCache) TTL() time.Duration {
	return p.ttl
}

// Health checks the backing store
func (p *PageCache) Health(ctx context.Context) error {
	return p.store.Health(ctx)
}

// Close releases the backing store
func (p *PageCache) Close() error {
	return p.store.Close()
}
