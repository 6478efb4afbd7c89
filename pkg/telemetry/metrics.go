package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// Counters recorded by the content services.
var (
	instrumentsOnce sync.Once

	feedCacheHits   otelmetric.Int64Counter
	feedCacheMisses otelmetric.Int64Counter
	postsCreated    otelmetric.Int64Counter
	commentsCreated otelmetric.Int64Counter
	followsChanged  otelmetric.Int64Counter
	rpcCalls        otelmetric.Int64Counter
)

func initInstruments(serviceName string) {
	instrumentsOnce.Do(func() {
		meter := otel.Meter(serviceName)
		feedCacheHits, _ = meter.Int64Counter("yatube.feed_cache.hits",
			otelmetric.WithDescription("Home feed cache hits"))
		feedCacheMisses, _ = meter.Int64Counter("yatube.feed_cache.misses",
			otelmetric.WithDescription("Home feed cache misses"))
		postsCreated, _ = meter.Int64Counter("yatube.posts.created")
		commentsCreated, _ = meter.Int64Counter("yatube.comments.created")
		followsChanged, _ = meter.Int64Counter("yatube.follows.changed",
			otelmetric.WithDescription("Follow edges created or removed"))
		rpcCalls, _ = meter.Int64Counter("yatube.rpc.calls",
			otelmetric.WithDescription("JSON-RPC calls by method and result code"))
	})
}

func add(ctx context.Context, c otelmetric.Int64Counter, attrs ...attribute.KeyValue) {
	if c == nil {
		return
	}
	c.Add(ctx, 1, otelmetric.WithAttributes(attrs...))
}

// RecordCacheLookup counts a home feed cache hit or miss.
func RecordCacheLookup(ctx context.Context, hit bool) {
	if hit {
		add(ctx, feedCacheHits)
		return
	}
	add(ctx, feedCacheMisses)
}

// RecordPostCreated counts a created post.
func RecordPostCreated(ctx context.Context) { add(ctx, postsCreated) }

// RecordCommentCreated counts a created comment.
func RecordCommentCreated(ctx context.Context) { add(ctx, commentsCreated) }

// RecordFollowChange counts follow edges actually created or removed.
func RecordFollowChange(ctx context.Context, action string) {
	add(ctx, followsChanged, attribute.String("action", action))
}

// RecordRPCCall counts a dispatched JSON-RPC call. code is 0 on success.
func RecordRPCCall(ctx context.Context, method string, code int) {
	add(ctx, rpcCalls, attribute.String("method", method), attribute.Int("code", code))
}
