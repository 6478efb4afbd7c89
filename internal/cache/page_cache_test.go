package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageKey(t *testing.T) {
	a := PageKey("/api/v1/posts", url.Values{"page": {"2"}, "x": {"1"}})
	b := PageKey("/api/v1/posts", url.Values{"x": {"1"}, "page": {"2"}})
	c := PageKey("/api/v1/posts", url.Values{"page": {"3"}})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, PageKey("/api/v1/posts", nil), PageKey("/rpc", nil))
}

func TestPageCache_StaleWithinTTL(t *testing.T) {
	clock := newFakeClock()
	pc := NewPageCache(NewMemoryWithClock(clock.Now), 20*time.Second)
	ctx := context.Background()

	version := 1
	render := func(context.Context) ([]byte, error) {
		return []byte(fmt.Sprintf("feed v%d", version)), nil
	}

	first, err := pc.Fetch(ctx, "k", render)
	require.NoError(t, err)

	// A write happens; the cached page must not change inside the window.
	version = 2
	clock.Advance(10 * time.Second)
	second, err := pc.Fetch(ctx, "k", render)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	clock.Advance(10 * time.Second)
	third, err := pc.Fetch(ctx, "k", render)
	require.NoError(t, err)
	assert.Equal(t, "feed v2", string(third))
}

func TestPageCache_InvalidateAll(t *testing.T) {
	pc := NewPageCache(NewMemory(), time.Hour)
	ctx := context.Background()

	version := 1
	render := func(context.Context) ([]byte, error) {
		return []byte(fmt.Sprintf("feed v%d", version)), nil
	}

	_, err := pc.Fetch(ctx, "k", render)
	require.NoError(t, err)
	version = 2

	require.NoError(t, pc.InvalidateAll(ctx))
	got, err := pc.Fetch(ctx, "k", render)
	require.NoError(t, err)
	assert.Equal(t, "feed v2", string(got))
}

func TestPageCache_ComputeErrorNotCached(t *testing.T) {
	store := NewMemory()
	pc := NewPageCache(store, time.Minute)
	boom := errors.New("boom")

	_, err := pc.Fetch(context.Background(), "k", func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.Len())
}

type failingStore struct {
	MemoryStore
	calls int
}

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) {
	f.calls++
	return nil, false, errors.New("connection refused")
}

func (f *failingStore) Set(context.Context, string, []byte, time.Duration) error {
	f.calls++
	return errors.New("connection refused")
}

func TestPageCache_BreakerDegradesToCompute(t *testing.T) {
	inner := &failingStore{}
	breaker := NewBreaker("test", inner)
	pc := NewPageCache(breaker, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		got, err := pc.Fetch(ctx, "k", func(context.Context) ([]byte, error) { return []byte("fresh"), nil })
		require.NoError(t, err)
		assert.Equal(t, "fresh", string(got))
	}

	assert.Equal(t, gobreaker.StateOpen, breaker.State())
	// Three consecutive failures trip the breaker; later calls never reach the store.
	assert.Equal(t, 3, inner.calls)
}
