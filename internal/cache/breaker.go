package cache

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/yatube/yatube/pkg/logging"
)

// BreakerStore stops calling a failing store for a while, so a dead Redis
// costs one fast miss per read instead of a network timeout.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next in a circuit breaker named name
func NewBreaker(name string, next Store) *BreakerStore {
	logger := logging.WithComponent("cache")
	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Cache circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}
	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker(st)}
}

type getResult struct {
	value []byte
	found bool
}

// Get reads through the breaker
func (b *BreakerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		v, found, err := b.next.Get(ctx, key)
		return getResult{value: v, found: found}, err
	})
	if err != nil {
		return nil, false, err
	}
	r := res.(getResult)
	return r.value, r.found, nil
}

// Set writes through the breaker
func (b *BreakerStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	return err
}

// Clear always reaches the underlying store; an explicit invalidation must not be skipped.
func (b *BreakerStore) Clear(ctx context.Context) error {
	return b.next.Clear(ctx)
}

// State returns the breaker state
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) Health(ctx context.Context) error { return b.next.Health(ctx) }

func (b *BreakerStore) Close() error { return b.next.Close() }
