// Package cache holds the home feed page cache and the stores behind it.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Store is a shared byte cache with per-entry time-to-live.
type Store interface {
	// Get returns the entry for key; found is false when it is absent or expired.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Clear drops every entry regardless of age.
	Clear(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}

var (
	// ErrCacheDisabled is returned when cache operations are attempted but cache is disabled
	ErrCacheDisabled = fmt.Errorf("cache is disabled")
)

// HashKey builds a fixed-length key from parts
func HashKey(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
