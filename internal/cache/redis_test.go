package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"test"},
		},
		{
			name:  "multiple parts",
			parts: []string{"test", "key", "with", "many", "parts"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// MD5 hex
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}

	if HashKey("a", "b") == HashKey("a", "c") {
		t.Error("HashKey() should differ for different parts")
	}
}

func TestRedisStore_NamespaceKey(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		key      string
		expected string
	}{
		{"with prefix", "yatube", "feed:abc", "yatube:feed:abc"},
		{"without prefix", "", "feed:abc", "feed:abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &RedisStore{prefix: tt.prefix}
			if got := store.namespaceKey(tt.key); got != tt.expected {
				t.Errorf("namespaceKey() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestRedisStore_Get(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisFromClient(client, "yatube")
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		mock.ExpectGet("yatube:k").SetVal("page")

		val, found, err := store.Get(ctx, "k")
		if err != nil || !found || string(val) != "page" {
			t.Fatalf("Get() = %q, %v, %v", val, found, err)
		}
	})

	t.Run("miss", func(t *testing.T) {
		mock.ExpectGet("yatube:missing").RedisNil()

		val, found, err := store.Get(ctx, "missing")
		if err != nil || found || val != nil {
			t.Fatalf("Get() = %q, %v, %v", val, found, err)
		}
	})

	t.Run("error", func(t *testing.T) {
		mock.ExpectGet("yatube:broken").SetErr(redis.TxFailedErr)

		if _, _, err := store.Get(ctx, "broken"); err == nil {
			t.Fatal("Get() should return the Redis error")
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Redis expectations not met: %v", err)
	}
}

func TestRedisStore_Set(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisFromClient(client, "yatube")

	mock.ExpectSet("yatube:k", []byte("page"), 20*time.Second).SetVal("OK")

	if err := store.Set(context.Background(), "k", []byte("page"), 20*time.Second); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Redis expectations not met: %v", err)
	}
}

func TestRedisStore_Clear(t *testing.T) {
	client, mock := redismock.NewClientMock()
	store := NewRedisFromClient(client, "yatube")

	mock.ExpectScan(0, "yatube:*", scanBatch).SetVal([]string{"yatube:a", "yatube:b"}, 7)
	mock.ExpectDel("yatube:a", "yatube:b").SetVal(2)
	mock.ExpectScan(7, "yatube:*", scanBatch).SetVal([]string{"yatube:c"}, 0)
	mock.ExpectDel("yatube:c").SetVal(1)

	if err := store.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Redis expectations not met: %v", err)
	}
}
