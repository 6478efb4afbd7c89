// Package dbtest provides a migrated in-memory store for tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/pkg/config"
)

var seq atomic.Int64

// New opens a fresh in-memory SQLite database, migrates it and closes it when the test ends.
func New(t testing.TB) *db.DB {
	t.Helper()

	name := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '_'
	}, t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, seq.Add(1))

	database, err := db.New(&config.DatabaseConfig{Driver: "sqlite", URL: dsn}, "error")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return database
}

// Repository returns a repository over a fresh database.
func Repository(t testing.TB) *db.Repository {
	t.Helper()
	return db.NewRepository(New(t).DB)
}
