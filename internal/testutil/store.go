// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/config"
	"github.com/nhle/todolist/internal/store"
)

// NewTestStore creates a SQLite store in a temporary file with all
// migrations applied. It automatically closes the store when the test
// completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "todolist.db")
	s, err := store.Open(context.Background(), config.DriverSQLite, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}
