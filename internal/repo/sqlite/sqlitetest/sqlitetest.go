// Package sqlitetest provides migrated throwaway databases for tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkrupp/wtwr/internal/repo/sqlite"
)

// Open opens a migrated database in a temporary directory that is
// closed when the test ends.
func Open(t testing.TB) *sqlite.DB {
	t.Helper()

	db, err := sqlite.Open(context.Background(), sqlite.Config{
		DatabasePath: filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout:  5 * time.Second,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
