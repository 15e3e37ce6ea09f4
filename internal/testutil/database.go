package testutil

import (
	"path/filepath"
	"testing"

	"dms-go/internal/database"
)

// NewTestSessionDB opens a migrated session database in a temp directory.
// The database is automatically closed when the test completes.
func NewTestSessionDB(t testing.TB) *database.SessionDB {
	t.Helper()

	db, err := database.OpenSessionDB(filepath.Join(t.TempDir(), database.SessionDBFile))
	if err != nil {
		t.Fatalf("failed to open session database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
