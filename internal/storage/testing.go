package storage

import (
	"path/filepath"
	"testing"
)

// NewTestService opens a migrated database in a temporary directory and
// closes it when the test ends. Exported for use in other packages' tests.
func NewTestService(t testing.TB) *Service {
	t.Helper()

	db, err := Open(DefaultConfig(filepath.Join(t.TempDir(), "carddex-test.db")))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return NewService(db)
}
