// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/keepnote/internal/store"
)

// TestStore creates a temporary SQLite-backed record store that is
// automatically cleaned up.
func TestStore(t *testing.T) *store.SQLite {
	t.Helper()
	dbFile, err := os.CreateTemp("", "keepnote-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	st, err := store.OpenSQLite(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
