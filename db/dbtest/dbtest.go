// Package dbtest opens throwaway sqlite databases for tests.
package dbtest

import (
	"testing"

	"github.com/puoklam/intersection-backend/db"
	"gorm.io/gorm"
)

// New returns a migrated in-memory database closed when t ends. The pool
// is pinned to one connection because every sqlite :memory: connection is
// a separate database.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	d, err := db.Open("sqlite::memory:", 1)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close(d) })
	return d
}

func NewStore(t testing.TB) *db.Store {
	return db.NewStore(New(t))
}
