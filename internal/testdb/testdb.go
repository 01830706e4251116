// Package testdb opens throwaway migrated SQLite databases for tests.
package testdb

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"dispensary/m/internal/database"
	"dispensary/m/internal/migrations"
)

// Open returns a migrated database backed by a file in t.TempDir.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinic.db")
	db, err := database.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Count returns the number of rows in table.
func Count(t testing.TB, db *sqlx.DB, table string) int {
	t.Helper()
	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
