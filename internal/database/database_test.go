package database

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSQLiteDir(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{dsn: "file:data/clinic.db?_pragma=foreign_keys(1)", want: "data"},
		{dsn: "/var/lib/dispensary/clinic.db", want: "/var/lib/dispensary"},
		{dsn: "file:clinic.db", want: ""},
		{dsn: ":memory:", want: ""},
		{dsn: "file::memory:?cache=shared", want: ""},
	}
	for _, tt := range tests {
		if got := sqliteDir(tt.dsn); got != tt.want {
			t.Errorf("sqliteDir(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}

func TestOpenCreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "nested")
	db, err := Open("sqlite", "file:"+filepath.Join(dir, "clinic.db")+"?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("database directory not created: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE scratch (id INTEGER)`); err != nil {
		t.Errorf("database not writable: %v", err)
	}
}
