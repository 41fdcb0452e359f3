package sqlitekv

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/compass_chart/internal/kv/kvtest"
	_ "modernc.org/sqlite"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("Open(\"\") error = nil; want error")
	}
}

func TestStoreContract(t *testing.T) {
	kvtest.Run(t, openTestStore(t, filepath.Join(t.TempDir(), "compass.db")))
}

func TestOpenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compass.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := first.Set(context.Background(), "chart-ids", `["A"]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second := openTestStore(t, path)
	v, ok, err := second.Get(context.Background(), "chart-ids")
	if err != nil || !ok || v != `["A"]` {
		t.Fatalf("Get() after reopen = %q, %v, %v", v, ok, err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	defer func() {
		_ = sqlDB.Close()
	}()
	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("schema_migrations rows = %d; want 1", count)
	}
}

func TestUpSection(t *testing.T) {
	got := upSection("-- +migrate Up\nCREATE TABLE a (x);\n-- +migrate Down\nDROP TABLE a;\n")
	if got != "\nCREATE TABLE a (x);\n" {
		t.Fatalf("upSection() = %q", got)
	}
	if got := upSection("SELECT 1;"); got != "SELECT 1;" {
		t.Fatalf("upSection(no markers) = %q", got)
	}
}

func TestNilStoreErrors(t *testing.T) {
	var s *Store
	if _, _, err := s.Get(context.Background(), "k"); err == nil {
		t.Fatalf("Get() on nil store error = nil")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() on nil store = %v; want nil", err)
	}
}
