package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/compass_chart/internal/config"
	"github.com/dgnsrekt/compass_chart/internal/kv/journal"
	"github.com/dgnsrekt/compass_chart/internal/session"
)

func baseConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		StorageBackend: backend,
		StorageDir:     filepath.Join(dir, "charts"),
		SQLitePath:     filepath.Join(dir, "charts.db"),
		KeyLayout:      "standard",
	}
}

func TestOpenBackends(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendFile, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			b, err := Open(ctx, baseConfig(t, backend))
			if err != nil {
				t.Fatalf("Open(%s) error = %v", backend, err)
			}
			defer b.Close()

			m := session.NewManager(b.Store, b.Keys)
			if err := m.CreateChart(ctx, "A"); err != nil {
				t.Fatalf("CreateChart() error = %v", err)
			}
			again := session.NewManager(b.Store, b.Keys)
			if err := again.LoadSavedSession(ctx); err != nil {
				t.Fatalf("LoadSavedSession() error = %v", err)
			}
			if id, _ := again.Loaded(); id != "A" {
				t.Fatalf("Loaded() = %q; want A", id)
			}
		})
	}
}

func TestOpenWithJournal(t *testing.T) {
	cfg := baseConfig(t, config.BackendMemory)
	cfg.JournalFile = filepath.Join(t.TempDir(), "journal.jsonl")

	b, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, ok := b.Store.(*journal.Store); !ok {
		t.Fatalf("Store = %T; want *journal.Store", b.Store)
	}
	if err := b.Store.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	data, err := os.ReadFile(cfg.JournalFile)
	if err != nil || len(data) == 0 {
		t.Fatalf("journal file = %q, %v; want a record", data, err)
	}
}

func TestOpenLegacyKeys(t *testing.T) {
	cfg := baseConfig(t, config.BackendMemory)
	cfg.KeyLayout = "legacy"
	b, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()
	if b.Keys != session.LegacyKeys() {
		t.Fatalf("Keys = %+v; want legacy keys", b.Keys)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), baseConfig(t, "redis")); err == nil {
		t.Fatalf("Open(redis) error = nil")
	}
}
