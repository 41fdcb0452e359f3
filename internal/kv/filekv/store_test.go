package filekv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/compass_chart/internal/kv/kvtest"
)

func TestStoreContract(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	kvtest.Run(t, store)
}

func TestStorePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := first.Set(ctx, "chart-points/A", `[{"name":"Origin"}]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	second, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	v, ok, err := second.Get(ctx, "chart-points/A")
	if err != nil || !ok || v != `[{"name":"Origin"}]` {
		t.Fatalf("Get() = %q, %v, %v", v, ok, err)
	}
}

func TestStoreKeepsFilesInsideDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Set(context.Background(), "../../escape", "x"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), ".json") {
		t.Fatalf("dir entries = %v; want one json file", entries)
	}
	if _, err := os.Stat(filepath.Join(dir, "..", "..", "escape")); err == nil {
		t.Fatalf("key escaped the store directory")
	}
}

func TestStoreRejectsLongKeys(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	key := "chart-points/" + strings.Repeat("x", maxKeyBytes)
	if err := store.Set(context.Background(), key, "[]"); err == nil {
		t.Fatalf("Set(long key) error = nil; want error")
	}
}

func TestGetCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	p, _ := store.path("chart-ids")
	if err := os.WriteFile(p, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, _, err := store.Get(context.Background(), "chart-ids"); err == nil {
		t.Fatalf("Get(corrupt) error = nil; want error")
	}
}
