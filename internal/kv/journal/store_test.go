package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/compass_chart/internal/kv"
	"github.com/dgnsrekt/compass_chart/internal/kv/kvtest"
)

func TestStoreContract(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "journal.jsonl"), 64, 1)
	t.Cleanup(func() { _ = w.Close() })
	kvtest.Run(t, Wrap(kv.NewMemory(), w))
}

func TestStoreJournalsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.jsonl")
	w := NewWriter(path, 64, 1)
	store := Wrap(kv.NewMemory(), w)
	ctx := context.Background()

	if err := store.Set(ctx, "chart-ids", `["A"]`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, _, err := store.Get(ctx, "chart-ids"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if err := store.Remove(ctx, "chart-points/A"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("json.Unmarshal(%q) error = %v", sc.Text(), err)
		}
		records = append(records, r)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d; want 2 (reads are not journaled)", len(records))
	}
	if records[0].Op != "set" || records[0].Key != "chart-ids" || records[0].Value != `["A"]` {
		t.Fatalf("records[0] = %+v", records[0])
	}
	if records[1].Op != "remove" || records[1].Key != "chart-points/A" {
		t.Fatalf("records[1] = %+v", records[1])
	}
}

func TestWriterRejectsAfterClose(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "journal.jsonl"), 1, 1)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Write(Record{Op: "set"}); err != errClosed {
		t.Fatalf("Write() after Close = %v; want %v", err, errClosed)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}
