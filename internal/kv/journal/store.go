// Package journal wraps a kv.Store and records every successful write as a
// JSON line, giving an append-only audit trail of chart changes.
package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgnsrekt/compass_chart/internal/kv"
)

// Record is one journal line.
type Record struct {
	At    time.Time `json:"at"`
	Op    string    `json:"op"`
	Key   string    `json:"key"`
	Value string    `json:"value,omitempty"`
}

type recorder interface {
	Write(record any) error
}

// Store forwards to an inner kv.Store and journals writes.
type Store struct {
	inner kv.Store
	rec   recorder
	now   func() time.Time
}

// Wrap returns a journaling Store around inner.
func Wrap(inner kv.Store, w *Writer) *Store {
	return &Store{inner: inner, rec: w, now: time.Now}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, key)
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		return err
	}
	s.record(Record{At: s.now().UTC(), Op: "set", Key: key, Value: value})
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.inner.Remove(ctx, key); err != nil {
		return err
	}
	s.record(Record{At: s.now().UTC(), Op: "remove", Key: key})
	return nil
}

func (s *Store) record(r Record) {
	if err := s.rec.Write(r); err != nil {
		slog.Debug("journal record dropped", "op", r.Op, "key", r.Key, "error", err)
	}
}
