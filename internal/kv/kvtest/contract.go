// Package kvtest holds the behavior every kv.Store adapter must share.
package kvtest

import (
	"context"
	"testing"

	"github.com/dgnsrekt/compass_chart/internal/kv"
)

// Run exercises store against the kv.Store contract. The store must start
// empty.
func Run(t *testing.T, store kv.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		v, ok, err := store.Get(ctx, "chart-ids")
		if err != nil || ok || v != "" {
			t.Fatalf("Get(missing) = %q, %v, %v; want \"\", false, nil", v, ok, err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := store.Set(ctx, "chart-ids", `["A"]`); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, ok, err := store.Get(ctx, "chart-ids")
		if err != nil || !ok || v != `["A"]` {
			t.Fatalf("Get() = %q, %v, %v; want [\"A\"], true, nil", v, ok, err)
		}
	})

	t.Run("last write wins", func(t *testing.T) {
		if err := store.Set(ctx, "chart-ids", `["A","B"]`); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		v, _, _ := store.Get(ctx, "chart-ids")
		if v != `["A","B"]` {
			t.Fatalf("Get() = %q; want [\"A\",\"B\"]", v)
		}
	})

	t.Run("keys with slashes and unicode", func(t *testing.T) {
		key := "chart-points/Économie ../x"
		if err := store.Set(ctx, key, "[]"); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
		v, ok, err := store.Get(ctx, key)
		if err != nil || !ok || v != "[]" {
			t.Fatalf("Get(%q) = %q, %v, %v", key, v, ok, err)
		}
	})

	t.Run("empty value is present", func(t *testing.T) {
		if err := store.Set(ctx, "last-selected-chart-id", ""); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
		_, ok, err := store.Get(ctx, "last-selected-chart-id")
		if err != nil || !ok {
			t.Fatalf("Get(empty value) ok = %v, err = %v; want true, nil", ok, err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := store.Remove(ctx, "chart-ids"); err != nil {
			t.Fatalf("Remove() error = %v", err)
		}
		if _, ok, _ := store.Get(ctx, "chart-ids"); ok {
			t.Fatalf("Get() after Remove ok = true")
		}
		if err := store.Remove(ctx, "never-set"); err != nil {
			t.Fatalf("Remove(missing) error = %v; want nil", err)
		}
	})
}
