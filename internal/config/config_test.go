package config

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:8190" {
		t.Fatalf("BindAddr = %q; want 127.0.0.1:8190", cfg.BindAddr)
	}
	if cfg.StorageBackend != BackendFile || cfg.KeyLayout != "standard" {
		t.Fatalf("storage = %q/%q; want file/standard", cfg.StorageBackend, cfg.KeyLayout)
	}
	if got := cfg.CDPURL(); got != "http://127.0.0.1:9220" {
		t.Fatalf("CDPURL() = %q", got)
	}
	if len(cfg.PortCandidates) != 3 {
		t.Fatalf("PortCandidates = %v; want 3 entries", cfg.PortCandidates)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BACKEND", " SQLite ")
	t.Setenv("STORAGE_KEY_LAYOUT", "legacy")
	t.Setenv("COMPASS_PORT_CANDIDATES", "127.0.0.1:9001, ,127.0.0.1:9002")
	t.Setenv("COMPASS_LOG_LEVEL", "DEBUG")
	t.Setenv("BROWSER_EVAL_TIMEOUT_MS", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StorageBackend != BackendSQLite || cfg.KeyLayout != "legacy" {
		t.Fatalf("storage = %q/%q", cfg.StorageBackend, cfg.KeyLayout)
	}
	if want := []string{"127.0.0.1:9001", "127.0.0.1:9002"}; !reflect.DeepEqual(cfg.PortCandidates, want) {
		t.Fatalf("PortCandidates = %v; want %v", cfg.PortCandidates, want)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("SlogLevel() = %v; want debug", cfg.SlogLevel())
	}
	if cfg.EvalTimeout() != time.Second {
		t.Fatalf("EvalTimeout() = %v; want clamped to 1s", cfg.EvalTimeout())
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_BACKEND", "redis")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "STORAGE_BACKEND") {
		t.Fatalf("Load() error = %v; want STORAGE_BACKEND error", err)
	}
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("CHROMIUM_CDP_PORT", "not-an-int")
	var cfg Config
	err := ParseEnv(&cfg)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("ParseEnv() error = %v; want parse env prefix", err)
	}
}
