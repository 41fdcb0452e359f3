// Package storage opens the kv.Store selected by configuration, with the
// optional write journal and the browser process it may need.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgnsrekt/compass_chart/internal/browser"
	"github.com/dgnsrekt/compass_chart/internal/config"
	"github.com/dgnsrekt/compass_chart/internal/kv"
	"github.com/dgnsrekt/compass_chart/internal/kv/browserkv"
	"github.com/dgnsrekt/compass_chart/internal/kv/filekv"
	"github.com/dgnsrekt/compass_chart/internal/kv/journal"
	"github.com/dgnsrekt/compass_chart/internal/kv/sqlitekv"
	"github.com/dgnsrekt/compass_chart/internal/session"
)

const (
	journalBufferSize = 1024
	journalMaxSizeMB  = 50
)

// Backend is an opened store plus the key scheme to use with it.
type Backend struct {
	Store kv.Store
	Keys  session.Keys

	closers []func() error
}

// Close releases everything Open acquired, in reverse order.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func (b *Backend) onClose(fn func() error) {
	b.closers = append(b.closers, fn)
}

// Open builds the backend described by cfg.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	keys, ok := session.KeysForLayout(cfg.KeyLayout, cfg.KeyPrefix)
	if !ok {
		return nil, fmt.Errorf("unknown key layout %q", cfg.KeyLayout)
	}
	b := &Backend{Keys: keys}

	store, err := b.openStore(ctx, cfg)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	if cfg.JournalFile != "" {
		w := journal.NewWriter(cfg.JournalFile, journalBufferSize, journalMaxSizeMB)
		b.onClose(w.Close)
		store = journal.Wrap(store, w)
		slog.Info("storage journal enabled", "file", cfg.JournalFile)
	}
	b.Store = store

	slog.Info("storage opened", "backend", cfg.StorageBackend, "key_layout", cfg.KeyLayout, "key_prefix", cfg.KeyPrefix)
	return b, nil
}

func (b *Backend) openStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendFile:
		return filekv.NewStore(cfg.StorageDir)
	case config.BackendSQLite:
		s, err := sqlitekv.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.onClose(s.Close)
		return s, nil
	case config.BackendBrowser:
		if cfg.BrowserLaunch {
			l := browser.NewLauncher(browser.Config{
				CDPAddress: cfg.CDPAddress,
				CDPPort:    cfg.CDPPort,
				StartURL:   cfg.BrowserOriginURL,
				ProfileDir: cfg.BrowserProfileDir,
				Headless:   cfg.BrowserHeadless,
				BinaryPath: cfg.BrowserBinary,
			})
			if err := l.Launch(ctx); err != nil {
				return nil, fmt.Errorf("launch browser: %w", err)
			}
			b.onClose(l.Stop)
		}
		s, err := browserkv.Open(ctx, browserkv.Config{
			CDPURL:      cfg.CDPURL(),
			OriginURL:   cfg.BrowserOriginURL,
			EvalTimeout: cfg.EvalTimeout(),
		})
		if err != nil {
			return nil, err
		}
		b.onClose(s.Close)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
