package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dgnsrekt/compass_chart/internal/api"
	"github.com/dgnsrekt/compass_chart/internal/board"
	"github.com/dgnsrekt/compass_chart/internal/config"
	"github.com/dgnsrekt/compass_chart/internal/controller"
	"github.com/dgnsrekt/compass_chart/internal/events"
	"github.com/dgnsrekt/compass_chart/internal/netutil"
	"github.com/dgnsrekt/compass_chart/internal/session"
	"github.com/dgnsrekt/compass_chart/internal/storage"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := setupLogger(cfg.SlogLevel(), cfg.LogFile); err != nil {
		if _, writeErr := io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n"); writeErr != nil {
			slog.Debug("logger setup stderr write failed", "error", writeErr)
		}
		os.Exit(1)
	}

	slog.Info("compass_server config loaded",
		"bind_addr", cfg.BindAddr,
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
		"storage_backend", cfg.StorageBackend,
		"key_layout", cfg.KeyLayout,
	)

	ln, err := netutil.Listen(cfg.BindAddr, cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to select bind address", "preferred", cfg.BindAddr, "error", err)
		os.Exit(1)
	}
	bindAddr := ln.Addr().String()
	if bindAddr != cfg.BindAddr {
		slog.Warn("preferred bind address unavailable, using fallback", "preferred", cfg.BindAddr, "addr", bindAddr)
	}

	backend, err := storage.Open(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to open storage", "backend", cfg.StorageBackend, "error", err)
		_ = ln.Close()
		os.Exit(1)
	}
	defer closeStorage(backend)

	broker := events.NewBroker()
	defer broker.Close()

	svc := controller.NewService(board.New(session.NewManager(backend.Store, backend.Keys)), broker)
	st, err := svc.Restore(context.Background())
	if err != nil {
		slog.Error("failed to restore session", "error", err)
		_ = ln.Close()
		closeStorage(backend)
		os.Exit(1)
	}
	slog.Info("session restored", "charts", len(st.Charts), "loaded_chart", st.LoadedChart, "points", len(st.Points))

	srv := &http.Server{Addr: bindAddr, Handler: api.NewServer(svc, broker)}

	go func() {
		slog.Info("compass_server listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("compass_server failed", "error", err)
			broker.Close()
			closeStorage(backend)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	// Open SSE and WebSocket streams end when the broker closes.
	broker.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("compass_server shutdown failed", "error", err)
	}
}

// closeStorage releases the backend. os.Exit skips deferred calls, so exit
// paths call it directly.
func closeStorage(backend *storage.Backend) {
	if err := backend.Close(); err != nil {
		slog.Warn("storage close failed", "error", err)
	}
}

func setupLogger(level slog.Level, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return err
	}

	logWriter := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    25,
		MaxBackups: 10,
		MaxAge:     14,
		Compress:   true,
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, logWriter), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
	return nil
}
