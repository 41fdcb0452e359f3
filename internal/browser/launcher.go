// Package browser starts a local Chromium that serves the chart page, for
// the browser-backed store.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Config holds browser launch configuration.
type Config struct {
	CDPAddress   string
	CDPPort      int
	StartURL     string
	ProfileDir   string
	Headless     bool
	BinaryPath   string
	ReadyTimeout time.Duration
	StopTimeout  time.Duration
}

// Launcher manages the lifecycle of a browser process.
type Launcher struct {
	cfg     Config
	cmd     *exec.Cmd
	running bool
}

func NewLauncher(cfg Config) *Launcher {
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 15 * time.Second
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 5 * time.Second
	}
	return &Launcher{cfg: cfg}
}

// browserNames are looked up on PATH; appBundles are checked as absolute
// paths on macOS.
var (
	browserNames = []string{"chromium-browser", "chromium", "google-chrome", "google-chrome-stable"}
	appBundles   = []string{
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
)

// detectBrowser returns explicit when set, otherwise the first Chrome or
// Chromium binary found.
func detectBrowser(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("browser binary %s: %w", explicit, err)
		}
		return explicit, nil
	}
	for _, name := range browserNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	if runtime.GOOS == "darwin" {
		for _, path := range appBundles {
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
	}
	return "", fmt.Errorf("no supported browser found (tried %s); set BROWSER_BINARY", strings.Join(browserNames, ", "))
}

// cdpVersion is the subset of /json/version the launcher reads.
type cdpVersion struct {
	Browser              string `json:"Browser"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

func isPortInUse(address string, port int) bool {
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(address, strconv.Itoa(port)), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// probeCDP fetches /json/version and fails unless it names a debugger URL.
func probeCDP(ctx context.Context, client *http.Client, url string) (cdpVersion, error) {
	var v cdpVersion
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return v, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return v, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return v, fmt.Errorf("%s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return v, fmt.Errorf("%s: decode: %w", url, err)
	}
	if v.WebSocketDebuggerURL == "" {
		return v, fmt.Errorf("%s: not a CDP endpoint", url)
	}
	return v, nil
}

func (l *Launcher) versionURL() string {
	return "http://" + net.JoinHostPort(l.cfg.CDPAddress, strconv.Itoa(l.cfg.CDPPort)) + "/json/version"
}

func (l *Launcher) args() []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", l.cfg.CDPPort),
		fmt.Sprintf("--remote-debugging-address=%s", l.cfg.CDPAddress),
		fmt.Sprintf("--user-data-dir=%s", l.cfg.ProfileDir),
		"--no-first-run",
		"--no-default-browser-check",
		"--disable-dev-shm-usage",
		"--disable-breakpad",
	}
	if l.cfg.Headless {
		args = append(args, "--headless=new")
	}
	return append(args, l.cfg.StartURL)
}

// Launch starts the browser unless something already listens on the CDP
// port. The profile directory persists localStorage between runs.
func (l *Launcher) Launch(ctx context.Context) error {
	if isPortInUse(l.cfg.CDPAddress, l.cfg.CDPPort) {
		v, err := probeCDP(ctx, &http.Client{Timeout: time.Second}, l.versionURL())
		if err != nil {
			return fmt.Errorf("CDP port %d is taken by another process: %w", l.cfg.CDPPort, err)
		}
		slog.Info("browser already running, skipping launch",
			"address", l.cfg.CDPAddress, "port", l.cfg.CDPPort, "browser", v.Browser)
		return nil
	}

	browserPath, err := detectBrowser(l.cfg.BinaryPath)
	if err != nil {
		return err
	}
	slog.Info("detected browser", "path", browserPath)

	if err := os.MkdirAll(l.cfg.ProfileDir, 0o755); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}

	l.cmd = exec.Command(browserPath, l.args()...)
	l.cmd.Stdout = os.Stdout
	l.cmd.Stderr = os.Stderr

	if err := l.cmd.Start(); err != nil {
		return fmt.Errorf("start browser: %w", err)
	}
	l.running = true
	slog.Info("browser process started", "pid", l.cmd.Process.Pid, "headless", l.cfg.Headless)

	if err := l.waitForCDP(ctx); err != nil {
		_ = l.Stop()
		return fmt.Errorf("waiting for CDP: %w", err)
	}
	slog.Info("CDP endpoint ready",
		"address", l.cfg.CDPAddress, "port", l.cfg.CDPPort)

	return nil
}

// waitForCDP polls /json/version until the browser answers as a CDP endpoint.
func (l *Launcher) waitForCDP(ctx context.Context) error {
	url := l.versionURL()
	deadline := time.After(l.cfg.ReadyTimeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	client := &http.Client{Timeout: time.Second}
	var lastErr error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			return fmt.Errorf("CDP did not become ready within %s at %s: %w", l.cfg.ReadyTimeout, url, lastErr)
		case <-ticker.C:
			v, err := probeCDP(ctx, client, url)
			if err != nil {
				lastErr = err
				continue
			}
			slog.Debug("CDP version", "browser", v.Browser, "ws", v.WebSocketDebuggerURL)
			return nil
		}
	}
}

// Running reports whether this launcher spawned a browser process.
func (l *Launcher) Running() bool {
	return l.running
}

// Stop sends SIGTERM to a browser this launcher started and waits up to
// StopTimeout before killing it. The profile directory is left in place.
func (l *Launcher) Stop() error {
	if !l.running || l.cmd == nil || l.cmd.Process == nil {
		return nil
	}
	defer func() { l.running = false }()

	pid := l.cmd.Process.Pid
	slog.Info("stopping browser", "pid", pid)
	if err := l.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal browser %d: %w", pid, err)
	}

	done := make(chan error, 1)
	go func() { done <- l.cmd.Wait() }()

	select {
	case err := <-done:
		slog.Info("browser stopped", "pid", pid)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil
		}
		return err
	case <-time.After(l.cfg.StopTimeout):
		slog.Warn("browser did not exit, killing", "pid", pid, "timeout", l.cfg.StopTimeout)
		if err := l.cmd.Process.Kill(); err != nil {
			return fmt.Errorf("kill browser %d: %w", pid, err)
		}
		<-done
		return nil
	}
}
