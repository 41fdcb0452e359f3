package browser

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"testing"
)

func TestArgsEndWithStartURL(t *testing.T) {
	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: 9333, StartURL: "http://localhost:4200/", ProfileDir: "/tmp/p", Headless: true})
	args := l.args()
	if got := args[len(args)-1]; got != "http://localhost:4200/" {
		t.Fatalf("last arg = %q; want start URL", got)
	}
	for _, want := range []string{"--remote-debugging-port=9333", "--user-data-dir=/tmp/p", "--headless=new"} {
		if !slices.Contains(args, want) {
			t.Fatalf("args = %v; missing %s", args, want)
		}
	}

	l = NewLauncher(Config{StartURL: "x"})
	if slices.Contains(l.args(), "--headless=new") {
		t.Fatalf("headless flag set without Headless")
	}
}

func cdpServer(t *testing.T, body string) int {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/version" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.Listener.Addr().(*net.TCPAddr).Port
}

func TestLaunchSkipsWhenCDPRunning(t *testing.T) {
	port := cdpServer(t, `{"Browser":"Chrome/130","webSocketDebuggerUrl":"ws://127.0.0.1/devtools/browser/x"}`)

	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: port, ProfileDir: t.TempDir()})
	if err := l.Launch(context.Background()); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	if l.Running() {
		t.Fatalf("Running() = true; want launch skipped")
	}
	if err := l.Stop(); err != nil {
		t.Fatalf("Stop() after skipped launch error = %v", err)
	}
}

func TestLaunchRejectsForeignProcessOnPort(t *testing.T) {
	port := cdpServer(t, `{"hello":"world"}`)

	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: port, ProfileDir: t.TempDir()})
	if err := l.Launch(context.Background()); err == nil {
		t.Fatalf("Launch() error = nil; want port taken")
	}
	if l.Running() {
		t.Fatalf("Running() = true after rejected launch")
	}
}

func TestDetectBrowserExplicitMissing(t *testing.T) {
	if _, err := detectBrowser(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("detectBrowser(missing) error = nil")
	}
}
