package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendSQLite  = "sqlite"
	BackendBrowser = "browser"
)

// Config holds configuration for the chart server and CLI.
type Config struct {
	// HTTP
	BindAddr         string   `env:"COMPASS_BIND_ADDR" envDefault:"127.0.0.1:8190"`
	PortCandidates   []string `env:"COMPASS_PORT_CANDIDATES" envSeparator:"," envDefault:"127.0.0.1:8191,127.0.0.1:8192,127.0.0.1:8193"`
	PortAutoFallback bool     `env:"COMPASS_PORT_AUTO_FALLBACK" envDefault:"true"`
	LogLevel         string   `env:"COMPASS_LOG_LEVEL" envDefault:"info"`
	LogFile          string   `env:"COMPASS_LOG_FILE" envDefault:"logs/compass_server.log"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	StorageDir     string `env:"STORAGE_DIR" envDefault:"./charts"`
	SQLitePath     string `env:"STORAGE_SQLITE_PATH" envDefault:"./charts.db"`
	KeyLayout      string `env:"STORAGE_KEY_LAYOUT" envDefault:"standard"`
	KeyPrefix      string `env:"STORAGE_KEY_PREFIX"`
	JournalFile    string `env:"STORAGE_JOURNAL_FILE"`

	// Browser-backed storage
	CDPAddress        string `env:"CHROMIUM_CDP_ADDRESS" envDefault:"127.0.0.1"`
	CDPPort           int    `env:"CHROMIUM_CDP_PORT" envDefault:"9220"`
	BrowserOriginURL  string `env:"BROWSER_ORIGIN_URL" envDefault:"http://localhost:4200/"`
	BrowserLaunch     bool   `env:"BROWSER_LAUNCH" envDefault:"false"`
	BrowserProfileDir string `env:"BROWSER_PROFILE_DIR" envDefault:"./browser_profile"`
	BrowserHeadless   bool   `env:"BROWSER_HEADLESS" envDefault:"true"`
	BrowserBinary     string `env:"BROWSER_BINARY"`
	EvalTimeoutMS     int    `env:"BROWSER_EVAL_TIMEOUT_MS" envDefault:"5000"`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}
	cfg := &Config{}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv fills target from environment variables using its struct tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.KeyLayout = strings.ToLower(strings.TrimSpace(c.KeyLayout))
	if c.EvalTimeoutMS < 1000 {
		c.EvalTimeoutMS = 1000
	}
	candidates := c.PortCandidates[:0]
	for _, addr := range c.PortCandidates {
		if addr = strings.TrimSpace(addr); addr != "" {
			candidates = append(candidates, addr)
		}
	}
	c.PortCandidates = candidates
}

// Validate rejects unknown enumerations.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendMemory, BackendFile, BackendSQLite, BackendBrowser:
	default:
		return fmt.Errorf("STORAGE_BACKEND %q: want memory, file, sqlite or browser", c.StorageBackend)
	}
	switch c.KeyLayout {
	case "standard", "legacy":
	default:
		return fmt.Errorf("STORAGE_KEY_LAYOUT %q: want standard or legacy", c.KeyLayout)
	}
	return nil
}

// CDPURL returns the CDP HTTP endpoint used by the chromedp remote allocator.
func (c *Config) CDPURL() string {
	return "http://" + c.CDPAddress + ":" + strconv.Itoa(c.CDPPort)
}

// EvalTimeout returns the per-call browser evaluation timeout.
func (c *Config) EvalTimeout() time.Duration {
	return time.Duration(c.EvalTimeoutMS) * time.Millisecond
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
