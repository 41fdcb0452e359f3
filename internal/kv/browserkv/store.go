// Package browserkv stores entries in a page's window.localStorage through
// the Chrome DevTools Protocol, so charts saved by the web front end and by
// this service share one store.
package browserkv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// Config selects the browser and the origin whose localStorage is used.
type Config struct {
	CDPURL      string
	OriginURL   string
	EvalTimeout time.Duration
}

// Store is a kv.Store over window.localStorage of one browser tab.
type Store struct {
	cfg Config

	mu          sync.Mutex
	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

type getResult struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

// Open connects to the browser at cfg.CDPURL and attaches to a tab showing
// cfg.OriginURL, opening one when none exists.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if strings.TrimSpace(cfg.CDPURL) == "" {
		return nil, errors.New("browser store: missing CDP URL")
	}
	if strings.TrimSpace(cfg.OriginURL) == "" {
		return nil, errors.New("browser store: missing origin URL")
	}
	if cfg.EvalTimeout <= 0 {
		cfg.EvalTimeout = 5 * time.Second
	}

	slog.Info("browser store connect start", "cdp_url", cfg.CDPURL, "origin", cfg.OriginURL)
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), cfg.CDPURL)

	probeCtx, probeCancel := chromedp.NewContext(allocCtx)
	defer probeCancel()
	if err := runWithCaller(ctx, probeCtx); err != nil {
		allocCancel()
		return nil, fmt.Errorf("browser store: connect: %w", err)
	}
	targets, err := chromedp.Targets(probeCtx)
	if err != nil {
		allocCancel()
		return nil, fmt.Errorf("browser store: list targets: %w", err)
	}

	s := &Store{cfg: cfg, allocCtx: allocCtx, allocCancel: allocCancel}
	if id, ok := matchTarget(targets, cfg.OriginURL); ok {
		s.tabCtx, s.tabCancel = chromedp.NewContext(allocCtx, chromedp.WithTargetID(id))
		if err := runWithCaller(ctx, s.tabCtx); err != nil {
			s.Close()
			return nil, fmt.Errorf("browser store: attach %s: %w", id, err)
		}
		slog.Info("browser store attached", "target_id", id)
		return s, nil
	}

	s.tabCtx, s.tabCancel = chromedp.NewContext(allocCtx)
	if err := runWithCaller(ctx, s.tabCtx, chromedp.Navigate(cfg.OriginURL)); err != nil {
		s.Close()
		return nil, fmt.Errorf("browser store: open %s: %w", cfg.OriginURL, err)
	}
	slog.Info("browser store opened tab", "origin", cfg.OriginURL)
	return s, nil
}

// Close detaches from the tab and the browser.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tabCancel != nil {
		s.tabCancel()
		s.tabCancel = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var out getResult
	if err := s.eval(ctx, jsGetItem(key), &out); err != nil {
		return "", false, fmt.Errorf("browser store: get %q: %w", key, err)
	}
	return out.Value, out.Found, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	var ok bool
	if err := s.eval(ctx, jsSetItem(key, value), &ok); err != nil {
		return fmt.Errorf("browser store: set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	var ok bool
	if err := s.eval(ctx, jsRemoveItem(key), &ok); err != nil {
		return fmt.Errorf("browser store: remove %q: %w", key, err)
	}
	return nil
}

func (s *Store) eval(ctx context.Context, js string, out any) error {
	s.mu.Lock()
	tabCtx := s.tabCtx
	s.mu.Unlock()
	if tabCtx == nil {
		return errors.New("not connected")
	}

	evalCtx, cancel := context.WithTimeout(tabCtx, s.cfg.EvalTimeout)
	defer cancel()
	return runWithCaller(ctx, evalCtx, chromedp.Evaluate(js, out, awaitPromise))
}

func awaitPromise(p *runtime.EvaluateParams) *runtime.EvaluateParams {
	return p.WithAwaitPromise(true)
}

// runWithCaller runs actions on a chromedp context while honoring the
// caller's cancellation; chromedp contexts must derive from the allocator.
func runWithCaller(caller, cdpCtx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(cdpCtx)
	defer cancel()
	stop := context.AfterFunc(caller, cancel)
	defer stop()
	err := chromedp.Run(runCtx, actions...)
	if err != nil && caller.Err() != nil {
		return caller.Err()
	}
	return err
}

func matchTarget(targets []*target.Info, originURL string) (target.ID, bool) {
	origin := strings.TrimRight(strings.ToLower(originURL), "/")
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(t.URL), origin) {
			return t.TargetID, true
		}
	}
	return "", false
}

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func jsGetItem(key string) string {
	return `(function(){
const v = window.localStorage.getItem(` + jsString(key) + `);
return v === null ? {found:false, value:""} : {found:true, value:v};
})()`
}

func jsSetItem(key, value string) string {
	return `(function(){
window.localStorage.setItem(` + jsString(key) + `, ` + jsString(value) + `);
return true;
})()`
}

func jsRemoveItem(key string) string {
	return `(function(){
window.localStorage.removeItem(` + jsString(key) + `);
return true;
})()`
}
