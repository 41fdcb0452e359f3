// Package session owns the chart catalog, the loaded chart and its points,
// and keeps them in sync with a kv.Store.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dgnsrekt/compass_chart/internal/apperr"
	"github.com/dgnsrekt/compass_chart/internal/kv"
	"github.com/dgnsrekt/compass_chart/internal/points"
)

// Manager is the chart session. It persists the loaded chart after every
// point mutation by acting as the points.Store persister.
type Manager struct {
	store kv.Store
	keys  Keys

	chartIDs []string
	loadedID string
	loaded   bool
	points   *points.Store
}

// NewManager returns an empty session backed by store.
func NewManager(store kv.Store, keys Keys) *Manager {
	m := &Manager{store: store, keys: keys}
	m.points = points.NewStore(m)
	return m
}

// Points returns the point store of the loaded chart.
func (m *Manager) Points() *points.Store { return m.points }

// Keys returns the key scheme in use.
func (m *Manager) Keys() Keys { return m.keys }

// ListCharts returns chart ids in creation order.
func (m *Manager) ListCharts() []string {
	return slices.Clone(m.chartIDs)
}

// HasChart reports whether id is in the catalog.
func (m *Manager) HasChart(id string) bool {
	return slices.Contains(m.chartIDs, id)
}

// Loaded returns the loaded chart id.
func (m *Manager) Loaded() (string, bool) {
	return m.loadedID, m.loaded
}

// PersistPoints writes the catalog, the last-selected marker and the point
// list of the loaded chart. With no chart loaded only the catalog is written.
func (m *Manager) PersistPoints(ctx context.Context, pts []points.Point) error {
	if err := m.writeCatalog(ctx); err != nil {
		return err
	}
	if !m.loaded {
		return nil
	}
	if err := m.set(ctx, m.keys.LastSelected, m.loadedID); err != nil {
		return err
	}
	return m.writePoints(ctx, m.loadedID, pts)
}

// CreateChart appends a chart named name, loads it with no points and
// persists. Empty and duplicate names are rejected without any change.
func (m *Manager) CreateChart(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("chart name is required")
	}
	if m.HasChart(name) {
		return apperr.New(apperr.CodeConflict, fmt.Sprintf("chart %q already exists", name), nil)
	}

	m.chartIDs = append(m.chartIDs, name)
	m.loadedID, m.loaded = name, true
	m.points.Reset(nil)
	slog.Debug("session chart created", "chart_id", name, "charts", len(m.chartIDs))
	return m.PersistPoints(ctx, nil)
}

// DeleteChart removes id and its point list. When id was loaded, the first
// remaining chart is loaded, or nothing when the catalog is now empty.
func (m *Manager) DeleteChart(ctx context.Context, id string) error {
	i := slices.Index(m.chartIDs, id)
	if i < 0 {
		return apperr.New(apperr.CodeChartNotFound, fmt.Sprintf("chart %q not found", id), nil)
	}
	wasLoaded := m.loaded && m.loadedID == id

	m.chartIDs = slices.Delete(m.chartIDs, i, i+1)
	if wasLoaded {
		m.unload()
	}
	slog.Debug("session chart deleted", "chart_id", id, "was_loaded", wasLoaded)

	if err := m.writeCatalog(ctx); err != nil {
		return err
	}
	if err := m.remove(ctx, m.keys.Points(id)); err != nil {
		return err
	}
	if !wasLoaded {
		return nil
	}
	if len(m.chartIDs) == 0 {
		return m.remove(ctx, m.keys.LastSelected)
	}
	return m.LoadChart(ctx, m.chartIDs[0])
}

// LoadChart reads the point list of id and makes it the loaded chart. A
// chart whose list is missing or undecodable is dropped from the catalog and
// the next chart is tried until one loads or none remain.
func (m *Manager) LoadChart(ctx context.Context, id string) error {
	if !m.HasChart(id) {
		return apperr.New(apperr.CodeChartNotFound, fmt.Sprintf("chart %q not found", id), nil)
	}

	for {
		pts, ok, err := m.readPoints(ctx, id)
		if err != nil {
			return err
		}
		if ok {
			m.points.Reset(pts)
			m.loadedID, m.loaded = id, true
			slog.Debug("session chart loaded", "chart_id", id, "points", len(pts))
			return m.set(ctx, m.keys.LastSelected, id)
		}

		slog.Warn("session dropping chart with missing points", "chart_id", id)
		m.chartIDs = slices.DeleteFunc(m.chartIDs, func(c string) bool { return c == id })
		if m.loaded && m.loadedID == id {
			m.unload()
		}
		if err := m.writeCatalog(ctx); err != nil {
			return err
		}
		if err := m.remove(ctx, m.keys.Points(id)); err != nil {
			return err
		}
		if len(m.chartIDs) == 0 {
			return nil
		}
		id = m.chartIDs[0]
	}
}

// LoadSavedSession restores the catalog and the last loaded chart. Missing
// entries leave the session in its first-run state.
func (m *Manager) LoadSavedSession(ctx context.Context) error {
	m.chartIDs = nil
	m.unload()

	raw, found, err := m.get(ctx, m.keys.ChartIDs)
	if err != nil || !found {
		return err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		slog.Warn("session catalog unreadable, starting empty", "key", m.keys.ChartIDs, "err", err)
		return nil
	}
	m.chartIDs = dedupe(ids)

	last, found, err := m.get(ctx, m.keys.LastSelected)
	if err != nil || !found {
		return err
	}
	if !m.HasChart(last) {
		if len(m.chartIDs) == 0 {
			return nil
		}
		slog.Warn("session last selected chart not in catalog", "chart_id", last, "fallback", m.chartIDs[0])
		last = m.chartIDs[0]
	}
	return m.LoadChart(ctx, last)
}

func (m *Manager) unload() {
	m.loadedID, m.loaded = "", false
	m.points.Reset(nil)
}

func (m *Manager) readPoints(ctx context.Context, id string) ([]points.Point, bool, error) {
	raw, found, err := m.get(ctx, m.keys.Points(id))
	if err != nil || !found {
		return nil, false, err
	}
	var pts []points.Point
	if err := json.Unmarshal([]byte(raw), &pts); err != nil {
		slog.Warn("session points unreadable", "chart_id", id, "err", err)
		return nil, false, nil
	}
	return pts, true, nil
}

func (m *Manager) writeCatalog(ctx context.Context) error {
	ids := m.chartIDs
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return apperr.Storage("encode chart catalog", err)
	}
	return m.set(ctx, m.keys.ChartIDs, string(b))
}

func (m *Manager) writePoints(ctx context.Context, id string, pts []points.Point) error {
	if pts == nil {
		pts = []points.Point{}
	}
	b, err := json.Marshal(pts)
	if err != nil {
		return apperr.Storage("encode points", err)
	}
	return m.set(ctx, m.keys.Points(id), string(b))
}

func (m *Manager) get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := m.store.Get(ctx, key)
	if err != nil {
		return "", false, apperr.Storage("read "+key, err)
	}
	return v, ok, nil
}

func (m *Manager) set(ctx context.Context, key, value string) error {
	if err := m.store.Set(ctx, key, value); err != nil {
		return apperr.Storage("write "+key, err)
	}
	return nil
}

func (m *Manager) remove(ctx context.Context, key string) error {
	if err := m.store.Remove(ctx, key); err != nil {
		return apperr.Storage("remove "+key, err)
	}
	return nil
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
