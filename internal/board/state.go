package board

import (
	"github.com/dgnsrekt/compass_chart/internal/mode"
	"github.com/dgnsrekt/compass_chart/internal/points"
)

// State is a snapshot of everything a view needs to render the chart.
type State struct {
	Charts      []string       `json:"charts"`
	LoadedChart string         `json:"loaded_chart"`
	ChartLoaded bool           `json:"chart_loaded"`
	Mode        string         `json:"mode"`
	Points      []points.Entry `json:"points"`
	Selected    int            `json:"selected"`
	Held        *points.Point  `json:"held,omitempty"`
	Draft       *mode.Draft    `json:"draft,omitempty"`
	Preview     points.Point   `json:"preview"`
	ShowNames   bool           `json:"show_names"`
}

// State returns a snapshot. Selected is the index of the selected point or -1.
func (b *Board) State() State {
	store := b.session.Points()
	loaded, ok := b.session.Loaded()
	st := State{
		Charts:      b.session.ListCharts(),
		LoadedChart: loaded,
		ChartLoaded: ok,
		Mode:        b.mode.Kind().String(),
		Points:      store.Entries(),
		Selected:    -1,
		Preview:     b.preview,
		ShowNames:   b.showNames,
	}
	if h, _, ok := store.Selected(); ok {
		st.Selected = store.IndexOf(h)
	}
	if _, p, ok := b.mode.Held(); ok {
		st.Held = &p
	}
	if d, ok := b.mode.Draft(); ok {
		st.Draft = &d
	}
	return st
}
