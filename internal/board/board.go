// Package board is the interaction core of the chart: it interprets pointer
// and command input according to the active mode, maps pointer positions to
// chart fractions, mutates the loaded chart's points and switches charts.
//
// A Board is not safe for concurrent use; the host serializes calls.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgnsrekt/compass_chart/internal/apperr"
	"github.com/dgnsrekt/compass_chart/internal/editimage"
	"github.com/dgnsrekt/compass_chart/internal/geometry"
	"github.com/dgnsrekt/compass_chart/internal/mode"
	"github.com/dgnsrekt/compass_chart/internal/points"
	"github.com/dgnsrekt/compass_chart/internal/port"
	"github.com/dgnsrekt/compass_chart/internal/session"
)

const (
	chartNamePrompt = "Please specify a name:"
	imageURLPrompt  = "Please specify an image URL:"
)

// Board ties the mode controller to the chart session.
type Board struct {
	session   *session.Manager
	mode      mode.Controller
	preview   points.Point
	showNames bool
}

// New returns an idle board over s.
func New(s *session.Manager) *Board {
	return &Board{session: s, preview: points.Placeholder()}
}

// Session returns the underlying chart session.
func (b *Board) Session() *session.Manager { return b.session }

// Mode returns the active mode.
func (b *Board) Mode() mode.Kind { return b.mode.Kind() }

// Restore loads the saved catalog and last chart, starting idle.
func (b *Board) Restore(ctx context.Context) error {
	b.mode.Reset()
	return b.session.LoadSavedSession(ctx)
}

// PointerMove tracks the pointer over the chart. The preview point follows
// it while inside the viewport and is hidden otherwise.
func (b *Board) PointerMove(px, py float64, viewport geometry.Rect) points.Point {
	if !geometry.IsInside(px, py, viewport) {
		b.preview.Visibility = points.Hidden
		return b.preview
	}
	x, y, _ := geometry.ToFraction(px, py, viewport)
	b.preview.PlaceAt(x, y)
	return b.preview
}

// ChartClick handles a click on the chart area. In NewPoint mode a point is
// placed at the pointer; in MovePoint mode the held point is put down there.
// Otherwise a click on the bare background clears the selection.
func (b *Board) ChartClick(ctx context.Context, px, py float64, viewport geometry.Rect, onBackground bool) error {
	store := b.session.Points()
	switch b.mode.Kind() {
	case mode.NewPoint:
		x, y, ok := geometry.ToFraction(px, py, viewport)
		if !ok {
			return nil
		}
		p := points.Placeholder()
		p.PlaceAt(x, y)
		h, err := store.Add(ctx, p)
		store.SelectHandle(h)
		b.mode.PlaceNewPoint()
		return err
	case mode.MovePoint:
		x, y, ok := geometry.ToFraction(px, py, viewport)
		if !ok {
			return nil
		}
		h, p, _ := b.mode.FinishMove(x, y)
		_, err := store.Reattach(ctx, h, p)
		store.SelectHandle(h)
		return err
	default:
		if onBackground {
			store.ClearSelection()
		}
		return nil
	}
}

// SelectAt selects the point at index i. Suppressed in NewPoint mode, where
// clicks place rather than select.
func (b *Board) SelectAt(i int) bool {
	if b.mode.Kind() == mode.NewPoint {
		return false
	}
	return b.session.Points().SelectAt(i)
}

// ClearSelection drops the selection.
func (b *Board) ClearSelection() {
	b.session.Points().ClearSelection()
}

// ToggleNewPoint enters or leaves NewPoint mode and clears the selection.
// An active move is cancelled first, returning the held point to the chart,
// and an active edit is discarded.
func (b *Board) ToggleNewPoint(ctx context.Context) (mode.Kind, error) {
	var err error
	switch b.mode.Kind() {
	case mode.MovePoint:
		_, err = b.CancelMove(ctx)
	case mode.EditPoint:
		b.mode.CancelEdit()
	}
	b.session.Points().ClearSelection()
	b.mode.ToggleNewPoint()
	return b.mode.Kind(), err
}

// MoveSelected lifts the selected point off the chart until it is put down
// with ChartClick or returned with CancelMove. Only valid from Idle.
func (b *Board) MoveSelected() bool {
	store := b.session.Points()
	h, p, ok := store.Selected()
	if !ok || !b.mode.BeginMove(h, p) {
		return false
	}
	store.Detach(h)
	slog.Debug("board move start", "handle", h, "name", p.Name)
	return true
}

// CancelMove returns the held point unchanged to the end of the sequence and
// keeps it selected.
func (b *Board) CancelMove(ctx context.Context) (bool, error) {
	h, p, ok := b.mode.CancelMove()
	if !ok {
		return false, nil
	}
	store := b.session.Points()
	_, err := store.Reattach(ctx, h, p)
	store.SelectHandle(h)
	return true, err
}

// DeleteSelected deletes the selected point.
func (b *Board) DeleteSelected(ctx context.Context) (bool, error) {
	store := b.session.Points()
	h, _, ok := store.Selected()
	if !ok {
		return false, nil
	}
	deleted, err := store.DeleteSelected(ctx)
	b.dropEditOf(h)
	return deleted, err
}

// DeletePoint deletes the point at index i. Out of range is a no-op.
func (b *Board) DeletePoint(ctx context.Context, i int) (bool, error) {
	store := b.session.Points()
	h, ok := store.HandleAt(i)
	if !ok {
		return false, nil
	}
	deleted, err := store.DeleteAt(ctx, i)
	b.dropEditOf(h)
	return deleted, err
}

func (b *Board) dropEditOf(h points.Handle) {
	if eh, ok := b.mode.Handle(); ok && eh == h && b.mode.Kind() == mode.EditPoint {
		b.mode.CancelEdit()
	}
}

// EditSelected opens a draft for the selected point. Only valid from Idle.
func (b *Board) EditSelected() bool {
	h, p, ok := b.session.Points().Selected()
	if !ok {
		return false
	}
	return b.mode.BeginEdit(h, p)
}

// UpdateDraft sets the draft name and, when img is non-nil, the draft image
// values.
func (b *Board) UpdateDraft(name string, img *editimage.Image) bool {
	d, ok := b.mode.Draft()
	if !ok {
		return false
	}
	next := d.Image
	if img != nil {
		next = *img
	}
	return b.mode.SetDraft(name, next)
}

// AttachImage prompts for an image URL and attaches it to the draft with the
// default zoom and no scroll. A cancelled or empty answer changes nothing.
func (b *Board) AttachImage(ctx context.Context, p port.Prompter) (bool, error) {
	if b.mode.Kind() != mode.EditPoint {
		return false, nil
	}
	src, ok, err := p.Prompt(ctx, imageURLPrompt)
	if err != nil {
		return false, err
	}
	if !ok || strings.TrimSpace(src) == "" {
		return false, nil
	}
	return b.mode.EnableImage(src), nil
}

// ClearImage excludes the image from the draft.
func (b *Board) ClearImage() bool {
	return b.mode.DisableImage()
}

// SaveEdit writes the draft back to the point it was opened for, in place.
// An empty name or an invalid image is rejected and the draft stays open.
func (b *Board) SaveEdit(ctx context.Context) (bool, error) {
	d, ok := b.mode.Draft()
	if !ok {
		return false, nil
	}
	name, img := d.Result()
	if name == "" {
		return false, apperr.Validation("point name is required")
	}
	if img != nil {
		if err := img.Validate(); err != nil {
			return false, err
		}
	}

	h, _, _ := b.mode.FinishEdit()
	store := b.session.Points()
	if !store.SelectHandle(h) {
		return false, nil
	}
	return store.UpdateSelected(ctx, name, img)
}

// CancelEdit discards the draft.
func (b *Board) CancelEdit() bool {
	return b.mode.CancelEdit()
}

// NewChart prompts for a chart name until it is unused, then creates and
// loads the chart. A cancelled or empty answer aborts; when the last answer
// before aborting was a duplicate, a conflict error is returned.
func (b *Board) NewChart(ctx context.Context, p port.Prompter) (string, bool, error) {
	var duplicate string
	for {
		name, ok, err := p.Prompt(ctx, chartNamePrompt)
		if err != nil {
			return "", false, err
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			if duplicate != "" {
				return "", false, apperr.New(apperr.CodeConflict, fmt.Sprintf("chart %q already exists", duplicate), nil)
			}
			return "", false, nil
		}
		if b.session.HasChart(name) {
			duplicate = name
			continue
		}

		err = b.leaveChart(ctx)
		if cerr := b.session.CreateChart(ctx, name); cerr != nil {
			return "", false, cerr
		}
		slog.Info("board chart created", "chart_id", name)
		return name, true, err
	}
}

// DeleteChart asks for confirmation and deletes chart id.
func (b *Board) DeleteChart(ctx context.Context, id string, c port.Confirmer) (bool, error) {
	if !b.session.HasChart(id) {
		return false, apperr.New(apperr.CodeChartNotFound, fmt.Sprintf("chart %q not found", id), nil)
	}
	yes, err := c.Confirm(ctx, fmt.Sprintf("Are you sure you want to delete %q?", id))
	if err != nil || !yes {
		return false, err
	}
	if loaded, ok := b.session.Loaded(); ok && loaded == id {
		if err := b.leaveChart(ctx); err != nil {
			return false, err
		}
	}
	if err := b.session.DeleteChart(ctx, id); err != nil {
		return false, err
	}
	slog.Info("board chart deleted", "chart_id", id)
	return true, nil
}

// LoadChart switches to chart id.
func (b *Board) LoadChart(ctx context.Context, id string) error {
	if !b.session.HasChart(id) {
		return apperr.New(apperr.CodeChartNotFound, fmt.Sprintf("chart %q not found", id), nil)
	}
	if err := b.leaveChart(ctx); err != nil {
		return err
	}
	return b.session.LoadChart(ctx, id)
}

// leaveChart returns a held point to the current chart and resets to Idle
// with no selection.
func (b *Board) leaveChart(ctx context.Context) error {
	var err error
	if b.mode.Kind() == mode.MovePoint {
		_, err = b.CancelMove(ctx)
	}
	b.mode.Reset()
	b.session.Points().ClearSelection()
	return err
}

// ToggleShowNames flips name labels and returns the new setting.
func (b *Board) ToggleShowNames() bool {
	b.showNames = !b.showNames
	return b.showNames
}

// ImageTransform returns the view transform of the image of point i.
func (b *Board) ImageTransform(i int, containerWidth float64) (editimage.Transform, bool) {
	p, ok := b.session.Points().At(i)
	if !ok || p.Image == nil {
		return editimage.Transform{}, false
	}
	return editimage.ComputeTransform(*p.Image, containerWidth), true
}

// DraftTransform returns the view transform of the draft image.
func (b *Board) DraftTransform(containerWidth float64) (editimage.Transform, bool) {
	d, ok := b.mode.Draft()
	if !ok || !d.ImageEnabled {
		return editimage.Transform{}, false
	}
	return editimage.ComputeTransform(d.Image, containerWidth), true
}
