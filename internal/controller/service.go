package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/dgnsrekt/compass_chart/internal/apperr"
	"github.com/dgnsrekt/compass_chart/internal/board"
	"github.com/dgnsrekt/compass_chart/internal/editimage"
	"github.com/dgnsrekt/compass_chart/internal/events"
	"github.com/dgnsrekt/compass_chart/internal/geometry"
	"github.com/dgnsrekt/compass_chart/internal/mode"
	"github.com/dgnsrekt/compass_chart/internal/points"
	"github.com/dgnsrekt/compass_chart/internal/port"
)

const (
	FeedState   = "state"
	FeedPointer = "pointer"
)

// StateChange is the payload of a state event.
type StateChange struct {
	Op    string      `json:"op"`
	State board.State `json:"state"`
}

// unitRect maps fractions to themselves so fractional input can go through
// the pointer flow.
var unitRect = geometry.Rect{Width: 1, Height: 1}

// Service serializes access to a Board and publishes a state event after
// every operation.
type Service struct {
	mu     sync.Mutex
	board  *board.Board
	broker *events.Broker
}

// NewService wraps b. broker may be nil.
func NewService(b *board.Board, broker *events.Broker) *Service {
	return &Service{board: b, broker: broker}
}

func (s *Service) requireNonEmpty(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return apperr.Validation(fieldName + " is required")
	}
	return nil
}

// apply runs fn under the lock and publishes the resulting state, also when
// fn failed since the in-memory change stands.
func (s *Service) apply(op string, fn func() error) (board.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn()
	st := s.board.State()
	if err != nil {
		slog.Warn("chart op failed", "op", op, "err", err)
	} else {
		slog.Debug("chart op", "op", op, "mode", st.Mode, "points", len(st.Points))
	}
	s.publish(FeedState, StateChange{Op: op, State: st})
	return st, err
}

func (s *Service) publish(feed string, payload any) {
	if s.broker == nil {
		return
	}
	evt, err := events.NewEvent(feed, payload)
	if err != nil {
		slog.Warn("event encode failed", "feed", feed, "err", err)
		return
	}
	s.broker.Publish(evt)
}

func (s *Service) State(_ context.Context) board.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.State()
}

func (s *Service) Restore(ctx context.Context) (board.State, error) {
	return s.apply("restore", func() error {
		return s.board.Restore(ctx)
	})
}

func (s *Service) ListCharts(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Session().ListCharts()
}

func (s *Service) CreateChart(ctx context.Context, name string) (board.State, error) {
	if err := s.requireNonEmpty(name, "name"); err != nil {
		return s.State(ctx), err
	}
	return s.PromptNewChart(ctx, port.NewScripted(name))
}

// PromptNewChart asks p for a chart name until an unused one is given. A
// cancelled prompt is reported as a validation error.
func (s *Service) PromptNewChart(ctx context.Context, p port.Prompter) (board.State, error) {
	return s.apply("create_chart", func() error {
		_, ok, err := s.board.NewChart(ctx, p)
		if err == nil && !ok {
			return apperr.Validation("name is required")
		}
		return err
	})
}

func (s *Service) DeleteChart(ctx context.Context, id string, confirm bool) (board.State, error) {
	return s.ConfirmDeleteChart(ctx, id, port.Confirming(confirm))
}

// ConfirmDeleteChart deletes chart id once c agrees.
func (s *Service) ConfirmDeleteChart(ctx context.Context, id string, c port.Confirmer) (board.State, error) {
	return s.apply("delete_chart", func() error {
		ok, err := s.board.DeleteChart(ctx, id, c)
		if err == nil && !ok {
			return apperr.New(apperr.CodeCancelled, fmt.Sprintf("deletion of %q was not confirmed", id), nil)
		}
		return err
	})
}

func (s *Service) LoadChart(ctx context.Context, id string) (board.State, error) {
	return s.apply("load_chart", func() error {
		return s.board.LoadChart(ctx, id)
	})
}

// PointerMove updates the preview point. It publishes on the pointer feed
// only, to keep the state feed quiet.
func (s *Service) PointerMove(_ context.Context, px, py float64, viewport geometry.Rect) points.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.board.PointerMove(px, py, viewport)
	s.publish(FeedPointer, p)
	return p
}

func (s *Service) ChartClick(ctx context.Context, px, py float64, viewport geometry.Rect, onBackground bool) (board.State, error) {
	return s.apply("chart_click", func() error {
		return s.board.ChartClick(ctx, px, py, viewport, onBackground)
	})
}

func (s *Service) SelectPoint(_ context.Context, index int) (board.State, error) {
	return s.apply("select_point", func() error {
		s.board.SelectAt(index)
		return nil
	})
}

func (s *Service) ClearSelection(_ context.Context) (board.State, error) {
	return s.apply("clear_selection", func() error {
		s.board.ClearSelection()
		return nil
	})
}

func (s *Service) DeletePoint(ctx context.Context, index int) (board.State, error) {
	return s.apply("delete_point", func() error {
		_, err := s.board.DeletePoint(ctx, index)
		return err
	})
}

func (s *Service) DeleteSelected(ctx context.Context) (board.State, error) {
	return s.apply("delete_selected", func() error {
		_, err := s.board.DeleteSelected(ctx)
		return err
	})
}

func (s *Service) ToggleNewPoint(ctx context.Context) (board.State, error) {
	return s.apply("toggle_new_point", func() error {
		_, err := s.board.ToggleNewPoint(ctx)
		return err
	})
}

func (s *Service) MoveSelected(_ context.Context) (board.State, error) {
	return s.apply("move_selected", func() error {
		s.board.MoveSelected()
		return nil
	})
}

func (s *Service) CancelMove(ctx context.Context) (board.State, error) {
	return s.apply("cancel_move", func() error {
		_, err := s.board.CancelMove(ctx)
		return err
	})
}

func (s *Service) EditSelected(_ context.Context) (board.State, error) {
	return s.apply("edit_selected", func() error {
		s.board.EditSelected()
		return nil
	})
}

func (s *Service) UpdateDraft(_ context.Context, name string, img *editimage.Image) (board.State, error) {
	return s.apply("update_draft", func() error {
		s.board.UpdateDraft(name, img)
		return nil
	})
}

func (s *Service) AttachImage(ctx context.Context, src string) (board.State, error) {
	if err := s.requireNonEmpty(src, "src"); err != nil {
		return s.State(ctx), err
	}
	return s.apply("attach_image", func() error {
		_, err := s.board.AttachImage(ctx, port.NewScripted(src))
		return err
	})
}

func (s *Service) ClearImage(_ context.Context) (board.State, error) {
	return s.apply("clear_image", func() error {
		s.board.ClearImage()
		return nil
	})
}

func (s *Service) SaveEdit(ctx context.Context) (board.State, error) {
	return s.apply("save_edit", func() error {
		_, err := s.board.SaveEdit(ctx)
		return err
	})
}

func (s *Service) CancelEdit(_ context.Context) (board.State, error) {
	return s.apply("cancel_edit", func() error {
		s.board.CancelEdit()
		return nil
	})
}

func (s *Service) ToggleShowNames(_ context.Context) (board.State, error) {
	return s.apply("toggle_show_names", func() error {
		s.board.ToggleShowNames()
		return nil
	})
}

func (s *Service) ImageTransform(_ context.Context, index int, containerWidth float64) (editimage.Transform, error) {
	if containerWidth < 0 {
		return editimage.Transform{}, apperr.Validation("container_width must be >= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tf, ok := s.board.ImageTransform(index, containerWidth)
	if !ok {
		return editimage.Transform{}, apperr.New(apperr.CodeNotFound, fmt.Sprintf("point %d has no image", index), nil)
	}
	return tf, nil
}

// AddPoint places a point at fraction (x, y) and names it, going through the
// same new-point and edit flow as pointer input.
func (s *Service) AddPoint(ctx context.Context, name string, x, y float64) (board.State, error) {
	if err := s.requireNonEmpty(name, "name"); err != nil {
		return s.State(ctx), err
	}
	if !geometry.InUnit(x, y) {
		return s.State(ctx), apperr.Validation(fmt.Sprintf("point position (%v, %v) must lie within [0,1]", x, y))
	}
	return s.apply("add_point", func() error {
		if _, ok := s.board.Session().Loaded(); !ok {
			return apperr.Validation("no chart loaded")
		}
		if s.board.Mode() != mode.NewPoint {
			if _, err := s.board.ToggleNewPoint(ctx); err != nil {
				return err
			}
		}
		if err := s.board.ChartClick(ctx, x, y, unitRect, false); err != nil {
			return err
		}
		return s.rename(ctx, name)
	})
}

// RenamePoint renames the point at index through the edit flow.
func (s *Service) RenamePoint(ctx context.Context, index int, name string) (board.State, error) {
	if err := s.requireNonEmpty(name, "name"); err != nil {
		return s.State(ctx), err
	}
	return s.apply("rename_point", func() error {
		if k := s.board.Mode(); k != mode.Idle {
			return apperr.Validation("point is not editable in mode " + k.String())
		}
		if !s.board.SelectAt(index) {
			return apperr.New(apperr.CodeNotFound, fmt.Sprintf("point %d not found", index), nil)
		}
		return s.rename(ctx, name)
	})
}

func (s *Service) rename(ctx context.Context, name string) error {
	if !s.board.EditSelected() {
		return apperr.Validation("point is not editable in mode " + s.board.Mode().String())
	}
	s.board.UpdateDraft(name, nil)
	_, err := s.board.SaveEdit(ctx)
	return err
}
