package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/compass_chart/internal/apperr"
	"github.com/dgnsrekt/compass_chart/internal/board"
	"github.com/dgnsrekt/compass_chart/internal/editimage"
	"github.com/dgnsrekt/compass_chart/internal/events"
	"github.com/dgnsrekt/compass_chart/internal/geometry"
	"github.com/dgnsrekt/compass_chart/internal/points"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Service interface {
	State(ctx context.Context) board.State
	ListCharts(ctx context.Context) []string
	CreateChart(ctx context.Context, name string) (board.State, error)
	DeleteChart(ctx context.Context, id string, confirm bool) (board.State, error)
	LoadChart(ctx context.Context, id string) (board.State, error)
	PointerMove(ctx context.Context, px, py float64, viewport geometry.Rect) points.Point
	ChartClick(ctx context.Context, px, py float64, viewport geometry.Rect, onBackground bool) (board.State, error)
	SelectPoint(ctx context.Context, index int) (board.State, error)
	ClearSelection(ctx context.Context) (board.State, error)
	DeletePoint(ctx context.Context, index int) (board.State, error)
	DeleteSelected(ctx context.Context) (board.State, error)
	ToggleNewPoint(ctx context.Context) (board.State, error)
	MoveSelected(ctx context.Context) (board.State, error)
	CancelMove(ctx context.Context) (board.State, error)
	EditSelected(ctx context.Context) (board.State, error)
	UpdateDraft(ctx context.Context, name string, img *editimage.Image) (board.State, error)
	AttachImage(ctx context.Context, src string) (board.State, error)
	ClearImage(ctx context.Context) (board.State, error)
	SaveEdit(ctx context.Context) (board.State, error)
	CancelEdit(ctx context.Context) (board.State, error)
	ToggleShowNames(ctx context.Context) (board.State, error)
	ImageTransform(ctx context.Context, index int, containerWidth float64) (editimage.Transform, error)
}

type stateOutput struct {
	Body board.State
}

func stateResult(st board.State, err error) (*stateOutput, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	return &stateOutput{Body: st}, nil
}

// NewServer builds the HTTP handler. broker may be nil, in which case the
// live event routes are not mounted.
func NewServer(svc Service, broker *events.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Compass Chart API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(eventsDocsHTML)); err != nil {
			slog.Debug("events docs response write failed", "error", err)
		}
	})
	if broker != nil {
		router.Get("/api/v1/events", events.SSEHandler(broker))
		router.Get("/api/v1/ws", events.WSHandler(broker))
	}

	registerChartHandlers(api, svc)
	registerPointHandlers(api, svc)
	registerEditHandlers(api, svc)
	registerMiscHandlers(api, svc, broker)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *apperr.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case apperr.CodeValidation, apperr.CodeCancelled:
			return huma.Error400BadRequest(coded.Message)
		case apperr.CodeChartNotFound, apperr.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case apperr.CodeConflict:
			return huma.Error409Conflict(coded.Message)
		case apperr.CodeStorage:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
