package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/compass_chart/internal/events"
)

func registerMiscHandlers(api huma.API, svc Service, broker *events.Broker) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type deepHealthOutput struct {
		Body struct {
			Status        string `json:"status"`
			Charts        int    `json:"charts"`
			LoadedChart   string `json:"loaded_chart,omitempty"`
			Points        int    `json:"points"`
			Mode          string `json:"mode"`
			EventsEnabled bool   `json:"events_enabled"`
			EventClients  int    `json:"event_clients"`
			EventsDropped int64  `json:"events_dropped"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "deep-health", Method: http.MethodGet, Path: "/api/v1/health/deep", Summary: "Session and event stream health", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*deepHealthOutput, error) {
			st := svc.State(ctx)
			out := &deepHealthOutput{}
			out.Body.Status = "ok"
			out.Body.Charts = len(st.Charts)
			if st.ChartLoaded {
				out.Body.LoadedChart = st.LoadedChart
			}
			out.Body.Points = len(st.Points)
			out.Body.Mode = st.Mode
			if broker != nil {
				out.Body.EventsEnabled = true
				out.Body.EventClients = broker.ClientCount()
				out.Body.EventsDropped = broker.Dropped()
			}
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "toggle-show-names", Method: http.MethodPost, Path: "/api/v1/view/names", Summary: "Toggle point name labels", Tags: []string{"View"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return stateResult(svc.ToggleShowNames(ctx))
		})
}
