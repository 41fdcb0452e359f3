package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

type chartIDInput struct {
	ChartID string `path:"chart_id"`
}

func registerChartHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "get-state", Method: http.MethodGet, Path: "/api/v1/state", Summary: "Get the full chart session state", Tags: []string{"Session"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return &stateOutput{Body: svc.State(ctx)}, nil
		})

	type listChartsOutput struct {
		Body struct {
			Charts []string `json:"charts"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-charts", Method: http.MethodGet, Path: "/api/v1/charts", Summary: "List chart ids in creation order", Tags: []string{"Charts"}},
		func(ctx context.Context, input *struct{}) (*listChartsOutput, error) {
			out := &listChartsOutput{}
			out.Body.Charts = svc.ListCharts(ctx)
			if out.Body.Charts == nil {
				out.Body.Charts = []string{}
			}
			return out, nil
		})

	type createChartInput struct {
		Body struct {
			Name string `json:"name" minLength:"1" doc:"Unique chart name"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "create-chart", Method: http.MethodPost, Path: "/api/v1/charts", Summary: "Create and load an empty chart", Tags: []string{"Charts"}, DefaultStatus: http.StatusCreated},
		func(ctx context.Context, input *createChartInput) (*stateOutput, error) {
			return stateResult(svc.CreateChart(ctx, input.Body.Name))
		})

	huma.Register(api, huma.Operation{OperationID: "load-chart", Method: http.MethodPost, Path: "/api/v1/charts/{chart_id}/load", Summary: "Load a chart", Tags: []string{"Charts"}},
		func(ctx context.Context, input *chartIDInput) (*stateOutput, error) {
			return stateResult(svc.LoadChart(ctx, input.ChartID))
		})

	type deleteChartInput struct {
		ChartID string `path:"chart_id"`
		Confirm bool   `query:"confirm" doc:"Must be true to delete"`
	}
	huma.Register(api, huma.Operation{OperationID: "delete-chart", Method: http.MethodDelete, Path: "/api/v1/charts/{chart_id}", Summary: "Delete a chart and its points", Tags: []string{"Charts"}},
		func(ctx context.Context, input *deleteChartInput) (*stateOutput, error) {
			return stateResult(svc.DeleteChart(ctx, input.ChartID, input.Confirm))
		})
}
