package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/compass_chart/internal/editimage"
	"github.com/dgnsrekt/compass_chart/internal/geometry"
	"github.com/dgnsrekt/compass_chart/internal/points"
)

type pointIndexInput struct {
	Index int `path:"index" minimum:"0"`
}

func registerPointHandlers(api huma.API, svc Service) {
	type pointerInput struct {
		Body struct {
			X        float64       `json:"x" doc:"Pointer x in page pixels"`
			Y        float64       `json:"y" doc:"Pointer y in page pixels"`
			Viewport geometry.Rect `json:"viewport" doc:"Chart plotting area in page pixels"`
		}
	}
	type pointerOutput struct {
		Body points.Point
	}
	huma.Register(api, huma.Operation{OperationID: "pointer-move", Method: http.MethodPost, Path: "/api/v1/pointer", Summary: "Report the pointer position and get the preview point", Tags: []string{"Pointer"}},
		func(ctx context.Context, input *pointerInput) (*pointerOutput, error) {
			b := input.Body
			return &pointerOutput{Body: svc.PointerMove(ctx, b.X, b.Y, b.Viewport)}, nil
		})

	type clickInput struct {
		Body struct {
			X          float64       `json:"x" doc:"Pointer x in page pixels"`
			Y          float64       `json:"y" doc:"Pointer y in page pixels"`
			Viewport   geometry.Rect `json:"viewport" doc:"Chart plotting area in page pixels"`
			Background bool          `json:"background,omitempty" doc:"True when the click hit the bare chart background"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "chart-click", Method: http.MethodPost, Path: "/api/v1/chart/click", Summary: "Click the chart area", Tags: []string{"Pointer"}},
		func(ctx context.Context, input *clickInput) (*stateOutput, error) {
			b := input.Body
			return stateResult(svc.ChartClick(ctx, b.X, b.Y, b.Viewport, b.Background))
		})

	huma.Register(api, huma.Operation{OperationID: "select-point", Method: http.MethodPost, Path: "/api/v1/points/{index}/select", Summary: "Select a point", Tags: []string{"Points"}},
		func(ctx context.Context, input *pointIndexInput) (*stateOutput, error) {
			return stateResult(svc.SelectPoint(ctx, input.Index))
		})

	huma.Register(api, huma.Operation{OperationID: "delete-point", Method: http.MethodDelete, Path: "/api/v1/points/{index}", Summary: "Delete a point by index", Tags: []string{"Points"}},
		func(ctx context.Context, input *pointIndexInput) (*stateOutput, error) {
			return stateResult(svc.DeletePoint(ctx, input.Index))
		})

	type transformInput struct {
		Index          int     `path:"index" minimum:"0"`
		ContainerWidth float64 `query:"container_width" default:"100" doc:"Width of the image container in pixels"`
	}
	type transformOutput struct {
		Body struct {
			TranslateX editimage.Length `json:"translate_x"`
			TranslateY editimage.Length `json:"translate_y"`
			Scale      float64          `json:"scale"`
			CSS        string           `json:"css" doc:"CSS transform property value"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "image-transform", Method: http.MethodGet, Path: "/api/v1/points/{index}/image-transform", Summary: "Compute the view transform of a point image", Tags: []string{"Points"}},
		func(ctx context.Context, input *transformInput) (*transformOutput, error) {
			tf, err := svc.ImageTransform(ctx, input.Index, input.ContainerWidth)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &transformOutput{}
			out.Body.TranslateX = tf.TranslateX
			out.Body.TranslateY = tf.TranslateY
			out.Body.Scale = tf.Scale
			out.Body.CSS = tf.CSS()
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "toggle-new-point", Method: http.MethodPost, Path: "/api/v1/mode/new-point", Summary: "Toggle new point mode", Tags: []string{"Mode"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return stateResult(svc.ToggleNewPoint(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "move-selected", Method: http.MethodPost, Path: "/api/v1/selection/move", Summary: "Pick up the selected point", Tags: []string{"Selection"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return stateResult(svc.MoveSelected(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "cancel-move", Method: http.MethodPost, Path: "/api/v1/selection/move/cancel", Summary: "Return the held point unchanged", Tags: []string{"Selection"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return stateResult(svc.CancelMove(ctx))
		})

	type deleteSelectionInput struct {
		Point bool `query:"point" doc:"Delete the selected point instead of clearing the selection"`
	}
	huma.Register(api, huma.Operation{OperationID: "delete-selection", Method: http.MethodDelete, Path: "/api/v1/selection", Summary: "Clear the selection, or delete the selected point with point=true", Tags: []string{"Selection"}},
		func(ctx context.Context, input *deleteSelectionInput) (*stateOutput, error) {
			if input.Point {
				return stateResult(svc.DeleteSelected(ctx))
			}
			return stateResult(svc.ClearSelection(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "edit-selected", Method: http.MethodPost, Path: "/api/v1/selection/edit", Summary: "Open the selected point for editing", Tags: []string{"Selection"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return stateResult(svc.EditSelected(ctx))
		})
}
