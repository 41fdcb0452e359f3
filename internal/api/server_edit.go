package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/compass_chart/internal/editimage"
)

func registerEditHandlers(api huma.API, svc Service) {
	type updateDraftInput struct {
		Body struct {
			Name  string           `json:"name"`
			Image *editimage.Image `json:"image,omitempty" doc:"Image values; omitted keeps the current draft image"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "update-draft", Method: http.MethodPut, Path: "/api/v1/edit", Summary: "Update the edit draft", Tags: []string{"Edit"}},
		func(ctx context.Context, input *updateDraftInput) (*stateOutput, error) {
			return stateResult(svc.UpdateDraft(ctx, input.Body.Name, input.Body.Image))
		})

	type attachImageInput struct {
		Body struct {
			Src string `json:"src" minLength:"1" doc:"Image URL"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "attach-image", Method: http.MethodPost, Path: "/api/v1/edit/image", Summary: "Attach an image to the draft", Tags: []string{"Edit"}},
		func(ctx context.Context, input *attachImageInput) (*stateOutput, error) {
			return stateResult(svc.AttachImage(ctx, input.Body.Src))
		})

	huma.Register(api, huma.Operation{OperationID: "clear-image", Method: http.MethodDelete, Path: "/api/v1/edit/image", Summary: "Exclude the image from the draft", Tags: []string{"Edit"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return stateResult(svc.ClearImage(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "save-edit", Method: http.MethodPost, Path: "/api/v1/edit/save", Summary: "Save the draft to the edited point", Tags: []string{"Edit"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return stateResult(svc.SaveEdit(ctx))
		})

	huma.Register(api, huma.Operation{OperationID: "cancel-edit", Method: http.MethodPost, Path: "/api/v1/edit/cancel", Summary: "Discard the draft", Tags: []string{"Edit"}},
		func(ctx context.Context, input *struct{}) (*stateOutput, error) {
			return stateResult(svc.CancelEdit(ctx))
		})
}
