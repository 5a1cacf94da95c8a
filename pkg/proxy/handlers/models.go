package handlers

import (
	"log/slog"
	"net/http"

	"mercator-hq/jimmybridge/pkg/proxy"
	"mercator-hq/jimmybridge/pkg/proxy/types"
	"mercator-hq/jimmybridge/pkg/upstream"
)

// ModelCreated is the fixed creation timestamp reported for the model.
const ModelCreated int64 = 1700000000

// ModelsHandler serves GET /v1/models. The upstream exposes a single
// model, so the list holds only the configured default.
type ModelsHandler struct {
	list types.ModelList
}

// NewModelsHandler creates a models handler listing model.
func NewModelsHandler(model string) *ModelsHandler {
	if model == "" {
		model = upstream.DefaultModel
	}
	return &ModelsHandler{
		list: types.ModelList{
			Object: types.ObjectList,
			Data: []types.Model{
				{
					ID:      model,
					Object:  types.ObjectModel,
					Created: ModelCreated,
					OwnedBy: upstream.DefaultOwner,
				},
			},
		},
	}
}

// ServeHTTP implements http.Handler.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := proxy.WriteJSONResponse(w, http.StatusOK, h.list); err != nil {
		slog.ErrorContext(r.Context(), "failed to write models response", "error", err)
	}
}

func (h *ModelsHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if err := proxy.WriteErrorResponse(w, proxy.HandleError(err)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", "error", err)
	}
}
