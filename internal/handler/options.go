package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/canvasboard/internal/facet"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// Aggregation modes for the options endpoint.
const (
	modeUnique    = "unique"
	modeFlattened = "flattened"
)

// OptionsHandler serves distinct field values with counts, used to populate
// filter and grouping pickers.
type OptionsHandler struct {
	board  types.Board
	logger *slog.Logger
}

// NewOptionsHandler creates an OptionsHandler.
func NewOptionsHandler(board types.Board, logger *slog.Logger) *OptionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OptionsHandler{board: board, logger: logger}
}

type optionsRequest struct {
	Path  string `json:"path" validate:"required,fieldpath"`
	Label string `json:"label" validate:"omitempty,fieldpath"`
	Mode  string `json:"mode" validate:"omitempty,oneof=unique flattened"`
	Order string `json:"order" validate:"omitempty,oneof=count label"`
}

// Options aggregates one field of a source.
// GET /api/options/{source}?path=segment.id&label=segment.name&mode=unique&order=count
func (h *OptionsHandler) Options(w http.ResponseWriter, r *http.Request) {
	source := types.Source(chi.URLParam(r, "source"))
	if !source.Valid() {
		writeError(w, http.StatusBadRequest, "unknown source "+string(source))
		return
	}
	q := r.URL.Query()
	req := optionsRequest{
		Path:  q.Get("path"),
		Label: q.Get("label"),
		Mode:  q.Get("mode"),
		Order: q.Get("order"),
	}
	if !validateRequest(w, &req) {
		return
	}

	records, err := h.board.Records(r.Context(), source)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}

	var opts []types.Option
	if req.Mode == modeFlattened {
		opts, err = facet.AggregateFlattened(records, req.Path)
		if err != nil {
			storeErrorToHTTP(w, r, h.logger, err)
			return
		}
	} else {
		opts = facet.AggregateUnique(records, req.Path, req.Label)
	}
	facet.Sort(opts, facet.Order(req.Order))
	writeJSON(w, http.StatusOK, opts)
}
