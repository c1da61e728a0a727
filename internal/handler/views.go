package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/canvasboard/internal/view"
	"github.com/mesh-intelligence/canvasboard/pkg/types"
)

// ViewHandler implements HTTP handlers for view descriptors and the
// projections they produce.
type ViewHandler struct {
	board    types.Board
	pageSize int
	logger   *slog.Logger
}

// NewViewHandler creates a ViewHandler. pageSize is the projection limit
// used when a request does not set one.
func NewViewHandler(board types.Board, pageSize int, logger *slog.Logger) *ViewHandler {
	if pageSize <= 0 {
		pageSize = view.DefaultLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewHandler{board: board, pageSize: pageSize, logger: logger}
}

// Routes registers the view endpoints on r.
func (h *ViewHandler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/default", h.GetDefault)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/default", h.SetDefault)
		r.Get("/projection", h.Project)
		r.Get("/window", h.Window)
	})
}

type createViewRequest struct {
	Name          string                  `json:"name" validate:"required,max=200"`
	Source        types.Source            `json:"source" validate:"required"`
	Layout        types.Layout            `json:"layout" validate:"omitempty,oneof=CARD TABLE KANBAN"`
	Filters       []types.FilterCriterion `json:"filters" validate:"dive"`
	SortBy        string                  `json:"sortBy" validate:"omitempty,fieldpath"`
	SortOrder     types.SortOrder         `json:"sortOrder" validate:"omitempty,oneof=ASC DESC"`
	Sorts         []types.SortCriterion   `json:"activeSorts" validate:"dive"`
	GroupBy       string                  `json:"groupBy" validate:"omitempty,fieldpath"`
	VisibleFields []string                `json:"visibleFields" validate:"dive,fieldpath"`
	IsDefault     bool                    `json:"isDefault"`
}

func (req createViewRequest) descriptor() *types.ViewDescriptor {
	return &types.ViewDescriptor{
		Name:          req.Name,
		Source:        req.Source,
		Layout:        req.Layout,
		Filters:       req.Filters,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
		Sorts:         req.Sorts,
		GroupBy:       req.GroupBy,
		VisibleFields: req.VisibleFields,
		IsDefault:     req.IsDefault,
	}
}

// List returns every descriptor, or those of one source.
// GET /api/views?source=PERSONAS
func (h *ViewHandler) List(w http.ResponseWriter, r *http.Request) {
	source := types.Source(r.URL.Query().Get("source"))
	if source != "" && !source.Valid() {
		writeError(w, http.StatusBadRequest, "unknown source "+string(source))
		return
	}
	views, err := h.board.Views().List(r.Context(), source)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *ViewHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createViewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !validateRequest(w, &req) {
		return
	}
	id, err := h.board.Views().Create(r.Context(), req.descriptor())
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	v, err := h.board.Views().Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// GetDefault returns the default descriptor, seeding the built-in default
// on first use.
func (h *ViewHandler) GetDefault(w http.ResponseWriter, r *http.Request) {
	v, err := h.board.Views().GetDefault(r.Context())
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.board.Views().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Update merges the provided fields into the descriptor. List fields that
// are present replace the stored list, even when empty.
func (h *ViewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch types.ViewPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := h.board.Views().Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *ViewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.board.Views().Delete(r.Context(), id); err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// SetDefault moves the default flag to the descriptor and returns it.
// POST /api/views/{id}/default
func (h *ViewHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.board.Views().SetDefault(r.Context(), id); err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	v, err := h.board.Views().Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Project applies the descriptor to its source and returns one page.
// GET /api/views/{id}/projection?page=1&limit=50
func (h *ViewHandler) Project(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := queryInt(r, "limit", h.pageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.board.Views().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	p, err := view.Render(r.Context(), h.board, d, page, limit)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type windowRequest struct {
	Offset   float64 `validate:"gte=0"`
	Viewport float64 `validate:"gte=0"`
	ItemSize float64 `validate:"gt=0"`
	Overscan int     `validate:"gte=0,lte=100"`
}

// Window returns the slice of the projected sequence visible in a
// fixed-row-height viewport.
// GET /api/views/{id}/window?offset=0&viewport=600&item_size=48&overscan=3
func (h *ViewHandler) Window(w http.ResponseWriter, r *http.Request) {
	var req windowRequest
	var err error
	if req.Offset, err = queryFloat(r, "offset", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Viewport, err = queryFloat(r, "viewport", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.ItemSize, err = queryFloat(r, "item_size", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Overscan, err = queryInt(r, "overscan", 0); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	d, err := h.board.Views().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	res, err := view.RenderWindow(r.Context(), h.board, d, view.WindowRequest{
		ScrollOffset: req.Offset,
		ViewportSize: req.Viewport,
		ItemSize:     req.ItemSize,
		Overscan:     req.Overscan,
	})
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
