package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Store is the CRUD surface shared by the canvas entity stores: T is the
// entity and P its partial-update payload.
type Store[T, P any] interface {
	Get(ctx context.Context, id string) (*T, error)
	List(ctx context.Context) ([]*T, error)
	Create(ctx context.Context, e *T) (string, error)
	Update(ctx context.Context, id string, patch P) (*T, error)
	Delete(ctx context.Context, id string) error
}

// EntityHandler implements list, create, get, update and delete for one
// canvas entity store.
type EntityHandler[T, P any] struct {
	store  Store[T, P]
	logger *slog.Logger
}

// NewEntityHandler creates an EntityHandler over store.
func NewEntityHandler[T, P any](store Store[T, P], logger *slog.Logger) *EntityHandler[T, P] {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntityHandler[T, P]{store: store, logger: logger}
}

// Routes registers the CRUD endpoints on r.
func (h *EntityHandler[T, P]) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *EntityHandler[T, P]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List(r.Context())
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *EntityHandler[T, P]) Create(w http.ResponseWriter, r *http.Request) {
	var e T
	if err := decodeJSON(r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := h.store.Create(r.Context(), &e)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	created, err := h.store.Get(r.Context(), id)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *EntityHandler[T, P]) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Update applies a partial update. For value propositions, every child
// collection present in the body replaces the stored rows of that kind in
// the same transaction as the scalar fields.
func (h *EntityHandler[T, P]) Update(w http.ResponseWriter, r *http.Request) {
	var patch P
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *EntityHandler[T, P]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		storeErrorToHTTP(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}
