package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/atlekbai/tourney/internal/query"
	"github.com/atlekbai/tourney/internal/store"
)

type Handler struct {
	registry  *query.Registry
	assembler *query.Assembler
	store     *store.Store
}

func New(registry *query.Registry, assembler *query.Assembler, st *store.Store) *Handler {
	return &Handler{registry: registry, assembler: assembler, store: st}
}

// Register mounts the REST routes on r.
func (h *Handler) Register(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/{entity}", h.List).Methods(http.MethodGet)
	api.HandleFunc("/{entity}/count", h.Count).Methods(http.MethodGet)
	api.HandleFunc("/{entity}/{id}", h.GetByID).Methods(http.MethodGet)
}

func (h *Handler) entity(w http.ResponseWriter, r *http.Request) *query.Entity {
	name := mux.Vars(r)["entity"]
	e := h.registry.Get(name)
	if e == nil {
		writeError(w, http.StatusNotFound, "ENTITY_NOT_FOUND",
			"Entity not found",
			"No entity registered with name '"+name+"'")
	}
	return e
}

// List handles GET /api/{entity}
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	e := h.entity(w, r)
	if e == nil {
		return
	}

	params, err := query.ParseQueryParams(r, e)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	plan, err := h.assembler.BuildList(e, params)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	page, err := h.store.List(r.Context(), plan)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListResponse{
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PageSize:   page.PageSize,
		Results:    page.Results,
	})
}

// Count handles GET /api/{entity}/count. The count is always exact.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	e := h.entity(w, r)
	if e == nil {
		return
	}

	params, err := query.ParseQueryParams(r, e)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	plan, err := h.assembler.BuildList(e, params)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	count, err := h.store.Count(r.Context(), plan)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// GetByID handles GET /api/{entity}/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	e := h.entity(w, r)
	if e == nil {
		return
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_PARAM", "Invalid ID format", err.Error())
		return
	}

	plan, err := h.assembler.BuildSingle(e, id.String(), r.URL.Query().Get("responseType"))
	if err != nil {
		writeQueryError(w, err)
		return
	}

	row, err := h.store.Get(r.Context(), plan)
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, row)
}
