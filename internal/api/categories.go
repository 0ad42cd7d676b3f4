package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/keepnote/internal/models"
)

// CreateCategory handles POST /api/v1/category.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeValid(w, r, &req) {
		return
	}
	c, err := h.categories.Create(r.Context(), models.Category{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		writeError(w, "create category", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// GetCategory handles GET /api/v1/category/{id}.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get category", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// UpdateCategory handles PUT /api/v1/category/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeValid(w, r, &req) {
		return
	}
	c, err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), models.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, "update category", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCategory handles DELETE /api/v1/category/{id}.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete category", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
