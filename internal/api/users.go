package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/keepnote/internal/models"
)

// GetUser handles GET /api/v1/user/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !ownsUser(w, r, userID) {
		return
	}
	user, err := h.auth.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateUser handles PUT /api/v1/user/{id}. Empty fields keep their stored
// values; in particular an absent password leaves the credential untouched.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !ownsUser(w, r, userID) {
		return
	}
	var req updateUserRequest
	if !decodeValid(w, r, &req) {
		return
	}
	user, err := h.auth.UpdateUser(r.Context(), userID, models.User{
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/user/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !ownsUser(w, r, userID) {
		return
	}
	if err := h.auth.DeleteUser(r.Context(), userID); err != nil {
		writeError(w, "delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
