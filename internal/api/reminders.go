package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/keepnote/internal/models"
)

// CreateReminder handles POST /api/v1/reminder.
func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if !decodeValid(w, r, &req) {
		return
	}
	rem, err := h.reminders.Create(r.Context(), models.Reminder{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		writeError(w, "create reminder", err)
		return
	}
	writeJSON(w, http.StatusCreated, rem)
}

// GetReminder handles GET /api/v1/reminder/{id}.
func (h *Handler) GetReminder(w http.ResponseWriter, r *http.Request) {
	rem, err := h.reminders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get reminder", err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

// UpdateReminder handles PUT /api/v1/reminder/{id}.
func (h *Handler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if !decodeValid(w, r, &req) {
		return
	}
	rem, err := h.reminders.Update(r.Context(), chi.URLParam(r, "id"), models.Reminder{
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
	})
	if err != nil {
		writeError(w, "update reminder", err)
		return
	}
	writeJSON(w, http.StatusOK, rem)
}

// DeleteReminder handles DELETE /api/v1/reminder/{id}.
func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	if err := h.reminders.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete reminder", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
