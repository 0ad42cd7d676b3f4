package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/keepnote/internal/noteservice"
)

// ownsUser rejects requests whose verified token subject does not match the
// addressed user. With auth disabled there are no claims and every caller
// passes.
func ownsUser(w http.ResponseWriter, r *http.Request, userID string) bool {
	claims := ClaimsFrom(r.Context())
	if claims != nil && claims.Subject != userID {
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
		return false
	}
	return true
}

func noteID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "noteId"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("noteId must be an integer"))
		return 0, false
	}
	return id, true
}

// CreateNote handles POST /api/v1/note.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if !decodeValid(w, r, &req) {
		return
	}
	if !ownsUser(w, r, req.UserID) {
		return
	}
	note, err := h.notes.CreateNote(r.Context(), req.UserID, noteservice.NoteInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// GetAllNotes handles GET /api/v1/note/{userId}.
func (h *Handler) GetAllNotes(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !ownsUser(w, r, userID) {
		return
	}
	notes, err := h.notes.GetAllNotes(r.Context(), userID)
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// GetNote handles GET /api/v1/note/{userId}/{noteId}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !ownsUser(w, r, userID) {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	note, err := h.notes.GetNote(r.Context(), userID, id)
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote handles PUT /api/v1/note/{userId}/{noteId}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !ownsUser(w, r, userID) {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	var req updateNoteRequest
	if !decodeValid(w, r, &req) {
		return
	}
	note, err := h.notes.UpdateNote(r.Context(), userID, id, noteservice.NotePatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
	})
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/v1/note/{userId}/{noteId}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !ownsUser(w, r, userID) {
		return
	}
	id, ok := noteID(w, r)
	if !ok {
		return
	}
	deleted, err := h.notes.DeleteNote(r.Context(), userID, id)
	if err != nil {
		writeError(w, "delete note", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// DeleteAllNotes handles DELETE /api/v1/note/{userId}.
func (h *Handler) DeleteAllNotes(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if !ownsUser(w, r, userID) {
		return
	}
	deleted, err := h.notes.DeleteAllNotes(r.Context(), userID)
	if err != nil {
		writeError(w, "delete all notes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}
