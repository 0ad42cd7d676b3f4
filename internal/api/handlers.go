package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/starford/keepnote/internal/apperr"
	"github.com/starford/keepnote/internal/auth"
	"github.com/starford/keepnote/internal/categoryservice"
	"github.com/starford/keepnote/internal/models"
	"github.com/starford/keepnote/internal/noteservice"
	"github.com/starford/keepnote/internal/reminderservice"
)

// Handler holds API route handlers.
type Handler struct {
	auth       *auth.Service
	notes      *noteservice.Service
	categories *categoryservice.Service
	reminders  *reminderservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(a *auth.Service, n *noteservice.Service, c *categoryservice.Service, r *reminderservice.Service) *Handler {
	return &Handler{auth: a, notes: n, categories: c, reminders: r}
}

// writeError maps a service failure to its HTTP status per the error
// taxonomy. Unknown errors are logged and become an opaque 500.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists), errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("conflict"))
	case errors.Is(err, apperr.ErrUnauthorized),
		errors.Is(err, apperr.ErrInvalidToken),
		errors.Is(err, apperr.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// decodeValid decodes the JSON body into req and runs its validation.
type validator interface{ Validate() error }

func decodeValid(w http.ResponseWriter, r *http.Request, req validator) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

// Register handles POST /api/v1/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeValid(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), models.User{
		UserID:   req.UserID,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		writeError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeValid(w, r, &req) {
		return
	}
	token, err := h.auth.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
