package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all v1 API routes mounted.
// authEnabled controls whether bearer-token auth is enforced on the
// protected groups; verifier introspects presented tokens.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(h *Handler, authEnabled bool, verifier TokenVerifier, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()

	// Authentication endpoints are open by definition.
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth(authEnabled, verifier))

		// User profiles.
		r.Get("/user/{id}", h.GetUser)
		r.Put("/user/{id}", h.UpdateUser)
		r.Delete("/user/{id}", h.DeleteUser)

		// Notes.
		r.Post("/note", h.CreateNote)
		r.Get("/note/{userId}", h.GetAllNotes)
		r.Get("/note/{userId}/{noteId}", h.GetNote)
		r.Put("/note/{userId}/{noteId}", h.UpdateNote)
		r.Delete("/note/{userId}", h.DeleteAllNotes)
		r.Delete("/note/{userId}/{noteId}", h.DeleteNote)

		// Categories.
		r.Post("/category", h.CreateCategory)
		r.Get("/category/{id}", h.GetCategory)
		r.Put("/category/{id}", h.UpdateCategory)
		r.Delete("/category/{id}", h.DeleteCategory)

		// Reminders.
		r.Post("/reminder", h.CreateReminder)
		r.Get("/reminder/{id}", h.GetReminder)
		r.Put("/reminder/{id}", h.UpdateReminder)
		r.Delete("/reminder/{id}", h.DeleteReminder)

		// SSE endpoint (protected by the same auth middleware).
		if sseHandler != nil {
			r.Get("/events", sseHandler.ServeHTTP)
		}
	})

	return r
}
