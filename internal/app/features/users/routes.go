// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts admin user management, typically at /api/users.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireAdmin)

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
