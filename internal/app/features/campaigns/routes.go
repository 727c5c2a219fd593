// internal/app/features/campaigns/routes.go
package campaigns

import (
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts /api/campaigns. Reads are public; writes need an admin.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)

	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin)
		ar.Post("/", h.Create)
		ar.Put("/{id}", h.Update)
		ar.Delete("/{id}", h.Delete)
	})
	return r
}
