// internal/app/features/volunteers/routes.go
package volunteers

import (
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Post("/", h.Create)
		pr.Get("/my", h.Mine)
		pr.Put("/{id}/status", h.SetStatus)
		pr.Delete("/{id}", h.Delete)
	})
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin)
		ar.Get("/", h.List)
	})
	return r
}
