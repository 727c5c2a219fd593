// internal/app/features/status/routes.go
package status

import "github.com/go-chi/chi/v5"

// Routes is mounted under /api.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/status", h.Status)
	r.Get("/check-auth", h.CheckAuth)
	return r
}
