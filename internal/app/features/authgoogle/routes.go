// internal/app/features/authgoogle/routes.go
package authgoogle

import (
	"github.com/dalemusser/hopenest/internal/app/features/shared/oauthflow"
	"github.com/go-chi/chi/v5"
)

// Routes mounts GET / (initiate) and GET /callback.
func Routes(h *oauthflow.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	return r
}
