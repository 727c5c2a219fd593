// internal/app/features/authfacebook/routes.go
package authfacebook

import (
	"github.com/dalemusser/hopenest/internal/app/features/shared/oauthflow"
	"github.com/go-chi/chi/v5"
)

func Routes(h *oauthflow.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Get("/callback", h.ServeCallback)
	return r
}
