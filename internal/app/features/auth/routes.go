// internal/app/features/auth/routes.go
package auth

import (
	sysauth "github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the local account endpoints. The OAuth providers are mounted
// beside these by the caller.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)
	r.Post("/request-reset", h.RequestReset)
	r.Post("/reset-password", h.ResetPassword)
	r.Get("/oauth-status", h.OAuthStatus)

	r.Group(func(pr chi.Router) {
		pr.Use(sysauth.RequireSignedIn)
		pr.Get("/me", h.Me)
		pr.Put("/update", h.Update)
		pr.Delete("/delete", h.Delete)
	})
	return r
}
