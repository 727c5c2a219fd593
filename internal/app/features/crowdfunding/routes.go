// internal/app/features/crowdfunding/routes.go
package crowdfunding

import (
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts /api/crowdfunding. uploadLimit, when non-nil, guards /apply.
func Routes(h *Handler, uploadLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// Public
	r.Get("/", h.List)
	r.Get("/verify-email", h.VerifyEmail)

	// Signed-in applicants
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/my", h.Mine)
		pr.Post("/{id}/resend-verification", h.ResendVerification)
		if uploadLimit != nil {
			pr.With(uploadLimit).Post("/apply", h.Apply)
		} else {
			pr.Post("/apply", h.Apply)
		}
	})

	// Admin
	r.Group(func(ar chi.Router) {
		ar.Use(auth.RequireAdmin)
		ar.Get("/all", h.All)
		ar.Post("/", h.Create)
		ar.Put("/{id}", h.Update)
		ar.Delete("/{id}", h.Delete)
		ar.Put("/{id}/approve", h.Approve)
		ar.Put("/{id}/reject", h.Reject)
	})

	r.Get("/{id}", h.Get)
	return r
}
