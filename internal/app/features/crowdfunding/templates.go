// internal/app/features/crowdfunding/templates.go
package crowdfunding

import (
	"embed"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "crowdfunding",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}

type verifyPage struct {
	SiteName    string
	Heading     string
	Message     string
	Title       string
	RedirectURL string
}

// renderPage writes the verify page with status.
func renderPage(w http.ResponseWriter, r *http.Request, status int, data verifyPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	templates.Render(w, r, "verify_page", data)
}
