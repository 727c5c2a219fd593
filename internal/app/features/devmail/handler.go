// Package devmail exposes the sandbox mail transport's captured messages so
// flows that send mail (password reset, application verification) can be
// exercised locally. It is mounted only in dev with the sandbox transport.
package devmail

import (
	"net/http"
	"strings"

	"github.com/dalemusser/hopenest/internal/app/system/mailer"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Sandbox *mailer.Sandbox
}

func NewHandler(sb *mailer.Sandbox) *Handler {
	return &Handler{Sandbox: sb}
}

// Outbox handles GET /api/dev/outbox[?to=addr], newest message first.
func (h *Handler) Outbox(w http.ResponseWriter, r *http.Request) {
	to := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("to")))
	msgs := h.Sandbox.Messages()

	out := make([]mailer.Captured, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		if to == "" || strings.EqualFold(msgs[i].To, to) {
			out = append(out, msgs[i])
		}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"count": len(out), "messages": out})
}

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/outbox", h.Outbox)
	return r
}
