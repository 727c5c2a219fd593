// internal/app/features/status/handler.go
package status

import (
	"net/http"
	"time"

	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"go.uber.org/zap"
)

// Handler serves the lightweight liveness and token checks used by the web
// client. Neither touches the database.
type Handler struct {
	Tokens  *auth.Tokens
	Version string
	Log     *zap.Logger
}

func NewHandler(tokens *auth.Tokens, version string, logger *zap.Logger) *Handler {
	return &Handler{Tokens: tokens, Version: version, Log: logger}
}

// GET /api/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{
		"status":    "API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.Version,
	})
}

type checkAuthResponse struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	UserID          string `json:"userId,omitempty"`
}

// CheckAuth handles GET /api/check-auth. Only the signature and expiry are
// checked; whether the account still exists is not.
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	raw := auth.BearerToken(r)
	if raw == "" {
		respond.JSON(w, http.StatusOK, checkAuthResponse{})
		return
	}
	claims, err := h.Tokens.ParseSession(raw)
	if err != nil {
		h.Log.Debug("check-auth: invalid token", zap.Error(err))
		respond.JSON(w, http.StatusOK, checkAuthResponse{})
		return
	}
	respond.JSON(w, http.StatusOK, checkAuthResponse{IsAuthenticated: true, UserID: claims.UserID})
}
