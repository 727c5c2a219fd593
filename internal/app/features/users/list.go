// internal/app/features/users/list.go
package users

import (
	"errors"
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// List handles GET /api/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "users.list")
	defer cancel()

	list, err := h.Users.List(ctx)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load users", err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// Get handles GET /api/users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, "User not found")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.get")
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.NotFound(w, "User not found")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load user", err, zap.String("user_id", id.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, u)
}
