// internal/app/features/users/edit.go
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

// Create handles POST /api/users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.create")
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.NewUser{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: req.Role,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Error(w, http.StatusBadRequest, respond.CodeConflict, "User already exists")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to create user", err)
		return
	}
	h.Log.Info("user created by admin", zap.String("user_id", u.ID.Hex()), zap.String("role", u.Role))
	respond.JSON(w, http.StatusCreated, u)
}

// Update handles PUT /api/users/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, "User not found")
		return
	}
	var req updateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.update")
	defer cancel()

	u, err := h.Users.AdminUpdate(ctx, id, userstore.AdminUserUpdate{
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		IsBlocked: req.IsBlocked,
		Password:  req.Password,
	})
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		respond.NotFound(w, "User not found")
	case errors.Is(err, userstore.ErrDuplicateEmail):
		respond.Error(w, http.StatusBadRequest, respond.CodeConflict, "Email already in use")
	case errors.Is(err, userstore.ErrPasswordNotAllowed):
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "Password cannot be set for social login accounts")
	case err != nil:
		respond.Internal(w, h.Log, "Failed to update user", err, zap.String("user_id", id.Hex()))
	default:
		respond.JSON(w, http.StatusOK, u)
	}
}

// Delete handles DELETE /api/users/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, "User not found")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "users.delete")
	defer cancel()

	err := h.Users.Delete(ctx, id)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.NotFound(w, "User not found")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to delete user", err, zap.String("user_id", id.Hex()))
		return
	}
	h.Log.Info("user deleted by admin", zap.String("user_id", id.Hex()))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
