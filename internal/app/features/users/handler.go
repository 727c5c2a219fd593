// internal/app/features/users/handler.go
package users

import (
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"go.uber.org/zap"
)

type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs the admin user-management handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}
