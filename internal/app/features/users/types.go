package users

import (
	"strings"

	"github.com/dalemusser/hopenest/internal/app/system/inputval"
	"github.com/dalemusser/hopenest/internal/app/system/normalize"
	"github.com/dalemusser/hopenest/internal/domain/models"
)

type createRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r *createRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return inputval.New("name", "Name is required")
	}
	if !inputval.IsValidEmail(normalize.Email(r.Email)) {
		return inputval.New("email", "Please enter a valid email address")
	}
	if len(r.Password) < 6 {
		return inputval.New("password", "Password must be at least 6 characters")
	}
	r.Role = normalize.Lower(r.Role)
	if r.Role == "" {
		r.Role = models.RoleUser
	}
	if !inputval.OneOf(r.Role, models.RoleUser, models.RoleAdmin) {
		return inputval.New("role", "Role must be user or admin")
	}
	return nil
}

type updateRequest struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	IsBlocked *bool   `json:"isBlocked"`
	Password  string  `json:"password"`
}

func (r *updateRequest) Validate() error {
	if r.Email != nil && strings.TrimSpace(*r.Email) != "" && !inputval.IsValidEmail(normalize.Email(*r.Email)) {
		return inputval.New("email", "Please enter a valid email address")
	}
	if r.Role != nil {
		role := normalize.Lower(*r.Role)
		if !inputval.OneOf(role, models.RoleUser, models.RoleAdmin) {
			return inputval.New("role", "Role must be user or admin")
		}
		r.Role = &role
	}
	if r.Password != "" && len(r.Password) < 6 {
		return inputval.New("password", "Password must be at least 6 characters")
	}
	return nil
}
