package auth

import (
	"strings"

	"github.com/dalemusser/hopenest/internal/app/system/inputval"
	"github.com/dalemusser/hopenest/internal/app/system/normalize"
)

// MinPasswordLength applies to signup, profile changes and resets.
const MinPasswordLength = 6

func checkPassword(field, pw string) error {
	if len(pw) < MinPasswordLength {
		return inputval.New(field, "Password must be at least 6 characters")
	}
	return nil
}

func checkEmail(field, email string) error {
	if strings.TrimSpace(email) == "" {
		return inputval.New(field, "Email is required")
	}
	if !inputval.IsValidEmail(normalize.Email(email)) {
		return inputval.New(field, "Please enter a valid email address")
	}
	return nil
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *signupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return inputval.New("name", "Name is required")
	}
	if err := checkEmail("email", r.Email); err != nil {
		return err
	}
	return checkPassword("password", r.Password)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return inputval.New("", "Email and password are required")
	}
	return nil
}

type updateRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Avatar          *string `json:"avatar"`
	Password        string  `json:"password"`
	CurrentPassword string  `json:"currentPassword"`
}

func (r *updateRequest) Validate() error {
	if r.Email != nil && strings.TrimSpace(*r.Email) != "" {
		if err := checkEmail("email", *r.Email); err != nil {
			return err
		}
	}
	if r.Password != "" {
		return checkPassword("password", r.Password)
	}
	return nil
}

type requestResetRequest struct {
	Email string `json:"email"`
}

func (r *requestResetRequest) Validate() error {
	return checkEmail("email", r.Email)
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r *resetPasswordRequest) Validate() error {
	if err := checkEmail("email", r.Email); err != nil {
		return err
	}
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return inputval.New("token", "Reset token is required")
	}
	return checkPassword("newPassword", r.NewPassword)
}
