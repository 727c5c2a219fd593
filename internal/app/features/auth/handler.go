// internal/app/features/auth/handler.go
package auth

import (
	"errors"
	"net/http"
	"time"

	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	sysauth "github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/app/system/authz"
	"github.com/dalemusser/hopenest/internal/app/system/effects"
	"github.com/dalemusser/hopenest/internal/app/system/mailer"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.uber.org/zap"
)

// Sender delivers one email.
type Sender interface {
	Send(mailer.Email) error
}

// Client-facing messages.
const (
	msgUserExists      = "User already exists"
	msgInvalidCreds    = "Invalid credentials"
	msgBlocked         = "Account is blocked"
	msgOAuthOnly       = "This account uses social login. Please sign in with Google or Facebook."
	msgResetRequested  = "If an account exists for that email, a reset code has been sent."
	msgInvalidReset    = "Invalid or expired reset token"
	msgPasswordReset   = "Password has been reset successfully"
	msgProfileUpdated  = "Profile updated successfully"
	msgAccountDeleted  = "Account deleted successfully"
	msgEmailInUse      = "Email already in use"
	msgPasswordOAuth   = "Password cannot be changed for social login accounts"
	msgCurrentRequired = "Current password is required"
	msgCurrentWrong    = "Current password is incorrect"
)

type Handler struct {
	Users  *userstore.Store
	Tokens *sysauth.Tokens
	Mail   Sender
	Log    *zap.Logger

	AppName string
	// ExposeResetToken returns the reset code in the request-reset response.
	// Only set in dev.
	ExposeResetToken bool

	GoogleConfigured   bool
	FacebookConfigured bool
}

func NewHandler(users *userstore.Store, tokens *sysauth.Tokens, mail Sender, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		Tokens:  tokens,
		Mail:    mail,
		Log:     logger,
		AppName: "HopeNest",
	}
}

type tokenResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func (h *Handler) issue(w http.ResponseWriter, status int, u *models.User) {
	token, err := h.Tokens.IssueSession(u.ID.Hex(), u.Email, u.Name)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to issue token", err, zap.String("user_id", u.ID.Hex()))
		return
	}
	respond.JSON(w, status, tokenResponse{Token: token, UserID: u.ID.Hex(), Name: u.Name})
}

// Signup handles POST /api/auth/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.signup")
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.NewUser{Name: req.Name, Email: req.Email, Password: req.Password})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Error(w, http.StatusBadRequest, respond.CodeConflict, msgUserExists)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to create account", err)
		return
	}
	h.Log.Info("account created", zap.String("user_id", u.ID.Hex()))
	h.issue(w, http.StatusCreated, u)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.login")
	defer cancel()

	u, err := h.Users.Authenticate(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, userstore.ErrInvalidCredentials):
		respond.Error(w, http.StatusBadRequest, respond.CodeUnauthorized, msgInvalidCreds)
		return
	case errors.Is(err, userstore.ErrOAuthOnly):
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgOAuthOnly)
		return
	case errors.Is(err, userstore.ErrBlocked):
		respond.Error(w, http.StatusForbidden, respond.CodeForbidden, msgBlocked)
		return
	case err != nil:
		respond.Internal(w, h.Log, "Login failed", err)
		return
	}
	h.issue(w, http.StatusOK, u)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := sysauth.CurrentUser(r)
	respond.JSON(w, http.StatusOK, map[string]any{
		"userId": u.ID,
		"name":   u.Name,
		"email":  u.Email,
		"avatar": u.Avatar,
		"role":   u.Role,
	})
}

// Update handles PUT /api/auth/update. A fresh token is returned because
// the name and email claims may have changed.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.update")
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		Avatar:          req.Avatar,
		NewPassword:     req.Password,
		CurrentPassword: req.CurrentPassword,
	})
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		respond.NotFound(w, "User not found")
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		respond.Error(w, http.StatusBadRequest, respond.CodeConflict, msgEmailInUse)
		return
	case errors.Is(err, userstore.ErrPasswordNotAllowed):
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgPasswordOAuth)
		return
	case errors.Is(err, userstore.ErrCurrentPasswordRequired):
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgCurrentRequired)
		return
	case errors.Is(err, userstore.ErrCurrentPasswordIncorrect):
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgCurrentWrong)
		return
	case err != nil:
		respond.Internal(w, h.Log, "Failed to update profile", err, zap.String("user_id", uid.Hex()))
		return
	}

	token, err := h.Tokens.IssueSession(u.ID.Hex(), u.Email, u.Name)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to issue token", err, zap.String("user_id", uid.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message": msgProfileUpdated,
		"token":   token,
		"user": map[string]string{
			"name":   u.Name,
			"email":  u.Email,
			"avatar": u.Avatar,
		},
	})
}

// Delete handles DELETE /api/auth/delete.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.delete")
	defer cancel()

	err := h.Users.Delete(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.NotFound(w, "User not found")
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to delete account", err, zap.String("user_id", uid.Hex()))
		return
	}
	h.Log.Info("account deleted", zap.String("user_id", uid.Hex()))
	respond.JSON(w, http.StatusOK, map[string]string{"message": msgAccountDeleted})
}

// RequestReset handles POST /api/auth/request-reset. The response is the same
// whether or not the account exists.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.request_reset")
	defer cancel()

	body := map[string]string{"message": msgResetRequested}

	code, u, err := h.Users.IssueResetToken(ctx, req.Email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		respond.JSON(w, http.StatusOK, body)
		return
	case err != nil:
		respond.Internal(w, h.Log, "Failed to issue reset token", err)
		return
	}

	sendErr := h.Mail.Send(mailer.BuildPasswordResetEmail(u.Email, mailer.PasswordResetData{
		SiteName:  h.AppName,
		Name:      u.Name,
		Code:      code,
		ExpiresIn: "1 hour",
	}))
	effects.Report(h.Log, "auth.request_reset",
		effects.Outcomes{effects.From("reset_email", sendErr)},
		zap.String("user_id", u.ID.Hex()))

	if h.ExposeResetToken {
		body["resetToken"] = code
	}
	respond.JSON(w, http.StatusOK, body)
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "auth.reset_password")
	defer cancel()

	err := h.Users.ConsumeResetToken(ctx, req.Email, req.Token, req.NewPassword)
	if errors.Is(err, userstore.ErrInvalidResetToken) {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgInvalidReset)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to reset password", err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "message": msgPasswordReset})
}

// OAuthStatus handles GET /api/auth/oauth-status.
func (h *Handler) OAuthStatus(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"google_configured":   h.GoogleConfigured,
		"facebook_configured": h.FacebookConfigured,
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
	})
}
