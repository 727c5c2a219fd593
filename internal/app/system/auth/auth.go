// Package auth verifies bearer tokens and carries the signed-in user through
// the request context.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"go.uber.org/zap"
)

// SessionUser is the user attached to an authenticated request. It is loaded
// fresh on every request so role changes and blocks take effect immediately.
type SessionUser struct {
	ID      string
	Name    string
	Email   string
	Avatar  string
	Role    string
	Blocked bool
}

// IsAdmin reports whether the user holds the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, "admin")
}

// UserFetcher loads the current state of a user. It returns (nil, nil) when
// the user no longer exists.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) (*SessionUser, error)
}

type ctxKey string

const (
	currentUserKey ctxKey = "currentUser"
	authStateKey   ctxKey = "authState"
)

type authState int

const (
	stateNoToken authState = iota
	stateInvalidToken
	stateLookupFailed
)

// CurrentUser returns the user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context. For tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or returns "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// Authenticator resolves bearer tokens to users.
type Authenticator struct {
	tokens  *Tokens
	fetcher UserFetcher
	log     *zap.Logger
}

// NewAuthenticator builds an Authenticator.
func NewAuthenticator(tokens *Tokens, fetcher UserFetcher, logger *zap.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, fetcher: fetcher, log: logger}
}

// Tokens returns the token issuer used by this Authenticator.
func (a *Authenticator) Tokens() *Tokens {
	return a.tokens
}

// LoadUser resolves the bearer token, if any, and injects the user into the
// context. It never rejects a request; RequireSignedIn and RequireAdmin do.
func (a *Authenticator) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := BearerToken(r)
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.tokens.ParseSession(raw)
		if err != nil {
			next.ServeHTTP(w, withState(r, stateInvalidToken))
			return
		}

		u, err := a.fetcher.FetchUser(r.Context(), claims.UserID)
		switch {
		case err != nil:
			a.log.Error("failed to load user for token",
				zap.String("user_id", claims.UserID), zap.Error(err))
			next.ServeHTTP(w, withState(r, stateLookupFailed))
		case u == nil:
			next.ServeHTTP(w, withState(r, stateInvalidToken))
		default:
			next.ServeHTTP(w, withUser(r, u))
		}
	})
}

// RequireSignedIn rejects requests without a valid token for an existing,
// unblocked user.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !checkSignedIn(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin is RequireSignedIn plus an admin role check.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !checkSignedIn(w, r) {
			return
		}
		if u, _ := CurrentUser(r); !u.IsAdmin() {
			respond.Error(w, http.StatusForbidden, respond.CodeForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func checkSignedIn(w http.ResponseWriter, r *http.Request) bool {
	u, ok := CurrentUser(r)
	if ok {
		if u.Blocked {
			respond.Error(w, http.StatusForbidden, respond.CodeForbidden, "Account is blocked")
			return false
		}
		return true
	}

	state, _ := r.Context().Value(authStateKey).(authState)
	switch state {
	case stateInvalidToken:
		respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "Invalid or expired token")
	case stateLookupFailed:
		respond.Error(w, http.StatusInternalServerError, respond.CodeInternal, "Internal server error")
	default:
		respond.Error(w, http.StatusUnauthorized, respond.CodeUnauthorized, "Authentication required")
	}
	return false
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func withState(r *http.Request, s authState) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), authStateKey, s))
}
