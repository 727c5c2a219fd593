// Package oauthflow runs the authorization-code login shared by every OAuth
// provider: state issue and check, code exchange, profile fetch, account
// link, and the redirect back to the web client with a session token.
package oauthflow

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/hopenest/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// StateTTL bounds how long a user may sit on the provider's consent screen.
const StateTTL = 10 * time.Minute

// ProfileFetcher reads the signed-in user's profile with an authorized
// client. Provider is filled in by the caller.
type ProfileFetcher func(ctx context.Context, client *http.Client) (userstore.OAuthProfile, error)

// Provider describes one OAuth provider.
type Provider struct {
	Name        string // google | facebook
	Config      *oauth2.Config
	Fetch       ProfileFetcher
	AuthOptions []oauth2.AuthCodeOption
}

// Deps are shared by every provider handler.
type Deps struct {
	States        *oauthstate.Store
	Users         *userstore.Store
	Tokens        *auth.Tokens
	Cookies       *securecookie.SecureCookie
	FrontendURL   string
	SecureCookies bool // set the Secure flag on the state cookie
	Log           *zap.Logger
}

// Handler serves the initiate and callback routes for one provider.
type Handler struct {
	Provider Provider
	Deps
}

// NewHandler binds a provider to the shared dependencies.
func NewHandler(p Provider, deps Deps) *Handler {
	return &Handler{Provider: p, Deps: deps}
}

// IsConfigured reports whether client credentials are present.
func (h *Handler) IsConfigured() bool {
	c := h.Provider.Config
	return c != nil && c.ClientID != "" && c.ClientSecret != ""
}

// CookieName is the state cookie for provider.
func CookieName(provider string) string {
	return "hn_oauth_" + provider
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/auth/{provider}                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("oauth provider not configured", zap.String("provider", h.Provider.Name))
		respond.Error(w, http.StatusServiceUnavailable, respond.CodeUnavailable,
			fmt.Sprintf("%s login is not configured", displayName(h.Provider.Name)))
		return
	}

	state, err := generateState()
	if err != nil {
		respond.Internal(w, h.Log, "Failed to start login", err, zap.String("provider", h.Provider.Name))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "oauth.save_state")
	defer cancel()
	if err := h.States.Save(ctx, state, h.Provider.Name, StateTTL); err != nil {
		respond.Internal(w, h.Log, "Failed to start login", err, zap.String("provider", h.Provider.Name))
		return
	}

	encoded, err := h.Cookies.Encode(CookieName(h.Provider.Name), state)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to start login", err, zap.String("provider", h.Provider.Name))
		return
	}
	http.SetCookie(w, h.stateCookie(encoded, int(StateTTL/time.Second)))

	target := h.Provider.Config.AuthCodeURL(state, h.Provider.AuthOptions...)
	h.Log.Debug("initiating oauth flow", zap.String("provider", h.Provider.Name))
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/auth/{provider}/callback                                            |
*─────────────────────────────────────────────────────────────────────────────*/

var (
	errProviderDenied = errors.New("provider returned an error")
	errStateMismatch  = errors.New("state does not match cookie")
	errStateUnknown   = errors.New("state unknown, expired or already used")
	errMissingCode    = errors.New("missing authorization code")
	errBlocked        = errors.New("account is blocked")
)

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	// The state cookie is single use whatever happens next.
	http.SetCookie(w, h.stateCookie("", -1))

	u, err := h.complete(r)
	if err != nil {
		lvl := h.Log.Warn
		if !isClientFailure(err) {
			lvl = h.Log.Error
		}
		lvl("oauth login failed", zap.String("provider", h.Provider.Name), zap.Error(err))
		http.Redirect(w, r, h.FrontendURL+"/login?error=oauth_failed", http.StatusFound)
		return
	}

	token, err := h.Tokens.IssueSession(u.ID, u.Email, u.Name)
	if err != nil {
		h.Log.Error("failed to issue session token", zap.String("user_id", u.ID), zap.Error(err))
		http.Redirect(w, r, h.FrontendURL+"/login?error=oauth_failed", http.StatusFound)
		return
	}

	h.Log.Info("oauth login", zap.String("provider", h.Provider.Name), zap.String("user_id", u.ID))
	q := url.Values{"token": {token}, "name": {u.Name}}
	http.Redirect(w, r, h.FrontendURL+"/?"+q.Encode(), http.StatusFound)
}

// complete validates the callback and resolves it to an unblocked account.
func (h *Handler) complete(r *http.Request) (*auth.SessionUser, error) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		return nil, fmt.Errorf("%w: %s %s", errProviderDenied, e, q.Get("error_description"))
	}

	state := q.Get("state")
	if state == "" || !h.cookieMatches(r, state) {
		return nil, errStateMismatch
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "oauth.callback")
	defer cancel()

	ok, err := h.States.Consume(ctx, state, h.Provider.Name)
	if err != nil {
		return nil, fmt.Errorf("consume state: %w", err)
	}
	if !ok {
		return nil, errStateUnknown
	}

	code := q.Get("code")
	if code == "" {
		return nil, errMissingCode
	}
	tok, err := h.Provider.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	profile, err := h.Provider.Fetch(ctx, h.Provider.Config.Client(ctx, tok))
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	profile.Provider = h.Provider.Name
	if profile.ProviderID == "" {
		return nil, errors.New("profile has no id")
	}

	u, err := h.Users.LinkOrCreateOAuth(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("link account: %w", err)
	}
	if u.IsBlocked {
		return nil, errBlocked
	}
	return &auth.SessionUser{ID: u.ID.Hex(), Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

func (h *Handler) cookieMatches(r *http.Request, state string) bool {
	c, err := r.Cookie(CookieName(h.Provider.Name))
	if err != nil {
		return false
	}
	var want string
	if err := h.Cookies.Decode(CookieName(h.Provider.Name), c.Value, &want); err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(state)) == 1
}

func (h *Handler) stateCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(h.Provider.Name),
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func isClientFailure(err error) bool {
	return errors.Is(err, errProviderDenied) || errors.Is(err, errStateMismatch) ||
		errors.Is(err, errStateUnknown) || errors.Is(err, errMissingCode) || errors.Is(err, errBlocked)
}

func displayName(provider string) string {
	if provider == "" {
		return "OAuth"
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
