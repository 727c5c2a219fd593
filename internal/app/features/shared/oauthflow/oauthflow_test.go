package oauthflow_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/hopenest/internal/app/features/shared/oauthflow"
	"github.com/dalemusser/hopenest/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/testutil"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

const frontend = "http://app.test"

type env struct {
	h      *oauthflow.Handler
	tokens *auth.Tokens
	users  *userstore.Store
	fx     *testutil.Fixtures
}

// newEnv points the provider at a fake token endpoint; profile is what the
// fake provider asserts.
func newEnv(t *testing.T, profile userstore.OAuthProfile) env {
	t.Helper()
	db := testutil.SetupTestDB(t)

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-123","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	p := oauthflow.Provider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     "cid",
			ClientSecret: "secret",
			RedirectURL:  "http://api.test/api/auth/google/callback",
			Endpoint: oauth2.Endpoint{
				AuthURL:   "http://provider.test/auth",
				TokenURL:  tokenSrv.URL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		Fetch: func(ctx context.Context, _ *http.Client) (userstore.OAuthProfile, error) {
			return profile, nil
		},
	}

	users := userstore.NewWithCost(db, bcrypt.MinCost)
	tokens := auth.NewTokens("test-secret-test-secret-test-secret", 0)
	h := oauthflow.NewHandler(p, oauthflow.Deps{
		States:      oauthstate.New(db),
		Users:       users,
		Tokens:      tokens,
		Cookies:     securecookie.New([]byte("0123456789abcdef0123456789abcdef"), nil),
		FrontendURL: frontend,
		Log:         zap.NewNop(),
	})
	return env{h: h, tokens: tokens, users: users, fx: testutil.NewFixtures(t, db)}
}

// begin runs the initiate step and returns the issued state and cookie.
func begin(t *testing.T, h *oauthflow.Handler) (string, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("ServeLogin status: got %d", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse location: %v", err)
	}
	state := loc.Query().Get("state")
	if state == "" {
		t.Fatal("no state in redirect")
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == oauthflow.CookieName("google") {
			return state, c
		}
	}
	t.Fatal("state cookie not set")
	return "", nil
}

func callback(h *oauthflow.Handler, query string, c *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/google/callback?"+query, nil)
	if c != nil {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, req)
	return rec
}

func TestServeLogin_NotConfigured(t *testing.T) {
	e := newEnv(t, userstore.OAuthProfile{})
	e.h.Provider.Config.ClientSecret = ""

	rec := httptest.NewRecorder()
	e.h.ServeLogin(rec, httptest.NewRequest(http.MethodGet, "/api/auth/google", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status: got %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Google login is not configured") {
		t.Errorf("body: %s", rec.Body.String())
	}
}

func TestCallback_CreatesAccountAndRedirectsWithToken(t *testing.T) {
	e := newEnv(t, userstore.OAuthProfile{ProviderID: "g-100", Email: "new@example.com", Name: "New Person"})
	state, c := begin(t, e.h)

	rec := callback(e.h, url.Values{"state": {state}, "code": {"abc"}}.Encode(), c)
	if rec.Code != http.StatusFound {
		t.Fatalf("status: got %d", rec.Code)
	}
	loc, _ := url.Parse(rec.Header().Get("Location"))
	if loc.Host != "app.test" || loc.Path != "/" {
		t.Fatalf("location: %s", loc)
	}
	if loc.Query().Get("name") != "New Person" {
		t.Errorf("name param: %q", loc.Query().Get("name"))
	}
	claims, err := e.tokens.ParseSession(loc.Query().Get("token"))
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u, err := e.users.GetByEmail(ctx, "new@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if u.ID.Hex() != claims.UserID || u.GoogleID != "g-100" || u.PasswordHash != "" {
		t.Errorf("unexpected account: %+v", u)
	}
}

func TestCallback_StateIsSingleUse(t *testing.T) {
	e := newEnv(t, userstore.OAuthProfile{ProviderID: "g-101", Email: "once@example.com", Name: "Once"})
	state, c := begin(t, e.h)
	q := url.Values{"state": {state}, "code": {"abc"}}.Encode()

	if rec := callback(e.h, q, c); !strings.Contains(rec.Header().Get("Location"), "token=") {
		t.Fatalf("first callback should succeed: %s", rec.Header().Get("Location"))
	}
	rec := callback(e.h, q, c)
	if got := rec.Header().Get("Location"); got != frontend+"/login?error=oauth_failed" {
		t.Errorf("replayed state: got %q", got)
	}
}

func TestCallback_Failures(t *testing.T) {
	e := newEnv(t, userstore.OAuthProfile{ProviderID: "g-102", Email: "f@example.com", Name: "F"})
	state, c := begin(t, e.h)
	forged := &http.Cookie{Name: c.Name, Value: "forged"}

	cases := []struct {
		name   string
		query  url.Values
		cookie *http.Cookie
	}{
		{"provider error", url.Values{"error": {"access_denied"}}, c},
		{"missing state", url.Values{"code": {"abc"}}, c},
		{"no cookie", url.Values{"state": {state}, "code": {"abc"}}, nil},
		{"forged cookie", url.Values{"state": {state}, "code": {"abc"}}, forged},
		{"wrong state", url.Values{"state": {"other"}, "code": {"abc"}}, c},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := callback(e.h, tc.query.Encode(), tc.cookie)
			if got := rec.Header().Get("Location"); got != frontend+"/login?error=oauth_failed" {
				t.Errorf("location: got %q", got)
			}
		})
	}
}

func TestCallback_BlockedUserRejected(t *testing.T) {
	e := newEnv(t, userstore.OAuthProfile{ProviderID: "g-103", Email: "blocked@example.com", Name: "B"})
	ctx, cancel := testutil.TestContext()
	defer cancel()
	e.fx.CreateBlockedUser(ctx, "B", "blocked@example.com")

	state, c := begin(t, e.h)
	rec := callback(e.h, url.Values{"state": {state}, "code": {"abc"}}.Encode(), c)
	if got := rec.Header().Get("Location"); got != frontend+"/login?error=oauth_failed" {
		t.Errorf("location: got %q", got)
	}
}
