package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"go.uber.org/zap"
)

type stubFetcher struct {
	users map[string]*auth.SessionUser
	err   error
}

func (s stubFetcher) FetchUser(_ context.Context, id string) (*auth.SessionUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users[id], nil
}

const testSecret = "test-secret-that-is-long-enough-0123456789"

func newAuthenticator(users ...*auth.SessionUser) (*auth.Authenticator, *auth.Tokens) {
	m := make(map[string]*auth.SessionUser, len(users))
	for _, u := range users {
		m[u.ID] = u
	}
	tokens := auth.NewTokens(testSecret, 0)
	return auth.NewAuthenticator(tokens, stubFetcher{users: m}, zap.NewNop()), tokens
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serve(a *auth.Authenticator, gate func(http.Handler) http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.LoadUser(gate(okHandler())).ServeHTTP(rec, req)
	return rec
}

func TestRequireSignedIn_NoToken_Returns401(t *testing.T) {
	a, _ := newAuthenticator()
	rec := serve(a, auth.RequireSignedIn, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Authentication required") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRequireSignedIn_GarbageToken_Returns401(t *testing.T) {
	a, _ := newAuthenticator()
	rec := serve(a, auth.RequireSignedIn, "not-a-jwt")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid or expired token") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRequireSignedIn_DeletedUser_Returns401(t *testing.T) {
	a, tokens := newAuthenticator()
	tok, _ := tokens.IssueSession("507f1f77bcf86cd799439011", "gone@example.com", "Gone")

	if rec := serve(a, auth.RequireSignedIn, tok); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted user, got %d", rec.Code)
	}
}

func TestRequireSignedIn_ValidUser_Proceeds(t *testing.T) {
	u := &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Name: "Ada", Role: "user"}
	a, tokens := newAuthenticator(u)
	tok, _ := tokens.IssueSession(u.ID, "ada@example.com", u.Name)

	if rec := serve(a, auth.RequireSignedIn, tok); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireSignedIn_BlockedUser_Returns403(t *testing.T) {
	u := &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "user", Blocked: true}
	a, tokens := newAuthenticator(u)
	tok, _ := tokens.IssueSession(u.ID, "", "")

	rec := serve(a, auth.RequireSignedIn, tok)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Account is blocked") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRequireSignedIn_VerifyTokenIsNotASession(t *testing.T) {
	u := &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "user"}
	a, tokens := newAuthenticator(u)
	tok, _ := tokens.IssueApplicationVerify("507f1f77bcf86cd799439099", u.ID)

	if rec := serve(a, auth.RequireSignedIn, tok); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for verification token used as session, got %d", rec.Code)
	}
}

func TestRequireSignedIn_LookupFailure_Returns500(t *testing.T) {
	tokens := auth.NewTokens(testSecret, 0)
	a := auth.NewAuthenticator(tokens, stubFetcher{err: errors.New("db down")}, zap.NewNop())
	tok, _ := tokens.IssueSession("507f1f77bcf86cd799439011", "", "")

	if rec := serve(a, auth.RequireSignedIn, tok); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	member := &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "user"}
	admin := &auth.SessionUser{ID: "507f1f77bcf86cd799439012", Role: "admin"}
	a, tokens := newAuthenticator(member, admin)

	memberTok, _ := tokens.IssueSession(member.ID, "", "")
	adminTok, _ := tokens.IssueSession(admin.ID, "", "")

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"member", memberTok, http.StatusForbidden},
		{"admin", adminTok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(a, auth.RequireAdmin, tt.token); rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc.def", "abc.def"},
		{"bearer abc", "abc"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer ", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := auth.BearerToken(req); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestCurrentUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if u, ok := auth.CurrentUser(req); ok || u != nil {
		t.Fatal("expected no user in a fresh request")
	}

	req = auth.WithTestUser(req, &auth.SessionUser{ID: "507f1f77bcf86cd799439011", Role: "admin"})
	u, ok := auth.CurrentUser(req)
	if !ok || !u.IsAdmin() {
		t.Fatalf("expected admin user in context, got %+v", u)
	}
}
