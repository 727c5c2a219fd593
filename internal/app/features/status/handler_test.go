package status_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/hopenest/internal/app/features/status"
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const secret = "test-secret-test-secret-test-secret"

func newTestHandler() *status.Handler {
	return status.NewHandler(auth.NewTokens(secret, 0), "1.0.0", zap.NewNop())
}

func TestStatus(t *testing.T) {
	h := newTestHandler()

	rec := testutil.NewRecorder()
	h.Status(rec, testutil.NewRequest(http.MethodGet, "/api/status"))
	rec.AssertStatus(t, http.StatusOK)

	var body map[string]string
	rec.DecodeJSON(t, &body)
	if body["status"] != "API is running" || body["version"] != "1.0.0" {
		t.Errorf("unexpected body: %v", body)
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Errorf("timestamp: %v", err)
	}
}

func TestCheckAuth(t *testing.T) {
	h := newTestHandler()
	uid := primitive.NewObjectID().Hex()

	valid, err := auth.NewTokens(secret, 0).IssueSession(uid, "a@b.co", "A")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	foreign, err := auth.NewTokens("some-other-secret-some-other-secret", 0).IssueSession(uid, "a@b.co", "A")
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
		UserID:           uid,
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	cases := []struct {
		name   string
		header string
		authed bool
	}{
		{"no header", "", false},
		{"valid", "Bearer " + valid, true},
		{"wrong secret", "Bearer " + foreign, false},
		{"expired", "Bearer " + expired, false},
		{"garbage", "Bearer not.a.jwt", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := testutil.NewRequest(http.MethodGet, "/api/check-auth")
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := testutil.NewRecorder()
			h.CheckAuth(rec, req)
			rec.AssertStatus(t, http.StatusOK)

			var body struct {
				IsAuthenticated bool    `json:"isAuthenticated"`
				UserID          *string `json:"userId"`
			}
			rec.DecodeJSON(t, &body)
			if body.IsAuthenticated != tc.authed {
				t.Errorf("isAuthenticated: got %v, want %v", body.IsAuthenticated, tc.authed)
			}
			if tc.authed && (body.UserID == nil || *body.UserID != uid) {
				t.Errorf("userId: got %v", body.UserID)
			}
			if !tc.authed && body.UserID != nil {
				t.Errorf("userId should be absent, got %q", *body.UserID)
			}
		})
	}
}
