package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("super-secret", time.Hour)
	tok, err := tokens.IssueSession("user-123", "ada@example.com", "Ada")
	require.NoError(t, err)

	claims, err := tokens.ParseSession(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
}

func TestSessionToken_Expired(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("secret", time.Hour)
	tokens.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := tokens.IssueSession("u1", "", "")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.ParseSession(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokens("right-secret", 0).IssueSession("u2", "", "")
	require.NoError(t, err)

	_, err = NewTokens("wrong-secret", 0).ParseSession(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionToken_DefaultTTL(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("secret", 0)
	tok, err := tokens.IssueSession("u3", "", "")
	require.NoError(t, err)

	claims, err := tokens.ParseSession(tok)
	require.NoError(t, err)
	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, DefaultSessionTTL, ttl)
}

func TestApplicationVerifyToken_RoundTrip(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("secret", 0)
	tok, err := tokens.IssueApplicationVerify("camp-1", "user-1")
	require.NoError(t, err)

	claims, err := tokens.ParseApplicationVerify(tok)
	require.NoError(t, err)
	assert.Equal(t, ApplicationVerifyType, claims.Type)
	assert.Equal(t, "camp-1", claims.CampaignID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, ApplicationVerifyTTL, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestApplicationVerifyToken_ExpiresAfter24h(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("secret", 0)
	issued := time.Now().Add(-25 * time.Hour)
	tokens.now = func() time.Time { return issued }
	tok, err := tokens.IssueApplicationVerify("camp-1", "user-1")
	require.NoError(t, err)

	tokens.now = time.Now
	_, err = tokens.ParseApplicationVerify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestApplicationVerifyToken_RejectsSessionToken(t *testing.T) {
	t.Parallel()

	tokens := NewTokens("secret", 0)
	tok, err := tokens.IssueSession("user-1", "", "")
	require.NoError(t, err)

	_, err = tokens.ParseApplicationVerify(tok)
	assert.True(t, errors.Is(err, ErrWrongTokenType), "got %v", err)
}
