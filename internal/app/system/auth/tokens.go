package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long a login token stays valid.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Crowdfunding email verification tokens.
const (
	ApplicationVerifyType = "cf_email_verify"
	ApplicationVerifyTTL  = 24 * time.Hour
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and expiry.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrWrongTokenType is returned when a well-formed token was issued for
	// a different purpose.
	ErrWrongTokenType = errors.New("wrong token type")
)

// SessionClaims identify a signed-in user.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"t,omitempty"`
}

// ApplicationVerifyClaims bind a verification link to one application and
// its organizer.
type ApplicationVerifyClaims struct {
	jwt.RegisteredClaims
	Type       string `json:"t"`
	CampaignID string `json:"cid"`
	UserID     string `json:"uid"`
}

// Tokens issues and verifies HS256 tokens.
type Tokens struct {
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// NewTokens returns a Tokens using secret. A non-positive sessionTTL falls
// back to DefaultSessionTTL.
func NewTokens(secret string, sessionTTL time.Duration) *Tokens {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &Tokens{secret: []byte(secret), sessionTTL: sessionTTL, now: time.Now}
}

// IssueSession signs a login token for the user.
func (t *Tokens) IssueSession(userID, email, name string) (string, error) {
	now := t.now()
	return t.sign(SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.sessionTTL)),
		},
		UserID: userID,
		Email:  email,
		Name:   name,
	})
}

// ParseSession verifies a login token. Tokens issued for any other purpose
// are rejected.
func (t *Tokens) ParseSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := t.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueApplicationVerify signs a 24h verification token for an application.
func (t *Tokens) IssueApplicationVerify(campaignID, userID string) (string, error) {
	now := t.now()
	return t.sign(ApplicationVerifyClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ApplicationVerifyTTL)),
		},
		Type:       ApplicationVerifyType,
		CampaignID: campaignID,
		UserID:     userID,
	})
}

// ParseApplicationVerify verifies a verification token. A valid token of
// another type yields ErrWrongTokenType.
func (t *Tokens) ParseApplicationVerify(tokenString string) (*ApplicationVerifyClaims, error) {
	claims := &ApplicationVerifyClaims{}
	if err := t.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != ApplicationVerifyType {
		return nil, ErrWrongTokenType
	}
	if claims.CampaignID == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *Tokens) sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
