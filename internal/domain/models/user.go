// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Providers record how an account was first created.
const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// User is a donor, organizer, volunteer, or admin.
//
// An account authenticates either with a password or through an OAuth
// provider, never both: PasswordHash is set iff GoogleID and FacebookID are
// both empty.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"-"` // folded, used for uniqueness and lookups
	Avatar     string             `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Provider   string             `bson:"provider" json:"provider"`
	Role       string             `bson:"role" json:"role"`
	IsBlocked  bool               `bson:"is_blocked" json:"isBlocked"`
	GoogleID   string             `bson:"google_id,omitempty" json:"googleId,omitempty"`
	FacebookID string             `bson:"facebook_id,omitempty" json:"facebookId,omitempty"`

	PasswordHash string `bson:"password_hash,omitempty" json:"-"`

	// Password reset. The code itself is never stored, only its bcrypt hash.
	ResetTokenHash   string     `bson:"reset_token_hash,omitempty" json:"-"`
	ResetTokenExpiry *time.Time `bson:"reset_token_expiry,omitempty" json:"-"`
	ResetAttempts    int        `bson:"reset_attempts,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasOAuthIdentity reports whether any provider identifier is linked.
func (u User) HasOAuthIdentity() bool {
	return u.GoogleID != "" || u.FacebookID != ""
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
