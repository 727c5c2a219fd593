// Package userstore persists user accounts and their credentials.
package userstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/hopenest/internal/app/system/normalize"
	"github.com/dalemusser/hopenest/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrNotFound       = errors.New("user not found")

	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBlocked            = errors.New("account is blocked")
	// ErrOAuthOnly means the account has no password and must sign in through its provider.
	ErrOAuthOnly = errors.New("account uses social login")

	ErrCurrentPasswordRequired  = errors.New("current password is required")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	// ErrPasswordNotAllowed is returned when setting a password on an OAuth account.
	ErrPasswordNotAllowed = errors.New("password cannot be set on a social login account")

	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)

const (
	// ResetTokenTTL is how long a reset code stays valid.
	ResetTokenTTL = time.Hour
	// MaxResetAttempts bounds wrong guesses against one issued code.
	MaxResetAttempts = 5
)

type Store struct {
	c    *mongo.Collection
	cost int
	now  func() time.Time

	// compared against when the email is unknown so both paths pay for bcrypt
	dummyHash []byte
}

func New(db *mongo.Database) *Store {
	return NewWithCost(db, bcrypt.DefaultCost)
}

// NewWithCost lets tests use bcrypt.MinCost.
func NewWithCost(db *mongo.Database, cost int) *Store {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("hopenest-timing-equalizer"), cost)
	return &Store{
		c:         db.Collection("users"),
		cost:      cost,
		now:       func() time.Time { return time.Now().UTC() },
		dummyHash: dummy,
	}
}

func (s *Store) hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email_ci": text.Fold(normalize.Email(email))})
}

// List returns every user, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewUser is a local account registration.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     string // defaults to user
}

// Create inserts a local account with a hashed password.
func (s *Store) Create(ctx context.Context, nu NewUser) (*models.User, error) {
	hash, err := s.hash(nu.Password)
	if err != nil {
		return nil, err
	}
	role := nu.Role
	if role == "" {
		role = models.RoleUser
	}
	now := s.now()
	email := normalize.Email(nu.Email)
	u := models.User{
		ID:           primitive.NewObjectID(),
		Name:         normalize.Name(nu.Name),
		Email:        email,
		EmailCI:      text.Fold(email),
		Provider:     models.ProviderLocal,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &u, nil
}

// Authenticate checks a local password. Unknown email and wrong password are
// indistinguishable; a block is only revealed once the password matched.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrOAuthOnly
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return nil, ErrBlocked
	}
	return u, nil
}

// OAuthProfile is what a provider asserts about a signed-in user.
type OAuthProfile struct {
	Provider   string // google | facebook
	ProviderID string
	Email      string
	Name       string
	Avatar     string
}

func providerField(provider string) (string, error) {
	switch provider {
	case models.ProviderGoogle:
		return "google_id", nil
	case models.ProviderFacebook:
		return "facebook_id", nil
	}
	return "", fmt.Errorf("unknown oauth provider %q", provider)
}

// LinkOrCreateOAuth resolves a provider login to an account: by provider id,
// then by email (linking the provider and dropping any password), then by
// creating a passwordless account. The provider's email is trusted.
func (s *Store) LinkOrCreateOAuth(ctx context.Context, p OAuthProfile) (*models.User, error) {
	field, err := providerField(p.Provider)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.ProviderID) == "" {
		return nil, errors.New("missing provider id")
	}

	u, err := s.findOne(ctx, bson.M{field: p.ProviderID})
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	email := normalize.Email(p.Email)
	if email != "" {
		set := bson.M{field: p.ProviderID, "updated_at": s.now()}
		if p.Avatar != "" {
			set["avatar"] = p.Avatar
		}
		var linked models.User
		err := s.c.FindOneAndUpdate(ctx,
			bson.M{"email_ci": text.Fold(email)},
			bson.M{
				"$set":   set,
				"$unset": bson.M{"password_hash": "", "reset_token_hash": "", "reset_token_expiry": "", "reset_attempts": ""},
			},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&linked)
		if err == nil {
			return &linked, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	} else {
		// Some providers withhold the address; keep email_ci unique anyway.
		email = fmt.Sprintf("%s@%s.oauth.hopenest", p.ProviderID, p.Provider)
	}

	name := normalize.Name(p.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	now := s.now()
	nu := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		EmailCI:   text.Fold(email),
		Avatar:    p.Avatar,
		Provider:  p.Provider,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Provider == models.ProviderGoogle {
		nu.GoogleID = p.ProviderID
	} else {
		nu.FacebookID = p.ProviderID
	}
	if _, err := s.c.InsertOne(ctx, nu); err != nil {
		if wafflemongo.IsDup(err) {
			// A concurrent callback for the same identity won the insert.
			return s.findOne(ctx, bson.M{field: p.ProviderID})
		}
		return nil, err
	}
	return &nu, nil
}

// ProfileUpdate is a self-service change. Nil fields are left alone.
type ProfileUpdate struct {
	Name            *string
	Email           *string
	Avatar          *string
	NewPassword     string
	CurrentPassword string
}

// UpdateProfile applies a self-service change and returns the updated user.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := s.identitySet(upd.Name, upd.Email)
	if upd.Avatar != nil {
		set["avatar"] = strings.TrimSpace(*upd.Avatar)
	}
	if upd.NewPassword != "" {
		if u.HasOAuthIdentity() {
			return nil, ErrPasswordNotAllowed
		}
		if upd.CurrentPassword == "" {
			return nil, ErrCurrentPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(upd.CurrentPassword)) != nil {
			return nil, ErrCurrentPasswordIncorrect
		}
		hash, err := s.hash(upd.NewPassword)
		if err != nil {
			return nil, err
		}
		set["password_hash"] = hash
	}
	return s.apply(ctx, id, set)
}

// AdminUserUpdate is an admin's change to any account. Nil fields are left alone.
type AdminUserUpdate struct {
	Name      *string
	Email     *string
	Role      *string
	IsBlocked *bool
	Password  string
}

// AdminUpdate applies an admin change and returns the updated user.
func (s *Store) AdminUpdate(ctx context.Context, id primitive.ObjectID, upd AdminUserUpdate) (*models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := s.identitySet(upd.Name, upd.Email)
	if upd.Role != nil {
		set["role"] = *upd.Role
	}
	if upd.IsBlocked != nil {
		set["is_blocked"] = *upd.IsBlocked
	}
	if upd.Password != "" {
		if u.HasOAuthIdentity() {
			return nil, ErrPasswordNotAllowed
		}
		hash, err := s.hash(upd.Password)
		if err != nil {
			return nil, err
		}
		set["password_hash"] = hash
	}
	return s.apply(ctx, id, set)
}

func (s *Store) identitySet(name, email *string) bson.M {
	set := bson.M{"updated_at": s.now()}
	if name != nil && strings.TrimSpace(*name) != "" {
		set["name"] = normalize.Name(*name)
	}
	if email != nil && strings.TrimSpace(*email) != "" {
		e := normalize.Email(*email)
		set["email"] = e
		set["email_ci"] = text.Fold(e)
	}
	return set
}

func (s *Store) apply(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	switch {
	case err == nil:
		return &u, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case wafflemongo.IsDup(err):
		return nil, ErrDuplicateEmail
	}
	return nil, err
}

// Delete removes an account.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IssueResetToken stores a fresh reset code for a local account and returns
// the plaintext code with the user it was issued for. Unknown and OAuth-only
// accounts get ErrNotFound.
func (s *Store) IssueResetToken(ctx context.Context, email string) (string, *models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if u.PasswordHash == "" {
		return "", nil, ErrNotFound
	}

	code, err := newResetCode()
	if err != nil {
		return "", nil, err
	}
	hash, err := s.hash(code)
	if err != nil {
		return "", nil, err
	}
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"reset_token_hash":   hash,
		"reset_token_expiry": s.now().Add(ResetTokenTTL),
		"reset_attempts":     0,
		"updated_at":         s.now(),
	}})
	if err != nil {
		return "", nil, err
	}
	return code, u, nil
}

// newResetCode returns 6 uppercase hex characters.
func newResetCode() (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// ConsumeResetToken sets a new password when code matches the outstanding,
// unexpired reset code. The code is cleared on success, so it works once.
func (s *Store) ConsumeResetToken(ctx context.Context, email, code, newPassword string) error {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if u.ResetTokenHash == "" || u.ResetTokenExpiry == nil ||
		!s.now().Before(*u.ResetTokenExpiry) || u.ResetAttempts >= MaxResetAttempts {
		return ErrInvalidResetToken
	}

	if bcrypt.CompareHashAndPassword([]byte(u.ResetTokenHash), []byte(code)) != nil {
		_, _ = s.c.UpdateOne(ctx,
			bson.M{"_id": u.ID, "reset_token_hash": u.ResetTokenHash},
			bson.M{"$inc": bson.M{"reset_attempts": 1}})
		return ErrInvalidResetToken
	}

	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	// Matching on the hash makes a concurrent second use of the same code miss.
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": u.ID, "reset_token_hash": u.ResetTokenHash},
		bson.M{
			"$set":   bson.M{"password_hash": hash, "updated_at": s.now()},
			"$unset": bson.M{"reset_token_hash": "", "reset_token_expiry": "", "reset_attempts": ""},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrInvalidResetToken
	}
	return nil
}

// EnsureAdmin promotes the account with email to admin. When no such account
// exists and password is set, a local admin is created; otherwise
// ErrNotFound is returned.
func (s *Store) EnsureAdmin(ctx context.Context, email, password string) (created bool, err error) {
	email = normalize.Email(email)
	if email == "" {
		return false, nil
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email_ci": text.Fold(email)},
		bson.M{"$set": bson.M{"role": models.RoleAdmin, "updated_at": s.now()}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount > 0 {
		return false, nil
	}
	if password == "" {
		return false, ErrNotFound
	}
	name, _, _ := strings.Cut(email, "@")
	if _, err := s.Create(ctx, NewUser{Name: name, Email: email, Password: password, Role: models.RoleAdmin}); err != nil {
		return false, err
	}
	return true, nil
}
