package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/hopenest/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the password of every local user Fixtures creates.
const FixturePassword = "correct-horse-battery"

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insertUser(ctx context.Context, u models.User) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.EmailCI = text.Fold(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateUser creates a local user whose password is FixturePassword.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash: %v", err)
	}
	return f.insertUser(ctx, models.User{
		Name:         name,
		Email:        email,
		Provider:     models.ProviderLocal,
		PasswordHash: string(hash),
	})
}

// CreateAdmin creates a local admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, name, email)
	f.set(ctx, "users", u.ID, "role", models.RoleAdmin)
	u.Role = models.RoleAdmin
	return u
}

// CreateBlockedUser creates a local user with IsBlocked set.
func (f *Fixtures) CreateBlockedUser(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	u := f.CreateUser(ctx, name, email)
	f.set(ctx, "users", u.ID, "is_blocked", true)
	u.IsBlocked = true
	return u
}

// CreateGoogleUser creates an OAuth-only account.
func (f *Fixtures) CreateGoogleUser(ctx context.Context, name, email, googleID string) models.User {
	f.t.Helper()
	return f.insertUser(ctx, models.User{
		Name:     name,
		Email:    email,
		Provider: models.ProviderGoogle,
		GoogleID: googleID,
	})
}

// CreateCampaign inserts a campaign record. Zero-valued Type, Status and
// dates are filled with an approved campaign starting now.
func (f *Fixtures) CreateCampaign(ctx context.Context, c models.Campaign) models.Campaign {
	f.t.Helper()
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	if c.Title == "" {
		c.Title = "Test Campaign"
	}
	if c.Type == "" {
		c.Type = models.CampaignTypeCampaign
	}
	if c.Status == "" {
		c.Status = models.StatusApproved
	}
	if c.StartDate.IsZero() {
		c.StartDate = now
	}
	if c.Documents == nil {
		c.Documents = []string{}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if _, err := f.db.Collection("campaigns").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test campaign: %v", err)
	}
	return c
}

// CreateApplication inserts a crowdfunding application owned by organizer.
func (f *Fixtures) CreateApplication(ctx context.Context, title string, organizer primitive.ObjectID, status string) models.Campaign {
	f.t.Helper()
	return f.CreateCampaign(ctx, models.Campaign{
		Title:        title,
		Description:  "Test application",
		TargetAmount: 1000,
		Type:         models.CampaignTypeCrowdfunding,
		Status:       status,
		Organizer:    &organizer,
		Documents:    []string{"/uploads/crowdfunding/1-plan.pdf"},
	})
}

// CreateDonation inserts a completed donation.
func (f *Fixtures) CreateDonation(ctx context.Context, userID primitive.ObjectID, campaignID *primitive.ObjectID, amount float64, date time.Time) models.Donation {
	f.t.Helper()
	d := models.Donation{
		ID:            primitive.NewObjectID(),
		Amount:        amount,
		Type:          models.DonationOnce,
		Name:          "Test Donor",
		Email:         "donor@test.com",
		Phone:         "555-0100",
		PaymentMethod: "card",
		Date:          date.UTC(),
		Status:        models.DefaultDonationStatus,
		UserID:        userID,
		CampaignID:    campaignID,
	}
	if _, err := f.db.Collection("donations").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test donation: %v", err)
	}
	return d
}

// CreateVolunteer inserts an active volunteer signup.
func (f *Fixtures) CreateVolunteer(ctx context.Context, userID primitive.ObjectID, name string) models.Volunteer {
	f.t.Helper()
	v := models.Volunteer{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Email:        "volunteer@test.com",
		Phone:        "555-0101",
		UserID:       userID,
		Availability: models.AvailabilityAny,
		Skills:       []string{},
		Status:       models.VolunteerActive,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := f.db.Collection("volunteers").InsertOne(ctx, v); err != nil {
		f.t.Fatalf("failed to create test volunteer: %v", err)
	}
	return v
}

func (f *Fixtures) set(ctx context.Context, coll string, id primitive.ObjectID, field string, v any) {
	f.t.Helper()
	_, err := f.db.Collection(coll).UpdateByID(ctx, id, bson.M{"$set": bson.M{field: v}})
	if err != nil {
		f.t.Fatalf("failed to update %s.%s: %v", coll, field, err)
	}
}
