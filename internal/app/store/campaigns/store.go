// Package campaignstore persists campaigns and crowdfunding applications.
//
// Both live in one collection and are told apart by Type. Crowdfunding
// applications move from pending to approved or rejected exactly once.
package campaignstore

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("campaign not found")
	// ErrAlreadyDecided is returned when approving or rejecting a record that is no longer pending.
	ErrAlreadyDecided = errors.New("application has already been decided")
	// ErrEmailNotVerified is returned by Decide when the policy requires verification first.
	ErrEmailNotVerified = errors.New("email must be verified before approval")
)

type Store struct {
	c         *mongo.Collection
	users     *mongo.Collection
	donations *mongo.Collection
	now       func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:         db.Collection("campaigns"),
		users:     db.Collection("users"),
		donations: db.Collection("donations"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts c. Type defaults to campaign and Status to approved.
func (s *Store) Create(ctx context.Context, c models.Campaign) (*models.Campaign, error) {
	now := s.now()
	c.ID = primitive.NewObjectID()
	if c.Type == "" {
		c.Type = models.CampaignTypeCampaign
	}
	if c.Status == "" {
		c.Status = models.StatusApproved
	}
	if c.Documents == nil {
		c.Documents = []string{}
	}
	if c.StartDate.IsZero() {
		c.StartDate = now
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// SubmitApplication stores a new crowdfunding application: pending and
// unverified regardless of what c carries.
func (s *Store) SubmitApplication(ctx context.Context, c models.Campaign, organizer primitive.ObjectID) (*models.Campaign, error) {
	c.Type = models.CampaignTypeCrowdfunding
	c.Status = models.StatusPending
	c.EmailVerified = false
	c.RejectionReason = ""
	c.CurrentAmount = 0
	c.Organizer = &organizer
	return s.Create(ctx, c)
}

// GetByID loads one record of any type.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var c models.Campaign
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetDetail is GetByID with the organizer name and email filled in.
func (s *Store) GetDetail(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	list := []models.Campaign{*c}
	if err := s.attachOrganizers(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// Filter narrows List. Zero fields match everything.
type Filter struct {
	Type      string
	Status    string
	Organizer *primitive.ObjectID
}

// List returns matching records newest first, with organizer details.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Campaign, error) {
	q := bson.M{}
	if f.Type != "" {
		q["type"] = f.Type
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Organizer != nil {
		q["organizer"] = *f.Organizer
	}

	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Campaign{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	if err := s.attachOrganizers(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) attachOrganizers(ctx context.Context, list []models.Campaign) error {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, c := range list {
		if c.Organizer != nil && !seen[*c.Organizer] {
			seen[*c.Organizer] = true
			ids = append(ids, *c.Organizer)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1, "email": 1}))
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	type org struct {
		ID    primitive.ObjectID `bson:"_id"`
		Name  string             `bson:"name"`
		Email string             `bson:"email"`
	}
	byID := map[primitive.ObjectID]org{}
	for cur.Next(ctx) {
		var o org
		if err := cur.Decode(&o); err == nil {
			byID[o.ID] = o
		}
	}
	if err := cur.Err(); err != nil {
		return err
	}

	for i := range list {
		if list[i].Organizer == nil {
			continue
		}
		if o, ok := byID[*list[i].Organizer]; ok {
			list[i].OrganizerName = o.Name
			list[i].OrganizerEmail = o.Email
		}
	}
	return nil
}

// Update holds editable fields. Nil fields are left alone; status, type and
// current amount are not editable here.
type Update struct {
	Title        *string
	Description  *string
	TargetAmount *float64
	StartDate    *time.Time
	EndDate      *time.Time
	ImageURL     *string
	Category     *string
}

// Update applies upd to the record with id and returns the result.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Campaign, error) {
	set := bson.M{"updated_at": s.now()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.TargetAmount != nil {
		set["target_amount"] = *upd.TargetAmount
	}
	if upd.StartDate != nil {
		set["start_date"] = *upd.StartDate
	}
	if upd.EndDate != nil {
		set["end_date"] = *upd.EndDate
	}
	if upd.ImageURL != nil {
		set["image_url"] = *upd.ImageURL
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	return s.findAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (s *Store) findAndUpdate(ctx context.Context, filter, update bson.M) (*models.Campaign, error) {
	var c models.Campaign
	err := s.c.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes the record and returns it so callers can clean up its files.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Campaign, error) {
	var c models.Campaign
	err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkEmailVerified sets email_verified on organizer's application. Setting it
// again is a no-op that still succeeds.
func (s *Store) MarkEmailVerified(ctx context.Context, id, organizer primitive.ObjectID) (*models.Campaign, error) {
	return s.findAndUpdate(ctx,
		bson.M{"_id": id, "organizer": organizer, "type": models.CampaignTypeCrowdfunding},
		bson.M{"$set": bson.M{"email_verified": true, "updated_at": s.now()}})
}

// DecisionPolicy controls approval.
type DecisionPolicy struct {
	RequireEmailVerified bool
}

// Decide moves a pending crowdfunding application to approved or rejected.
// Approving clears any rejection reason. The transition happens once; the
// pending filter on the write makes concurrent decisions race safely.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, status, reason string, p DecisionPolicy) (*models.Campaign, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, errors.New("invalid decision status")
	}

	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Type != models.CampaignTypeCrowdfunding {
		return nil, ErrNotFound
	}
	if cur.Status != models.StatusPending {
		return nil, ErrAlreadyDecided
	}

	filter := bson.M{"_id": id, "status": models.StatusPending}
	var update bson.M
	if status == models.StatusApproved {
		if p.RequireEmailVerified {
			if !cur.EmailVerified {
				return nil, ErrEmailNotVerified
			}
			filter["email_verified"] = true
		}
		update = bson.M{
			"$set":   bson.M{"status": status, "updated_at": s.now()},
			"$unset": bson.M{"rejection_reason": ""},
		}
	} else {
		update = bson.M{"$set": bson.M{"status": status, "rejection_reason": reason, "updated_at": s.now()}}
	}

	c, err := s.findAndUpdate(ctx, filter, update)
	if errors.Is(err, ErrNotFound) {
		// Lost a race with another decision.
		return nil, ErrAlreadyDecided
	}
	return c, err
}

// IncrementTotal adds amount to the running total with $inc.
func (s *Store) IncrementTotal(ctx context.Context, id primitive.ObjectID, amount float64) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"current_amount": amount},
		"$set": bson.M{"updated_at": s.now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecomputeTotals rewrites current_amount from the donation records and
// returns how many campaigns changed.
//
// Each write is conditioned on the total read beforehand, so a campaign whose
// total moved mid-run is skipped and picked up on the next run.
func (s *Store) RecomputeTotals(ctx context.Context) (int64, error) {
	current := map[primitive.ObjectID]float64{}
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"current_amount": 1}))
	if err != nil {
		return 0, err
	}
	for cur.Next(ctx) {
		var row struct {
			ID     primitive.ObjectID `bson:"_id"`
			Amount float64            `bson:"current_amount"`
		}
		if err := cur.Decode(&row); err != nil {
			cur.Close(ctx)
			return 0, err
		}
		current[row.ID] = row.Amount
	}
	if err := cur.Err(); err != nil {
		cur.Close(ctx)
		return 0, err
	}
	cur.Close(ctx)

	sums, err := s.donationSums(ctx)
	if err != nil {
		return 0, err
	}

	var writes []mongo.WriteModel
	for id, have := range current {
		want := sums[id]
		if math.Abs(want-have) < 0.005 {
			continue
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "current_amount": have}).
			SetUpdate(bson.M{"$set": bson.M{"current_amount": want, "updated_at": s.now()}}))
	}
	if len(writes) == 0 {
		return 0, nil
	}
	res, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (s *Store) donationSums(ctx context.Context) (map[primitive.ObjectID]float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"campaign_id": bson.M{"$type": "objectId"}}}},
		{{Key: "$group", Value: bson.M{"_id": "$campaign_id", "total": bson.M{"$sum": "$amount"}}}},
	}
	cur, err := s.donations.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	sums := map[primitive.ObjectID]float64{}
	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Total float64            `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		sums[row.ID] = row.Total
	}
	return sums, cur.Err()
}
