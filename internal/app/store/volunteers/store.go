// Package volunteerstore persists volunteer signups.
package volunteerstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("volunteer not found")

type Store struct {
	c         *mongo.Collection
	campaigns *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("volunteers"), campaigns: db.Collection("campaigns")}
}

// Create inserts v with defaults for availability and status.
func (s *Store) Create(ctx context.Context, v models.Volunteer) (*models.Volunteer, error) {
	v.ID = primitive.NewObjectID()
	if v.Availability == "" {
		v.Availability = models.AvailabilityAny
	}
	if v.Status == "" {
		v.Status = models.VolunteerActive
	}
	if v.Skills == nil {
		v.Skills = []string{}
	}
	v.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID loads one signup.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Volunteer, error) {
	var v models.Volunteer
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListAll returns every signup, newest first, with campaign titles.
func (s *Store) ListAll(ctx context.Context) ([]models.Volunteer, error) {
	return s.list(ctx, bson.M{})
}

// ListByUser returns userID's signups, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Volunteer, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *Store) list(ctx context.Context, q bson.M) ([]models.Volunteer, error) {
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Volunteer{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}

	ids := []primitive.ObjectID{}
	for _, v := range out {
		if v.CampaignID != nil {
			ids = append(ids, *v.CampaignID)
		}
	}
	if len(ids) == 0 {
		return out, nil
	}

	tc, err := s.campaigns.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"title": 1}))
	if err != nil {
		return nil, err
	}
	defer tc.Close(ctx)
	titles := map[primitive.ObjectID]string{}
	for tc.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Title string             `bson:"title"`
		}
		if tc.Decode(&row) == nil {
			titles[row.ID] = row.Title
		}
	}
	for i := range out {
		if out[i].CampaignID != nil {
			out[i].CampaignTitle = titles[*out[i].CampaignID]
		}
	}
	return out, tc.Err()
}

// SetStatus changes a signup's status and returns it.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Volunteer, error) {
	var v models.Volunteer
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Delete removes a signup.
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
