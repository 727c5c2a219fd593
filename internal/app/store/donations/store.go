// Package donationstore persists donation records.
package donationstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/hopenest/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c         *mongo.Collection
	campaigns *mongo.Collection
	now       func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:         db.Collection("donations"),
		campaigns: db.Collection("campaigns"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stamps the date, default status and a receipt number on d and
// inserts it. Donations are not modified afterwards.
func (s *Store) Create(ctx context.Context, d models.Donation) (*models.Donation, error) {
	d.ID = primitive.NewObjectID()
	d.Date = s.now()
	if d.Status == "" {
		d.Status = models.DefaultDonationStatus
	}
	d.ReceiptNumber = newReceiptNumber(d.Date)
	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// newReceiptNumber is HN-<yyyymmdd>-<8 hex>.
func newReceiptNumber(t time.Time) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("HN-%s-%s", t.Format("20060102"), strings.ToUpper(id[:8]))
}

// Range bounds Date. Zero times are open ends; To is inclusive.
type Range struct {
	From time.Time
	To   time.Time
}

// ListByUser returns userID's donations, newest first, with campaign titles.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, r Range) ([]models.Donation, error) {
	q := r.filter()
	q["user_id"] = userID
	return s.list(ctx, q)
}

// ListAll returns every donation, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Donation, error) {
	return s.list(ctx, bson.M{})
}

// ListRange returns every donation dated within r, newest first.
func (s *Store) ListRange(ctx context.Context, r Range) ([]models.Donation, error) {
	return s.list(ctx, r.filter())
}

func (r Range) filter() bson.M {
	q := bson.M{}
	date := bson.M{}
	if !r.From.IsZero() {
		date["$gte"] = r.From
	}
	if !r.To.IsZero() {
		date["$lte"] = r.To
	}
	if len(date) > 0 {
		q["date"] = date
	}
	return q
}

func (s *Store) list(ctx context.Context, q bson.M) ([]models.Donation, error) {
	cur, err := s.c.Find(ctx, q, options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Donation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}

	titles, err := campaignTitles(ctx, s.campaigns, collectIDs(out, func(d models.Donation) *primitive.ObjectID { return d.CampaignID }))
	if err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].CampaignID != nil {
			out[i].CampaignTitle = titles[*out[i].CampaignID]
		}
	}
	return out, nil
}

func collectIDs[T any](items []T, get func(T) *primitive.ObjectID) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, it := range items {
		if id := get(it); id != nil && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	return ids
}

// campaignTitles maps campaign ids to titles. Missing campaigns are absent.
func campaignTitles(ctx context.Context, c *mongo.Collection, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	titles := map[primitive.ObjectID]string{}
	if len(ids) == 0 {
		return titles, nil
	}
	cur, err := c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(bson.M{"title": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var row struct {
			ID    primitive.ObjectID `bson:"_id"`
			Title string             `bson:"title"`
		}
		if err := cur.Decode(&row); err == nil {
			titles[row.ID] = row.Title
		}
	}
	return titles, cur.Err()
}
