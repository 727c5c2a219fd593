// Package indexes creates the MongoDB indexes the stores rely on.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection names.
const (
	Users       = "users"
	Campaigns   = "campaigns"
	Donations   = "donations"
	Volunteers  = "volunteers"
	OAuthStates = "oauth_states"
)

// OAuthStateTTL is how long an unused OAuth state survives.
const OAuthStateTTL = 10 * time.Minute

/*
EnsureAll is called from EnsureSchema. Each set is idempotent; errors are
aggregated so every problem shows up in one startup failure.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string
	for _, set := range Sets() {
		if err := ensureIndexSet(ctx, db.Collection(set.Collection), set.Models); err != nil {
			problems = append(problems, set.Collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Set is the desired index list for one collection.
type Set struct {
	Collection string
	Models     []mongo.IndexModel
}

// Sets returns every desired index, by collection.
func Sets() []Set {
	return []Set{
		{Users, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email_ci", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_users_email_ci"),
			},
			{
				Keys:    bson.D{{Key: "google_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_users_google_id"),
			},
			{
				Keys:    bson.D{{Key: "facebook_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_users_facebook_id"),
			},
		}},
		{Campaigns, []mongo.IndexModel{
			{Keys: bson.D{{Key: "status", Value: 1}}, Options: options.Index().SetName("idx_campaigns_status")},
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_campaigns_created")},
			// public crowdfunding listing: type + status, newest first
			{
				Keys:    bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_campaigns_type_status_created"),
			},
			{
				Keys:    bson.D{{Key: "organizer", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_campaigns_organizer_created"),
			},
		}},
		{Donations, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}},
				Options: options.Index().SetName("idx_donations_user_date"),
			},
			// RecomputeTotals groups by campaign_id
			{Keys: bson.D{{Key: "campaign_id", Value: 1}}, Options: options.Index().SetName("idx_donations_campaign")},
			{Keys: bson.D{{Key: "date", Value: -1}}, Options: options.Index().SetName("idx_donations_date")},
		}},
		{Volunteers, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("idx_volunteers_user_created"),
			},
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_volunteers_created")},
		}},
		{OAuthStates, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "state", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_oauth_states_state"),
			},
			{
				Keys:    bson.D{{Key: "expires_at", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_oauth_states_expires"),
			},
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name               string `bson:"name"`
	Key                bson.D `bson:"key"`
	Unique             *bool  `bson:"unique,omitempty"`
	Sparse             *bool  `bson:"sparse,omitempty"`
	ExpireAfterSeconds *int32 `bson:"expireAfterSeconds,omitempty"`
}

type desiredIndex struct {
	name   string
	sig    string
	unique bool
	sparse bool
	ttl    *int32
}

func describe(m mongo.IndexModel) desiredIndex {
	d := desiredIndex{sig: keySig(m.Keys.(bson.D))}
	if o := m.Options; o != nil {
		if o.Name != nil {
			d.name = *o.Name
		}
		d.unique = o.Unique != nil && *o.Unique
		d.sparse = o.Sparse != nil && *o.Sparse
		d.ttl = o.ExpireAfterSeconds
	}
	return d
}

func (d desiredIndex) matches(ex existingIndex) bool {
	if d.unique != (ex.Unique != nil && *ex.Unique) || d.sparse != (ex.Sparse != nil && *ex.Sparse) {
		return false
	}
	if (d.ttl == nil) != (ex.ExpireAfterSeconds == nil) {
		return false
	}
	return d.ttl == nil || *d.ttl == *ex.ExpireAfterSeconds
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

// ensureIndexSet creates missing indexes and rebuilds ones whose name or
// options drifted from the desired definition.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		d := describe(m)
		start := time.Now()

		if ex, ok := existing[d.sig]; ok {
			if d.matches(ex) && (d.name == "" || ex.Name == d.name) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name))
				continue
			}
			zap.L().Info("rebuilding index",
				zap.String("collection", coll.Name()),
				zap.String("from", ex.Name),
				zap.String("to", d.name),
				zap.String("keys", d.sig))
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), d.name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if d.unique && isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), d.name, d.sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), d.name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", d.name),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", d.name),
			zap.String("keys", d.sig),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func isDuplicateKeyErr(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
