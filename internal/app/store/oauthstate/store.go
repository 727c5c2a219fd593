// internal/app/store/oauthstate/store.go
package oauthstate

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// State is an OAuth2 state value issued for one login attempt. Expired
// states are removed by the TTL index on expires_at.
type State struct {
	State     string    `bson:"state"`
	Provider  string    `bson:"provider"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Store manages OAuth2 state tokens in MongoDB.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new OAuth state Store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("oauth_states"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Save records state for provider, valid for ttl.
func (s *Store) Save(ctx context.Context, state, provider string, ttl time.Duration) error {
	now := s.now()
	_, err := s.c.InsertOne(ctx, State{
		State:     state,
		Provider:  provider,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	return err
}

// Consume deletes state and reports whether it existed for provider and had
// not expired. A state can be consumed once.
func (s *Store) Consume(ctx context.Context, state, provider string) (bool, error) {
	if state == "" {
		return false, nil
	}
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"state":      state,
		"provider":   provider,
		"expires_at": bson.M{"$gt": s.now()},
	}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
