// Package params reads typed values from chi route parameters.
package params

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ObjectID parses the named URL parameter. ok is false when it is missing or
// not a 24-character hex id.
func ObjectID(r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// OptionalObjectID parses s as an id. An empty s yields (nil, true).
func OptionalObjectID(s string) (*primitive.ObjectID, bool) {
	if s == "" {
		return nil, true
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// ErrBadDate is returned by ParseDate.
var ErrBadDate = errors.New("date must be RFC3339 or YYYY-MM-DD")

// ParseDate accepts an RFC3339 timestamp or a bare YYYY-MM-DD date, which is
// read as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, ErrBadDate
}
