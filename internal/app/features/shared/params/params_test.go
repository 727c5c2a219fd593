package params_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	"github.com/dalemusser/hopenest/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectID(t *testing.T) {
	want := primitive.NewObjectID()
	r := testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", want.Hex())
	got, ok := params.ObjectID(r, "id")
	if !ok || got != want {
		t.Errorf("got %v %v, want %v", got, ok, want)
	}

	r = testutil.WithChiURLParam(httptest.NewRequest("GET", "/", nil), "id", "nope")
	if _, ok := params.ObjectID(r, "id"); ok {
		t.Error("expected malformed id to fail")
	}
}

func TestOptionalObjectID(t *testing.T) {
	if id, ok := params.OptionalObjectID(""); !ok || id != nil {
		t.Errorf("empty: got %v %v", id, ok)
	}
	if _, ok := params.OptionalObjectID("xyz"); ok {
		t.Error("expected malformed id to fail")
	}
	want := primitive.NewObjectID()
	if id, ok := params.OptionalObjectID(want.Hex()); !ok || *id != want {
		t.Errorf("got %v %v", id, ok)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true},
		{"2024-03-01T10:30:00Z", time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC), true},
		{"2024-03-01T10:30:00+02:00", time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), true},
		{"03/01/2024", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, tc := range cases {
		got, err := params.ParseDate(tc.in)
		if (err == nil) != tc.ok {
			t.Errorf("ParseDate(%q) err = %v", tc.in, err)
			continue
		}
		if tc.ok && !got.Equal(tc.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
