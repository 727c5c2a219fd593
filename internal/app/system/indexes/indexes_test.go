package indexes_test

import (
	"testing"

	"github.com/dalemusser/hopenest/internal/app/system/indexes"
	"github.com/dalemusser/hopenest/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesNamedIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	for _, set := range indexes.Sets() {
		cur, err := db.Collection(set.Collection).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("list %s indexes: %v", set.Collection, err)
		}
		names := map[string]bool{}
		for cur.Next(ctx) {
			var idx bson.M
			if err := cur.Decode(&idx); err == nil {
				if n, ok := idx["name"].(string); ok {
					names[n] = true
				}
			}
		}
		cur.Close(ctx)

		for _, m := range set.Models {
			if !names[*m.Options.Name] {
				t.Errorf("%s: index %q missing", set.Collection, *m.Options.Name)
			}
		}
	}
}

func TestEnsureAll_RebuildsDriftedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys, not unique, old name.
	_, err := db.Collection(indexes.Users).Indexes().CreateOne(ctx, mongoIndex("email_ci", "old_email"))
	if err != nil {
		t.Fatalf("seed index: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := db.Collection(indexes.Users).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx bson.M
		_ = cur.Decode(&idx)
		if idx["name"] == "old_email" {
			t.Fatal("drifted index was not replaced")
		}
	}
}
