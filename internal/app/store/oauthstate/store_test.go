package oauthstate_test

import (
	"testing"
	"time"

	"github.com/dalemusser/hopenest/internal/app/store/oauthstate"
	"github.com/dalemusser/hopenest/internal/app/system/indexes"
	"github.com/dalemusser/hopenest/internal/testutil"
)

func TestStore_Consume(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "state-1", "google", 10*time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Wrong provider does not consume it.
	ok, err := store.Consume(ctx, "state-1", "facebook")
	if err != nil || ok {
		t.Fatalf("Consume(wrong provider) = %v, %v", ok, err)
	}

	ok, err = store.Consume(ctx, "state-1", "google")
	if err != nil || !ok {
		t.Fatalf("Consume = %v, %v; want true", ok, err)
	}

	ok, err = store.Consume(ctx, "state-1", "google")
	if err != nil || ok {
		t.Errorf("second Consume = %v, %v; want single use", ok, err)
	}
}

func TestStore_Consume_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, s := range []string{"", "never-issued"} {
		ok, err := store.Consume(ctx, s, "google")
		if err != nil || ok {
			t.Errorf("Consume(%q) = %v, %v", s, ok, err)
		}
	}
}

func TestStore_Consume_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "old", "google", -time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	ok, err := store.Consume(ctx, "old", "google")
	if err != nil || ok {
		t.Errorf("expired state should not validate: %v, %v", ok, err)
	}
}

func TestStore_Save_DuplicateState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	if err := store.Save(ctx, "dup", "google", time.Minute); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := store.Save(ctx, "dup", "google", time.Minute); err == nil {
		t.Error("expected duplicate state to be rejected by the unique index")
	}
}
