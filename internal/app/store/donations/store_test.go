package donationstore_test

import (
	"strings"
	"testing"
	"time"

	donationstore "github.com/dalemusser/hopenest/internal/app/store/donations"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"github.com/dalemusser/hopenest/internal/testutil"
)

func TestCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := donationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Donor", "donor@test.com")
	d, err := store.Create(ctx, models.Donation{Amount: 25, Type: models.DonationOnce, UserID: u.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Status != "completed" {
		t.Errorf("Status = %q, want completed", d.Status)
	}
	if !strings.HasPrefix(d.ReceiptNumber, "HN-") {
		t.Errorf("ReceiptNumber = %q", d.ReceiptNumber)
	}
	if d.Date.IsZero() {
		t.Error("Date should be set")
	}
}

func TestListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := donationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "Donor", "donor@test.com")
	other := fx.CreateUser(ctx, "Other", "other@test.com")
	c := fx.CreateCampaign(ctx, models.Campaign{Title: "Clean Water"})

	jan := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	fx.CreateDonation(ctx, u.ID, &c.ID, 10, jan)
	fx.CreateDonation(ctx, u.ID, nil, 20, feb)
	fx.CreateDonation(ctx, u.ID, &c.ID, 30, mar)
	fx.CreateDonation(ctx, other.ID, nil, 40, feb)

	all, err := store.ListByUser(ctx, u.ID, donationstore.Range{})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d donations, want 3", len(all))
	}
	if all[0].Amount != 30 || all[2].Amount != 10 {
		t.Errorf("not sorted by date desc: %v, %v", all[0].Amount, all[2].Amount)
	}
	if all[0].CampaignTitle != "Clean Water" || all[1].CampaignTitle != "" {
		t.Errorf("campaign titles: %q, %q", all[0].CampaignTitle, all[1].CampaignTitle)
	}

	ranged, _ := store.ListByUser(ctx, u.ID, donationstore.Range{
		From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2026, 2, 28, 23, 59, 59, 0, time.UTC),
	})
	if len(ranged) != 1 || ranged[0].Amount != 20 {
		t.Errorf("ranged = %+v", ranged)
	}

	everything, _ := store.ListAll(ctx)
	if len(everything) != 4 {
		t.Errorf("ListAll = %d, want 4", len(everything))
	}
}
