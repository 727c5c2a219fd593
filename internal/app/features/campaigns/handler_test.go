package campaigns_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/dalemusser/hopenest/internal/app/features/campaigns"
	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"github.com/dalemusser/hopenest/internal/testutil"
	"go.uber.org/zap"
)

type fakeFiles struct{ removed []string }

func (f *fakeFiles) Remove(_ context.Context, paths []string) { f.removed = append(f.removed, paths...) }

func newTestHandler(t *testing.T) (*campaigns.Handler, *testutil.Fixtures, *fakeFiles) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	files := &fakeFiles{}
	h := campaigns.NewHandler(campaignstore.New(db), files, zap.NewNop())
	return h, testutil.NewFixtures(t, db), files
}

func TestCreate_DefaultsToApproved(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", testutil.AdminUser(), map[string]any{
		"title": "Wells", "description": "Clean water", "targetAmount": 1000,
	}))
	rec.AssertStatus(t, http.StatusCreated)

	var c models.Campaign
	rec.DecodeJSON(t, &c)
	if c.Status != models.StatusApproved || c.Type != models.CampaignTypeCampaign || c.CurrentAmount != 0 {
		t.Errorf("unexpected campaign: %+v", c)
	}
}

func TestCreate_Validation(t *testing.T) {
	h, _, _ := newTestHandler(t)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", testutil.AdminUser(), map[string]any{
		"title": "Wells", "description": "Clean water", "targetAmount": -1,
	}))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, "Target amount must be a positive number")
}

func TestRoutes_WritesNeedAdmin(t *testing.T) {
	h, _, _ := newTestHandler(t)
	router := campaigns.Routes(h)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", testutil.RegularUser(), map[string]any{}))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusOK)
}

func TestListIncludesEveryTypeWithOrganizer(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	org := fx.CreateUser(ctx, "Olive Organizer", "olive@example.com")
	fx.CreateCampaign(ctx, models.Campaign{Title: "Plain"})
	fx.CreateApplication(ctx, "Pending app", org.ID, models.StatusPending)

	rec := testutil.NewRecorder()
	h.List(rec, testutil.NewRequest(http.MethodGet, "/"))
	rec.AssertStatus(t, http.StatusOK)

	var list []models.Campaign
	rec.DecodeJSON(t, &list)
	if len(list) != 2 {
		t.Fatalf("len: got %d, want 2", len(list))
	}
	var found bool
	for _, c := range list {
		if c.Title == "Pending app" {
			found = c.OrganizerName == "Olive Organizer"
		}
	}
	if !found {
		t.Error("expected organizer name on application")
	}
}

func TestUpdate_KeepsStatusAndTotal(t *testing.T) {
	h, fx, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateCampaign(ctx, models.Campaign{Title: "Old", CurrentAmount: 75})

	req := testutil.NewAuthenticatedRequest(http.MethodPut, "/x", testutil.AdminUser(), map[string]any{
		"title": "New", "status": "rejected", "currentAmount": 0, "type": "crowdfunding",
	})
	rec := testutil.NewRecorder()
	h.Update(rec, testutil.WithChiURLParam(req, "id", c.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)

	var got models.Campaign
	rec.DecodeJSON(t, &got)
	if got.Title != "New" || got.Status != c.Status || got.CurrentAmount != 75 || got.Type != c.Type {
		t.Errorf("unexpected campaign: %+v", got)
	}
}

func TestDelete_RemovesDocuments(t *testing.T) {
	h, fx, files := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	c := fx.CreateCampaign(ctx, models.Campaign{Title: "Docs", Documents: []string{"/uploads/crowdfunding/a.pdf"}})

	rec := testutil.NewRecorder()
	h.Delete(rec, testutil.WithChiURLParam(
		testutil.NewAuthenticatedRequest(http.MethodDelete, "/x", testutil.AdminUser(), nil), "id", c.ID.Hex()))
	rec.AssertStatus(t, http.StatusOK)
	if len(files.removed) != 1 {
		t.Errorf("removed: %v", files.removed)
	}

	rec = testutil.NewRecorder()
	h.Get(rec, testutil.WithChiURLParam(testutil.NewRequest(http.MethodGet, "/x"), "id", c.ID.Hex()))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMessage(t, "Campaign not found")
}
