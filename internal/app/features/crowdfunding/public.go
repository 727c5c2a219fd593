// internal/app/features/crowdfunding/public.go
package crowdfunding

import (
	"errors"
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	"github.com/dalemusser/hopenest/internal/app/system/authz"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.uber.org/zap"
)

// List handles GET /api/crowdfunding: approved records only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "crowdfunding.list", campaignstore.Filter{
		Type:   models.CampaignTypeCrowdfunding,
		Status: models.StatusApproved,
	}, false)
}

// Get handles GET /api/crowdfunding/{id}. Anything not approved is reported
// as missing.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "crowdfunding.get")
	defer cancel()

	c, err := h.Campaigns.GetDetail(ctx, id)
	if errors.Is(err, campaignstore.ErrNotFound) ||
		(err == nil && (c.Type != models.CampaignTypeCrowdfunding || c.Status != models.StatusApproved)) {
		respond.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load campaign", err, zap.String("campaign_id", id.Hex()))
		return
	}
	c.OrganizerEmail = ""
	respond.JSON(w, http.StatusOK, c)
}

// Mine handles GET /api/crowdfunding/my: the caller's applications in any
// status, newest first.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	h.list(w, r, "crowdfunding.my", campaignstore.Filter{
		Type:      models.CampaignTypeCrowdfunding,
		Organizer: &uid,
	}, true)
}

// All handles GET /api/crowdfunding/all for admins.
func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, "crowdfunding.all", campaignstore.Filter{Type: models.CampaignTypeCrowdfunding}, true)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, op string, f campaignstore.Filter, withEmail bool) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, op)
	defer cancel()

	list, err := h.Campaigns.List(ctx, f)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load campaigns", err)
		return
	}
	if !withEmail {
		for i := range list {
			list[i].OrganizerEmail = ""
		}
	}
	respond.JSON(w, http.StatusOK, list)
}
