// internal/app/features/crowdfunding/admin.go
package crowdfunding

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/features/shared/campaignform"
	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	"github.com/dalemusser/hopenest/internal/app/system/authz"
	"github.com/dalemusser/hopenest/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Create handles POST /api/crowdfunding. The admin becomes the organizer and
// status defaults to approved.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req campaignform.Fields
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}
	adminID, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "crowdfunding.create")
	defer cancel()

	c := req.Campaign(models.CampaignTypeCrowdfunding)
	c.Organizer = &adminID
	saved, err := h.Campaigns.Create(ctx, c)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to create campaign", err)
		return
	}
	respond.JSON(w, http.StatusCreated, saved)
}

// loadCrowdfunding resolves {id} to a crowdfunding record or writes a 404.
func (h *Handler) loadCrowdfunding(ctx context.Context, w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgNotFound)
		return id, false
	}
	c, err := h.Campaigns.GetByID(ctx, id)
	if errors.Is(err, campaignstore.ErrNotFound) || (err == nil && c.Type != models.CampaignTypeCrowdfunding) {
		respond.NotFound(w, msgNotFound)
		return id, false
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load campaign", err, zap.String("campaign_id", id.Hex()))
		return id, false
	}
	return id, true
}

// Update handles PUT /api/crowdfunding/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req campaignform.Patch
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "crowdfunding.update")
	defer cancel()

	id, ok := h.loadCrowdfunding(ctx, w, r)
	if !ok {
		return
	}
	c, err := h.Campaigns.Update(ctx, id, req.Update())
	if errors.Is(err, campaignstore.ErrNotFound) {
		respond.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to update campaign", err, zap.String("campaign_id", id.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/crowdfunding/{id} and removes its documents.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "crowdfunding.delete")
	defer cancel()

	id, ok := h.loadCrowdfunding(ctx, w, r)
	if !ok {
		return
	}
	c, err := h.Campaigns.Delete(ctx, id)
	if errors.Is(err, campaignstore.ErrNotFound) {
		respond.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to delete campaign", err, zap.String("campaign_id", id.Hex()))
		return
	}
	h.Files.Remove(ctx, c.Documents)
	h.Log.Info("crowdfunding campaign deleted", zap.String("campaign_id", id.Hex()))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Crowdfunding campaign deleted successfully"})
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (r *rejectRequest) Validate() error {
	r.Reason = htmlsanitize.PlainText(r.Reason)
	if r.Reason == "" {
		r.Reason = defaultRejectReason
	}
	return nil
}

// Approve handles PUT /api/crowdfunding/{id}/approve.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, models.StatusApproved, "")
}

// Reject handles PUT /api/crowdfunding/{id}/reject.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var req rejectRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}
	h.decide(w, r, models.StatusRejected, req.Reason)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, status, reason string) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "crowdfunding.decide")
	defer cancel()

	c, err := h.Campaigns.Decide(ctx, id, status, reason, h.Policy)
	switch {
	case errors.Is(err, campaignstore.ErrNotFound):
		respond.NotFound(w, msgNotFound)
	case errors.Is(err, campaignstore.ErrAlreadyDecided):
		respond.Error(w, http.StatusBadRequest, respond.CodeConflict, msgAlreadyDecided)
	case errors.Is(err, campaignstore.ErrEmailNotVerified):
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgNotVerified)
	case err != nil:
		respond.Internal(w, h.Log, "Failed to record decision", err, zap.String("campaign_id", id.Hex()))
	default:
		h.Log.Info("crowdfunding application decided",
			zap.String("campaign_id", id.Hex()), zap.String("status", status))
		respond.JSON(w, http.StatusOK, c)
	}
}
