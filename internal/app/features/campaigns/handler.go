// internal/app/features/campaigns/handler.go
package campaigns

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/features/shared/campaignform"
	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.uber.org/zap"
)

const msgNotFound = "Campaign not found"

// FileRemover deletes stored uploads by public path.
type FileRemover interface {
	Remove(ctx context.Context, paths []string)
}

type Handler struct {
	Campaigns *campaignstore.Store
	Files     FileRemover
	Log       *zap.Logger
}

func NewHandler(store *campaignstore.Store, files FileRemover, logger *zap.Logger) *Handler {
	return &Handler{Campaigns: store, Files: files, Log: logger}
}

// List handles GET /api/campaigns. Every type and status is returned.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "campaigns.list")
	defer cancel()

	list, err := h.Campaigns.List(ctx, campaignstore.Filter{})
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load campaigns", err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// Get handles GET /api/campaigns/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "campaigns.get")
	defer cancel()

	c, err := h.Campaigns.GetDetail(ctx, id)
	if errors.Is(err, campaignstore.ErrNotFound) {
		respond.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load campaign", err, zap.String("campaign_id", id.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, c)
}

// Create handles POST /api/campaigns. Admin-created campaigns are approved
// unless the body says otherwise.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req campaignform.Fields
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "campaigns.create")
	defer cancel()

	c, err := h.Campaigns.Create(ctx, req.Campaign(models.CampaignTypeCampaign))
	if err != nil {
		respond.Internal(w, h.Log, "Failed to create campaign", err)
		return
	}
	h.Log.Info("campaign created", zap.String("campaign_id", c.ID.Hex()))
	respond.JSON(w, http.StatusCreated, c)
}

// Update handles PUT /api/campaigns/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgNotFound)
		return
	}
	var req campaignform.Patch
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "campaigns.update")
	defer cancel()

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

// Delete handles DELETE /api/campaigns/{id}. Any attached documents are
// removed from disk once the record is gone.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "campaigns.delete")
	defer cancel()

	c, err := h.Campaigns.Delete(ctx, id)
	if errors.Is(err, campaignstore.ErrNotFound) {
		respond.NotFound(w, msgNotFound)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to delete campaign", err, zap.String("campaign_id", id.Hex()))
		return
	}
	if h.Files != nil && len(c.Documents) > 0 {
		h.Files.Remove(ctx, c.Documents)
	}
	h.Log.Info("campaign deleted", zap.String("campaign_id", id.Hex()))
	respond.JSON(w, http.StatusOK, map[string]string{"message": "Campaign deleted successfully"})
}
