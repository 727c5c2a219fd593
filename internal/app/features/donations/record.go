package donations

import (
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/system/authz"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/donations                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

type donationView struct {
	models.Donation
	TransactionID string `json:"transactionId"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var req donateRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, err)
		return
	}

	// Receipt delivery shares this budget with the insert.
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "donations.create")
	defer cancel()

	res, err := h.Record(ctx, req.donation(uid))
	if err != nil {
		respond.Internal(w, h.Log, "Failed to process donation", err, zap.String("user_id", uid.Hex()))
		return
	}

	h.Log.Info("donation recorded",
		zap.String("donation_id", res.Donation.ID.Hex()),
		zap.String("user_id", uid.Hex()),
		zap.Float64("amount", res.Donation.Amount),
		zap.String("type", res.Donation.Type))

	respond.JSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"donation": donationView{Donation: *res.Donation, TransactionID: res.Donation.ID.Hex()},
	})
}
