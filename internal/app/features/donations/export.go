package donations

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/hopenest/internal/app/system/csvutil"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"go.uber.org/zap"
)

var exportHeader = []string{
	"receipt_number", "date", "amount", "type", "status", "name", "email",
	"phone", "payment_method", "campaign_id", "campaign_title", "user_id",
}

// GET /api/donations/export (admin)
//
// Accepts the same startDate/endDate filters as /my.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	rng, err := rangeFromQuery(r)
	if err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "donations.export")
	defer cancel()

	list, err := h.Donations.ListRange(ctx, rng)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to fetch donations", err)
		return
	}

	filename := fmt.Sprintf("donations_%s.csv", time.Now().UTC().Format("20060102"))
	cw, err := csvutil.Attach(w, filename, exportHeader...)
	if err != nil {
		h.Log.Error("CSV write failed (header)", zap.Error(err))
		return
	}
	for _, d := range list {
		campaignID := ""
		if d.CampaignID != nil {
			campaignID = d.CampaignID.Hex()
		}
		if err := cw.Row(
			d.ReceiptNumber,
			d.Date.UTC().Format(time.RFC3339),
			strconv.FormatFloat(d.Amount, 'f', 2, 64),
			d.Type,
			d.Status,
			d.Name,
			d.Email,
			d.Phone,
			d.PaymentMethod,
			campaignID,
			d.CampaignTitle,
			d.UserID.Hex(),
		); err != nil {
			h.Log.Error("CSV write failed (row)", zap.Error(err))
			return
		}
	}
	if err := cw.Flush(); err != nil {
		h.Log.Error("CSV flush failed", zap.Error(err))
		return
	}
	h.Log.Info("donations CSV exported", zap.Int("rows", cw.Rows()))
}
