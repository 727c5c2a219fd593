package donations

import (
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	donationstore "github.com/dalemusser/hopenest/internal/app/store/donations"
	"github.com/dalemusser/hopenest/internal/app/system/authz"
	"github.com/dalemusser/hopenest/internal/app/system/inputval"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// GET /api/donations/my
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	rng, err := rangeFromQuery(r)
	if err != nil {
		respond.BadRequest(w, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "donations.mine")
	defer cancel()

	list, err := h.Donations.ListByUser(ctx, uid, rng)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to fetch user donations", err, zap.String("user_id", uid.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"success": true, "donations": list})
}

// GET /api/donations (admin)
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "donations.list")
	defer cancel()

	list, err := h.Donations.ListAll(ctx)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to fetch donations", err)
		return
	}
	respond.JSON(w, http.StatusOK, list)
}

// rangeFromQuery reads startDate and endDate. A bare endDate covers the
// whole day.
func rangeFromQuery(r *http.Request) (donationstore.Range, error) {
	var rng donationstore.Range
	q := r.URL.Query()
	if s := strings.TrimSpace(q.Get("startDate")); s != "" {
		t, err := params.ParseDate(s)
		if err != nil {
			return rng, inputval.New("startDate", "Invalid startDate")
		}
		rng.From = t
	}
	if s := strings.TrimSpace(q.Get("endDate")); s != "" {
		t, err := params.ParseDate(s)
		if err != nil {
			return rng, inputval.New("endDate", "Invalid endDate")
		}
		if len(s) == len(time.DateOnly) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		rng.To = t
	}
	return rng, nil
}
