// internal/app/features/crowdfunding/verify.go
package crowdfunding

import (
	"errors"
	"net/http"

	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// VerifyEmail handles GET /api/crowdfunding/verify-email?token=. It is opened
// from the email, so it answers with HTML rather than JSON.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("token")
	if raw == "" {
		h.failPage(w, r, http.StatusBadRequest, "Missing token")
		return
	}

	claims, err := h.Tokens.ParseApplicationVerify(raw)
	if errors.Is(err, auth.ErrWrongTokenType) {
		h.failPage(w, r, http.StatusBadRequest, "Invalid token")
		return
	}
	if err != nil {
		h.failPage(w, r, http.StatusBadRequest, "Verification link is invalid or expired")
		return
	}
	cid, err1 := primitive.ObjectIDFromHex(claims.CampaignID)
	uid, err2 := primitive.ObjectIDFromHex(claims.UserID)
	if err1 != nil || err2 != nil {
		h.failPage(w, r, http.StatusBadRequest, "Verification link is invalid or expired")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "crowdfunding.verify_email")
	defer cancel()

	c, err := h.Campaigns.MarkEmailVerified(ctx, cid, uid)
	if errors.Is(err, campaignstore.ErrNotFound) {
		h.failPage(w, r, http.StatusNotFound, msgAppNotFound)
		return
	}
	if err != nil {
		h.Log.Error("failed to mark application verified", zap.String("campaign_id", cid.Hex()), zap.Error(err))
		h.failPage(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		return
	}

	h.Log.Info("crowdfunding email verified", zap.String("campaign_id", cid.Hex()), zap.String("user_id", uid.Hex()))
	renderPage(w, r, http.StatusOK, verifyPage{
		SiteName:    h.SiteName,
		Heading:     "Email verified successfully",
		Title:       c.Title,
		RedirectURL: h.FrontendURL + "/crowdfunding/apply",
	})
}

func (h *Handler) failPage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	renderPage(w, r, status, verifyPage{SiteName: h.SiteName, Heading: "Email verification", Message: msg})
}
