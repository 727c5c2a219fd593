// internal/app/features/crowdfunding/apply.go
package crowdfunding

import (
	"errors"
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/features/shared/campaignform"
	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/app/system/authz"
	"github.com/dalemusser/hopenest/internal/app/system/effects"
	"github.com/dalemusser/hopenest/internal/app/system/respond"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/dalemusser/hopenest/internal/app/system/uploads"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/crowdfunding/apply                                                 |
| The upload policy is enforced while parsing, before anything is stored.      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	user, _ := auth.CurrentUser(r)

	form, err := uploads.Parse(r, h.UploadPolicy)
	if err != nil {
		var pe *uploads.PolicyError
		switch {
		case errors.As(err, &pe):
			respond.Error(w, http.StatusBadRequest, respond.CodeUpload, pe.Message)
		case errors.Is(err, uploads.ErrNotMultipart):
			respond.Error(w, http.StatusBadRequest, respond.CodeUpload, "Request must be multipart/form-data")
		default:
			h.Log.Warn("application upload unreadable", zap.String("user_id", uid.Hex()), zap.Error(err))
			respond.Error(w, http.StatusBadRequest, respond.CodeUpload, "Upload could not be read")
		}
		return
	}

	fields := campaignform.FromForm(form)
	if err := fields.Validate(); err != nil {
		respond.BadRequest(w, err)
		return
	}

	paths, err := h.Files.Save(r.Context(), UploadCategory, form.Files)
	if err != nil {
		respond.Internal(w, h.Log, "Failed to store documents", err, zap.String("user_id", uid.Hex()))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "crowdfunding.apply")
	defer cancel()

	c := fields.Campaign(models.CampaignTypeCrowdfunding)
	c.Documents = paths
	saved, err := h.Campaigns.SubmitApplication(ctx, c, uid)
	if err != nil {
		h.Files.Remove(r.Context(), paths)
		respond.Internal(w, h.Log, "Failed to submit application", err, zap.String("user_id", uid.Hex()))
		return
	}
	h.Log.Info("crowdfunding application submitted",
		zap.String("campaign_id", saved.ID.Hex()),
		zap.String("user_id", uid.Hex()),
		zap.Int("documents", len(paths)))

	var outcome effects.Outcome
	if user.Email == "" {
		outcome = effects.Skipped("verification_email")
	} else {
		outcome = effects.From("verification_email", h.sendVerification(saved, user.Email, user.Name))
	}
	effects.Report(h.Log, "crowdfunding.apply", effects.Outcomes{outcome},
		zap.String("campaign_id", saved.ID.Hex()))

	respond.JSON(w, http.StatusCreated, saved)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /api/crowdfunding/{id}/resend-verification                              |
| Here the email is the whole point, so a send failure is a 500.               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	id, ok := params.ObjectID(r, "id")
	if !ok {
		respond.NotFound(w, msgAppNotFound)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "crowdfunding.resend_verification")
	defer cancel()

	c, err := h.Campaigns.GetByID(ctx, id)
	if errors.Is(err, campaignstore.ErrNotFound) || (err == nil && !ownsApplication(c, uid.Hex())) {
		respond.NotFound(w, msgAppNotFound)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load application", err, zap.String("campaign_id", id.Hex()))
		return
	}
	if c.EmailVerified {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgAlreadyVerified)
		return
	}

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, userstore.ErrNotFound) || (err == nil && u.Email == "") {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, msgNoUserEmail)
		return
	}
	if err != nil {
		respond.Internal(w, h.Log, "Failed to load user", err, zap.String("user_id", uid.Hex()))
		return
	}

	if err := h.sendVerification(c, u.Email, u.Name); err != nil {
		respond.Internal(w, h.Log, "Failed to send verification email", err, zap.String("campaign_id", id.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"message": msgVerificationSent})
}

func ownsApplication(c *models.Campaign, userID string) bool {
	return c.Type == models.CampaignTypeCrowdfunding && c.Organizer != nil && c.Organizer.Hex() == userID
}
