// internal/app/features/donations/handler.go
package donations

import (
	"context"
	"errors"

	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	donationstore "github.com/dalemusser/hopenest/internal/app/store/donations"
	"github.com/dalemusser/hopenest/internal/app/system/effects"
	"github.com/dalemusser/hopenest/internal/app/system/mailer"
	"github.com/dalemusser/hopenest/internal/app/system/metrics"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.uber.org/zap"
)

// Side effects that follow a recorded donation.
const (
	EffectCampaignTotal = "campaign_total"
	EffectReceipt       = "receipt_email"
)

// Sender delivers one email.
type Sender interface {
	Send(mailer.Email) error
}

type Handler struct {
	Donations *donationstore.Store
	Campaigns *campaignstore.Store
	Mail      Sender
	Log       *zap.Logger
	SiteName  string
}

func NewHandler(donations *donationstore.Store, campaigns *campaignstore.Store, mail Sender, logger *zap.Logger) *Handler {
	return &Handler{
		Donations: donations,
		Campaigns: campaigns,
		Mail:      mail,
		Log:       logger,
		SiteName:  "HopeNest",
	}
}

// RecordResult separates the persisted donation from the best-effort work
// that followed it. Effects never turn a recorded donation into a failure.
type RecordResult struct {
	Donation *models.Donation
	Effects  effects.Outcomes
}

// Record persists d, then bumps the campaign's running total and mails a
// receipt. Only the insert can fail the call.
func (h *Handler) Record(ctx context.Context, d models.Donation) (*RecordResult, error) {
	saved, err := h.Donations.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	metrics.RecordDonation(saved.Type, saved.Amount)

	res := &RecordResult{Donation: saved}
	var campaignTitle string
	if saved.CampaignID == nil {
		res.Effects = append(res.Effects, effects.Skipped(EffectCampaignTotal))
	} else {
		err := h.Campaigns.IncrementTotal(ctx, *saved.CampaignID, saved.Amount)
		if errors.Is(err, campaignstore.ErrNotFound) {
			err = errors.New("referenced campaign does not exist")
		}
		res.Effects = append(res.Effects, effects.From(EffectCampaignTotal, err))
		if err == nil {
			if c, err := h.Campaigns.GetByID(ctx, *saved.CampaignID); err == nil {
				campaignTitle = c.Title
			}
		}
	}

	email := mailer.BuildDonationReceiptEmail(saved.Email, mailer.DonationReceiptData{
		SiteName:      h.SiteName,
		Name:          saved.Name,
		Amount:        saved.Amount,
		Cadence:       saved.Type,
		CampaignTitle: campaignTitle,
		ReceiptNumber: saved.ReceiptNumber,
		Date:          saved.Date,
	})
	res.Effects = append(res.Effects, effects.From(EffectReceipt, h.Mail.Send(email)))

	effects.Report(h.Log, "donations.record", res.Effects,
		zap.String("donation_id", saved.ID.Hex()), zap.String("user_id", saved.UserID.Hex()))
	return res, nil
}
