package donations

import (
	"math"
	"strings"

	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	"github.com/dalemusser/hopenest/internal/app/system/inputval"
	"github.com/dalemusser/hopenest/internal/app/system/normalize"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type donateRequest struct {
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	PaymentMethod string  `json:"paymentMethod"`
	Reminder      bool    `json:"reminder"`
	CampaignID    string  `json:"campaignId"`

	campaign *primitive.ObjectID
}

func (r *donateRequest) Validate() error {
	if math.IsNaN(r.Amount) || math.IsInf(r.Amount, 0) || r.Amount <= 0 {
		return inputval.New("amount", "Amount must be greater than 0")
	}
	if !inputval.OneOf(r.Type, models.DonationOnce, models.DonationMonthly) {
		return inputval.New("type", "Type must be once or monthly")
	}
	for _, f := range []struct{ field, value, label string }{
		{"name", r.Name, "Name"},
		{"email", r.Email, "Email"},
		{"phone", r.Phone, "Phone"},
		{"paymentMethod", r.PaymentMethod, "Payment method"},
	} {
		if strings.TrimSpace(f.value) == "" {
			return inputval.New(f.field, f.label+" is required")
		}
	}
	if !inputval.IsValidEmail(normalize.Email(r.Email)) {
		return inputval.New("email", "Please enter a valid email address")
	}
	id, ok := params.OptionalObjectID(strings.TrimSpace(r.CampaignID))
	if !ok {
		return inputval.New("campaignId", "Invalid campaign id")
	}
	r.campaign = id
	return nil
}

func (r *donateRequest) donation(user primitive.ObjectID) models.Donation {
	return models.Donation{
		Amount:        r.Amount,
		Type:          r.Type,
		Name:          strings.TrimSpace(r.Name),
		Email:         normalize.Email(r.Email),
		Phone:         strings.TrimSpace(r.Phone),
		PaymentMethod: strings.TrimSpace(r.PaymentMethod),
		Reminder:      r.Reminder,
		UserID:        user,
		CampaignID:    r.campaign,
	}
}
