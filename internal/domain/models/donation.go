// internal/domain/models/donation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation cadences.
const (
	DonationOnce    = "once"
	DonationMonthly = "monthly"
)

// DefaultDonationStatus is recorded when the caller gives none.
const DefaultDonationStatus = "completed"

// Donation is immutable once recorded.
type Donation struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Amount        float64             `bson:"amount" json:"amount"`
	Type          string              `bson:"type" json:"type"`
	Name          string              `bson:"name" json:"name"`
	Email         string              `bson:"email" json:"email"`
	Phone         string              `bson:"phone" json:"phone"`
	PaymentMethod string              `bson:"payment_method" json:"paymentMethod"`
	Reminder      bool                `bson:"reminder" json:"reminder"`
	Date          time.Time           `bson:"date" json:"date"`
	Status        string              `bson:"status" json:"status"`
	UserID        primitive.ObjectID  `bson:"user_id" json:"userId"`
	CampaignID    *primitive.ObjectID `bson:"campaign_id,omitempty" json:"campaignId,omitempty"`
	ReceiptNumber string              `bson:"receipt_number" json:"receiptNumber"`

	CampaignTitle string `bson:"-" json:"campaignTitle,omitempty"`
}
