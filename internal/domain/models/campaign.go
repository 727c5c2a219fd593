// internal/domain/models/campaign.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign types.
const (
	CampaignTypeCampaign     = "campaign"
	CampaignTypeCrowdfunding = "crowdfunding"
)

// Approval states. Pending is the only non-terminal state.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Campaign is either an ordinary fundraising campaign or a crowdfunding
// application, distinguished by Type.
type Campaign struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description" json:"description"`
	TargetAmount  float64             `bson:"target_amount" json:"targetAmount"`
	CurrentAmount float64             `bson:"current_amount" json:"currentAmount"`
	StartDate     time.Time           `bson:"start_date" json:"startDate"`
	EndDate       *time.Time          `bson:"end_date,omitempty" json:"endDate,omitempty"`
	ImageURL      string              `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Type          string              `bson:"type" json:"type"`
	Category      string              `bson:"category,omitempty" json:"category,omitempty"`
	Organizer     *primitive.ObjectID `bson:"organizer,omitempty" json:"organizer,omitempty"`

	Status          string   `bson:"status" json:"status"`
	Documents       []string `bson:"documents" json:"documents"`
	RejectionReason string   `bson:"rejection_reason,omitempty" json:"rejectionReason,omitempty"`
	EmailVerified   bool     `bson:"email_verified" json:"emailVerified"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`

	// Populated on read for listings; never persisted.
	OrganizerName  string `bson:"-" json:"organizerName,omitempty"`
	OrganizerEmail string `bson:"-" json:"organizerEmail,omitempty"`
}

// IsDecided reports whether an admin has approved or rejected the record.
func (c Campaign) IsDecided() bool {
	return c.Status == StatusApproved || c.Status == StatusRejected
}
