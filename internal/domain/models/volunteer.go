// internal/domain/models/volunteer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Volunteer availability windows.
const (
	AvailabilityWeekdays = "weekdays"
	AvailabilityWeekends = "weekends"
	AvailabilityAny      = "any"
)

// Volunteer statuses.
const (
	VolunteerActive   = "active"
	VolunteerArchived = "archived"
)

// Volunteer is a signup to help, optionally tied to one campaign.
type Volunteer struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	Email        string              `bson:"email" json:"email"`
	Phone        string              `bson:"phone" json:"phone"`
	UserID       primitive.ObjectID  `bson:"user_id" json:"userId"`
	CampaignID   *primitive.ObjectID `bson:"campaign_id,omitempty" json:"campaignId,omitempty"`
	Availability string              `bson:"availability" json:"availability"`
	Skills       []string            `bson:"skills" json:"skills"`
	Message      string              `bson:"message" json:"message"`
	Status       string              `bson:"status" json:"status"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`

	CampaignTitle string `bson:"-" json:"campaignTitle,omitempty"`
}
