// Package campaignform validates campaign and crowdfunding request bodies
// and maps them onto the store.
package campaignform

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/hopenest/internal/app/features/shared/params"
	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	"github.com/dalemusser/hopenest/internal/app/system/htmlsanitize"
	"github.com/dalemusser/hopenest/internal/app/system/inputval"
	"github.com/dalemusser/hopenest/internal/app/system/normalize"
	"github.com/dalemusser/hopenest/internal/app/system/uploads"
	"github.com/dalemusser/hopenest/internal/domain/models"
)

const (
	maxTitle       = 200
	maxDescription = 10000
)

// Fields is a full campaign body, used on create.
type Fields struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	TargetAmount *float64 `json:"targetAmount"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	ImageURL     string   `json:"imageUrl"`
	Category     string   `json:"category"`
	Status       string   `json:"status"`

	start time.Time
	end   *time.Time
}

// FromForm reads Fields from a multipart application. A target amount that
// does not parse is reported by Validate.
func FromForm(f *uploads.Form) Fields {
	out := Fields{
		Title:       f.Value("title"),
		Description: f.Value("description"),
		StartDate:   f.Value("startDate"),
		EndDate:     f.Value("endDate"),
		ImageURL:    f.Value("imageUrl"),
		Category:    f.Value("category"),
	}
	if v := f.Value("targetAmount"); v != "" {
		amt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			amt = math.NaN()
		}
		out.TargetAmount = &amt
	}
	return out
}

func (f *Fields) Validate() error {
	f.Title = normalize.Name(f.Title)
	f.Description = htmlsanitize.PlainText(f.Description)
	f.Category = normalize.Lower(f.Category)
	f.ImageURL = strings.TrimSpace(f.ImageURL)

	if f.Title == "" {
		return inputval.New("title", "Title is required")
	}
	if len(f.Title) > maxTitle {
		return inputval.New("title", "Title is too long")
	}
	if f.Description == "" {
		return inputval.New("description", "Description is required")
	}
	if len(f.Description) > maxDescription {
		return inputval.New("description", "Description is too long")
	}
	if f.TargetAmount == nil {
		return inputval.New("targetAmount", "Target amount is required")
	}
	if err := checkAmount(*f.TargetAmount); err != nil {
		return err
	}

	if f.StartDate != "" {
		t, err := params.ParseDate(f.StartDate)
		if err != nil {
			return inputval.New("startDate", "Start date is invalid")
		}
		f.start = t
	}
	if f.EndDate != "" {
		t, err := params.ParseDate(f.EndDate)
		if err != nil {
			return inputval.New("endDate", "End date is invalid")
		}
		f.end = &t
	}
	if f.end != nil && !f.start.IsZero() && f.end.Before(f.start) {
		return inputval.New("endDate", "End date must be after the start date")
	}

	f.Status = normalize.Lower(f.Status)
	if f.Status != "" && !inputval.OneOf(f.Status, models.StatusPending, models.StatusApproved, models.StatusRejected) {
		return inputval.New("status", "Status must be pending, approved or rejected")
	}
	return nil
}

// Campaign builds the record. Call after Validate.
func (f *Fields) Campaign(campaignType string) models.Campaign {
	return models.Campaign{
		Title:        f.Title,
		Description:  f.Description,
		TargetAmount: *f.TargetAmount,
		StartDate:    f.start,
		EndDate:      f.end,
		ImageURL:     f.ImageURL,
		Category:     f.Category,
		Type:         campaignType,
		Status:       f.Status,
	}
}

// Patch is a partial campaign body, used on update. Status, type and the
// running total are not part of it.
type Patch struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	TargetAmount *float64 `json:"targetAmount"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	ImageURL     *string  `json:"imageUrl"`
	Category     *string  `json:"category"`

	upd campaignstore.Update
}

func (p *Patch) Validate() error {
	p.upd = campaignstore.Update{}
	if p.Title != nil {
		t := normalize.Name(*p.Title)
		if t == "" {
			return inputval.New("title", "Title cannot be empty")
		}
		if len(t) > maxTitle {
			return inputval.New("title", "Title is too long")
		}
		p.upd.Title = &t
	}
	if p.Description != nil {
		d := htmlsanitize.PlainText(*p.Description)
		if d == "" {
			return inputval.New("description", "Description cannot be empty")
		}
		if len(d) > maxDescription {
			return inputval.New("description", "Description is too long")
		}
		p.upd.Description = &d
	}
	if p.TargetAmount != nil {
		if err := checkAmount(*p.TargetAmount); err != nil {
			return err
		}
		p.upd.TargetAmount = p.TargetAmount
	}
	if p.StartDate != nil {
		t, err := params.ParseDate(*p.StartDate)
		if err != nil {
			return inputval.New("startDate", "Start date is invalid")
		}
		p.upd.StartDate = &t
	}
	if p.EndDate != nil {
		t, err := params.ParseDate(*p.EndDate)
		if err != nil {
			return inputval.New("endDate", "End date is invalid")
		}
		p.upd.EndDate = &t
	}
	if p.upd.StartDate != nil && p.upd.EndDate != nil && p.upd.EndDate.Before(*p.upd.StartDate) {
		return inputval.New("endDate", "End date must be after the start date")
	}
	if p.ImageURL != nil {
		u := strings.TrimSpace(*p.ImageURL)
		p.upd.ImageURL = &u
	}
	if p.Category != nil {
		c := normalize.Lower(*p.Category)
		p.upd.Category = &c
	}
	return nil
}

// Update returns the store update. Call after Validate.
func (p *Patch) Update() campaignstore.Update {
	return p.upd
}

func checkAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return inputval.New("targetAmount", "Target amount must be a positive number")
	}
	return nil
}
