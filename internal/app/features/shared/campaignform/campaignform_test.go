package campaignform_test

import (
	"testing"
	"time"

	"github.com/dalemusser/hopenest/internal/app/features/shared/campaignform"
	"github.com/dalemusser/hopenest/internal/app/system/inputval"
	"github.com/dalemusser/hopenest/internal/app/system/uploads"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestFields_Validate(t *testing.T) {
	cases := []struct {
		name  string
		in    campaignform.Fields
		field string
	}{
		{"ok", campaignform.Fields{Title: "Wells", Description: "Clean water", TargetAmount: ptr(500.0)}, ""},
		{"no title", campaignform.Fields{Description: "d", TargetAmount: ptr(1.0)}, "title"},
		{"markup only description", campaignform.Fields{Title: "t", Description: "<b></b>", TargetAmount: ptr(1.0)}, "description"},
		{"no amount", campaignform.Fields{Title: "t", Description: "d"}, "targetAmount"},
		{"zero amount", campaignform.Fields{Title: "t", Description: "d", TargetAmount: ptr(0.0)}, "targetAmount"},
		{"bad start", campaignform.Fields{Title: "t", Description: "d", TargetAmount: ptr(1.0), StartDate: "soon"}, "startDate"},
		{"end before start", campaignform.Fields{Title: "t", Description: "d", TargetAmount: ptr(1.0),
			StartDate: "2024-05-01", EndDate: "2024-04-01"}, "endDate"},
		{"bad status", campaignform.Fields{Title: "t", Description: "d", TargetAmount: ptr(1.0), Status: "done"}, "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			ve, ok := inputval.As(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestFields_CampaignStripsMarkup(t *testing.T) {
	f := campaignform.Fields{
		Title:        "  School   roof ",
		Description:  "<script>x()</script><p>Fix the <b>roof</b></p>",
		TargetAmount: ptr(1200.0),
		StartDate:    "2024-01-02",
		Category:     " Education ",
	}
	require.NoError(t, f.Validate())

	c := f.Campaign(models.CampaignTypeCampaign)
	assert.Equal(t, "School roof", c.Title)
	assert.Equal(t, "Fix the roof", c.Description)
	assert.Equal(t, "education", c.Category)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), c.StartDate)
	assert.Nil(t, c.EndDate)
}

func TestFromForm_BadAmount(t *testing.T) {
	f := campaignform.FromForm(&uploads.Form{Values: map[string]string{
		"title": "t", "description": "d", "targetAmount": "lots",
	}})
	ve, ok := inputval.As(f.Validate())
	require.True(t, ok)
	assert.Equal(t, "targetAmount", ve.Field)
}

func TestPatch_Validate(t *testing.T) {
	p := campaignform.Patch{Title: ptr("New"), TargetAmount: ptr(10.0), EndDate: ptr("2025-01-01")}
	require.NoError(t, p.Validate())
	u := p.Update()
	assert.Equal(t, "New", *u.Title)
	assert.Equal(t, 10.0, *u.TargetAmount)
	assert.NotNil(t, u.EndDate)
	assert.Nil(t, u.Description)

	bad := campaignform.Patch{TargetAmount: ptr(-5.0)}
	_, ok := inputval.As(bad.Validate())
	assert.True(t, ok)
}
