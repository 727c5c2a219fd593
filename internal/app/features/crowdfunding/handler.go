// internal/app/features/crowdfunding/handler.go
package crowdfunding

import (
	"context"
	"net/url"

	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/app/system/mailer"
	"github.com/dalemusser/hopenest/internal/app/system/uploads"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"go.uber.org/zap"
)

// Client-facing messages.
const (
	msgNotFound         = "Crowdfunding campaign not found"
	msgAppNotFound      = "Application not found"
	msgAlreadyVerified  = "Email already verified"
	msgNoUserEmail      = "User email not found"
	msgVerificationSent = "Verification email sent"
	msgAlreadyDecided   = "Application has already been decided"
	msgNotVerified      = "Email must be verified before approval"
	defaultRejectReason = "Rejected"
)

// UploadCategory is the directory applications' documents are stored under.
const UploadCategory = "crowdfunding"

// Sender delivers one email.
type Sender interface {
	Send(mailer.Email) error
}

// FileStore keeps uploaded documents.
type FileStore interface {
	Save(ctx context.Context, category string, files []uploads.File) ([]string, error)
	Remove(ctx context.Context, paths []string)
}

type Handler struct {
	Campaigns *campaignstore.Store
	Users     *userstore.Store
	Files     FileStore
	Tokens    *auth.Tokens
	Mail      Sender
	Log       *zap.Logger

	Policy       campaignstore.DecisionPolicy
	UploadPolicy uploads.Policy

	SiteName     string
	APIPublicURL string // base of the verify link, e.g. "https://api.hopenest.org"
	FrontendURL  string
}

func NewHandler(
	campaigns *campaignstore.Store,
	users *userstore.Store,
	files FileStore,
	tokens *auth.Tokens,
	mail Sender,
	apiPublicURL, frontendURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Campaigns:    campaigns,
		Users:        users,
		Files:        files,
		Tokens:       tokens,
		Mail:         mail,
		Log:          logger,
		UploadPolicy: uploads.DocumentPolicy,
		SiteName:     "HopeNest",
		APIPublicURL: apiPublicURL,
		FrontendURL:  frontendURL,
	}
}

// verificationEmail signs a fresh verify link for c and builds the message.
func (h *Handler) verificationEmail(c *models.Campaign, to, name string) (mailer.Email, error) {
	token, err := h.Tokens.IssueApplicationVerify(c.ID.Hex(), c.Organizer.Hex())
	if err != nil {
		return mailer.Email{}, err
	}
	link := h.APIPublicURL + "/api/crowdfunding/verify-email?token=" + url.QueryEscape(token)
	return mailer.BuildCrowdfundingVerifyEmail(to, mailer.CrowdfundingVerifyData{
		SiteName:  h.SiteName,
		Name:      name,
		Title:     c.Title,
		VerifyURL: link,
		ExpiresIn: "24 hours",
	}), nil
}

func (h *Handler) sendVerification(c *models.Campaign, to, name string) error {
	msg, err := h.verificationEmail(c, to, name)
	if err != nil {
		return err
	}
	return h.Mail.Send(msg)
}
