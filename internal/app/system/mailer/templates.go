package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var (
	verifyTmpl  = template.Must(template.New("crowdfunding-verify").Parse(layoutHTML + crowdfundingVerifyHTML))
	resetTmpl   = template.Must(template.New("password-reset").Parse(layoutHTML + passwordResetHTML))
	receiptTmpl = template.Must(template.New("donation-receipt").Parse(layoutHTML + donationReceiptHTML))
)

// CrowdfundingVerifyData fills the application verification email.
type CrowdfundingVerifyData struct {
	SiteName  string
	Name      string
	Title     string
	VerifyURL string
	ExpiresIn string // e.g., "24 hours"
}

// BuildCrowdfundingVerifyEmail asks an organizer to confirm the address on a
// new crowdfunding application.
func BuildCrowdfundingVerifyEmail(to string, data CrowdfundingVerifyData) Email {
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Verify your %s crowdfunding application", data.SiteName),
		TextBody: fmt.Sprintf("Hello %s,\n\nThanks for submitting %q.\nConfirm your email address to continue:\n%s\n\nThis link expires in %s.\n",
			greetingName(data.Name), data.Title, data.VerifyURL, data.ExpiresIn),
		HTMLBody: render(verifyTmpl, data),
	}
}

// PasswordResetData fills the password reset email.
type PasswordResetData struct {
	SiteName  string
	Name      string
	Code      string
	ExpiresIn string
}

// BuildPasswordResetEmail carries a one-time reset code.
func BuildPasswordResetEmail(to string, data PasswordResetData) Email {
	return Email{
		To:      to,
		Subject: fmt.Sprintf("Your %s password reset code", data.SiteName),
		TextBody: fmt.Sprintf("Hello %s,\n\nYour password reset code is: %s\n\nThis code expires in %s.\nIf you did not request a reset, you can ignore this email.\n",
			greetingName(data.Name), data.Code, data.ExpiresIn),
		HTMLBody: render(resetTmpl, data),
	}
}

// DonationReceiptData fills the donation receipt.
type DonationReceiptData struct {
	SiteName      string
	Name          string
	Amount        float64
	Cadence       string // once | monthly
	CampaignTitle string
	ReceiptNumber string
	Date          time.Time
}

// AmountText formats the amount for display.
func (d DonationReceiptData) AmountText() string {
	return fmt.Sprintf("$%.2f", d.Amount)
}

// CadenceText is a human label for the cadence.
func (d DonationReceiptData) CadenceText() string {
	if d.Cadence == "monthly" {
		return "Monthly"
	}
	return "One-time"
}

// DateText formats the donation date.
func (d DonationReceiptData) DateText() string {
	return d.Date.UTC().Format("January 2, 2006")
}

// BuildDonationReceiptEmail thanks a donor and records the receipt number.
func BuildDonationReceiptEmail(to string, data DonationReceiptData) Email {
	var txt strings.Builder
	fmt.Fprintf(&txt, "Hello %s,\n\nThank you for your donation to %s.\n\n", greetingName(data.Name), data.SiteName)
	fmt.Fprintf(&txt, "Amount: %s\nType: %s\n", data.AmountText(), data.CadenceText())
	if data.CampaignTitle != "" {
		fmt.Fprintf(&txt, "Campaign: %s\n", data.CampaignTitle)
	}
	fmt.Fprintf(&txt, "Date: %s\nReceipt number: %s\n", data.DateText(), data.ReceiptNumber)

	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Your %s donation receipt", data.SiteName),
		TextBody: txt.String(),
		HTMLBody: render(receiptTmpl, data),
	}
}

func greetingName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return ""
	}
	return buf.String()
}

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 520px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 28px 32px 20px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 22px; font-weight: 600; color: #0f766e;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px; font-size: 15px; color: #374151; line-height: 1.5;">
              {{template "content" .}}
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>{{end}}`

const crowdfundingVerifyHTML = `{{define "content"}}
<p>Hello {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Thanks for submitting <strong>{{.Title}}</strong>. Please confirm your email address so we can review your application.</p>
<p style="text-align: center; margin: 28px 0;">
  <a href="{{.VerifyURL}}" style="display: inline-block; padding: 12px 28px; background-color: #0f766e; color: #ffffff; text-decoration: none; border-radius: 6px;">Verify email</a>
</p>
<p style="font-size: 13px; color: #6b7280;">This link expires in {{.ExpiresIn}}.</p>
{{end}}`

const passwordResetHTML = `{{define "content"}}
<p>Hello {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Your password reset code is:</p>
<div style="background-color: #f3f4f6; border-radius: 8px; padding: 20px; text-align: center; margin-bottom: 20px;">
  <span style="font-size: 28px; font-weight: 700; letter-spacing: 6px; font-family: 'Courier New', monospace;">{{.Code}}</span>
</div>
<p style="font-size: 13px; color: #6b7280;">This code expires in {{.ExpiresIn}}. If you did not request a reset, you can ignore this email.</p>
{{end}}`

const donationReceiptHTML = `{{define "content"}}
<p>Hello {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
<p>Thank you for your donation.</p>
<table role="presentation" cellspacing="0" cellpadding="6" style="font-size: 14px;">
  <tr><td style="color: #6b7280;">Amount</td><td>{{.AmountText}}</td></tr>
  <tr><td style="color: #6b7280;">Type</td><td>{{.CadenceText}}</td></tr>
  {{if .CampaignTitle}}<tr><td style="color: #6b7280;">Campaign</td><td>{{.CampaignTitle}}</td></tr>{{end}}
  <tr><td style="color: #6b7280;">Date</td><td>{{.DateText}}</td></tr>
  <tr><td style="color: #6b7280;">Receipt</td><td>{{.ReceiptNumber}}</td></tr>
</table>
{{end}}`
