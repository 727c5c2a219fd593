// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, log level and the environment name;
// everything HopeNest itself needs lives here. The struct is passed to every
// lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer tokens
	JWTSecret string        // HS256 signing key (at least 32 bytes outside dev)
	JWTTTL    time.Duration // session token lifetime

	// Origins
	FrontendURL  string   // web client; OAuth and verification redirects land here
	APIPublicURL string   // this API as browsers reach it; used in emailed links
	CORSOrigins  []string // allowed CORS origins; defaults to FrontendURL

	// OAuth providers (a provider with a blank secret is disabled)
	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string
	OAuthCookieKey       string // signs the short-lived state cookie

	// Email/SMTP configuration
	MailSMTPHost string // blank selects the sandbox transport
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailSMTPMode string // none | starttls | tls
	MailFrom     string
	MailFromName string

	AppName string // used in email subjects and pages

	// Uploaded documents
	UploadDir       string
	UploadURLPrefix string

	// Crowdfunding approval
	RequireEmailVerifiedForApproval bool

	// Campaign total reconciliation (cron spec; blank disables)
	ReconcileSchedule string

	// Admin bootstrap
	AdminEmail    string // promoted to admin on startup
	AdminPassword string // when set and AdminEmail has no account, one is created

	RateLimitEnabled bool
}
