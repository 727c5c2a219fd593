// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/hopenest/internal/app/system/mailer"
	"github.com/dalemusser/hopenest/internal/app/system/timeouts"
	"github.com/dalemusser/hopenest/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is only accepted when env is dev.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minJWTSecretLen is the HS256 key floor outside dev.
const minJWTSecretLen = 32

// appConfigKeys defines the configuration keys for HopeNest.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: HOPENEST_MONGO_URI, HOPENEST_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "hopenest", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "HS256 signing key for bearer tokens (at least 32 bytes in production)"},
	{Name: "jwt_ttl", Default: "168h", Desc: "Session token lifetime"},

	{Name: "frontend_url", Default: "http://localhost:5173", Desc: "Web client origin; OAuth and verification redirects go here"},
	{Name: "api_public_url", Default: "http://localhost:8080", Desc: "Public base URL of this API, used in emailed links"},
	{Name: "cors_origins", Default: "", Desc: "Comma-separated allowed CORS origins (blank means frontend_url)"},

	// OAuth
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "facebook_client_id", Default: "", Desc: "Facebook app ID"},
	{Name: "facebook_client_secret", Default: "", Desc: "Facebook app secret"},
	{Name: "oauth_cookie_key", Default: "dev-only-oauth-cookie-key-0123456789", Desc: "Key for signing the OAuth state cookie (at least 32 bytes)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank uses the in-memory sandbox)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_smtp_mode", Default: "starttls", Desc: "SMTP security: none, starttls or tls"},
	{Name: "mail_from", Default: "no-reply@hopenest.org", Desc: "From email address"},
	{Name: "mail_from_name", Default: "HopeNest", Desc: "From display name"},

	{Name: "app_name", Default: "HopeNest", Desc: "Display name used in emails and pages"},

	// Uploads
	{Name: "upload_dir", Default: "./uploads", Desc: "Directory uploaded documents are written to"},
	{Name: "upload_url_prefix", Default: "/uploads", Desc: "URL prefix uploaded documents are served under"},

	{Name: "require_email_verified_for_approval", Default: false, Desc: "Refuse to approve crowdfunding applications whose email is unverified"},
	{Name: "reconcile_schedule", Default: "@every 1h", Desc: "Cron spec for recomputing campaign totals (blank disables)"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email promoted to admin on startup"},
	{Name: "admin_password", Default: "", Desc: "Password for admin_email when the account must be created"},

	{Name: "rate_limit_enabled", Default: true, Desc: "Enable per-IP rate limiting"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, HOPENEST_* for app) and flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "HOPENEST", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	if err := timeouts.ConfigureFromEnv(); err != nil {
		return nil, AppConfig{}, fmt.Errorf("timeouts: %w", err)
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTTTL:    appValues.Duration("jwt_ttl", 7*24*time.Hour),

		FrontendURL:  strings.TrimRight(appValues.String("frontend_url"), "/"),
		APIPublicURL: strings.TrimRight(appValues.String("api_public_url"), "/"),
		CORSOrigins:  splitList(appValues.String("cors_origins")),

		GoogleClientID:       appValues.String("google_client_id"),
		GoogleClientSecret:   appValues.String("google_client_secret"),
		FacebookClientID:     appValues.String("facebook_client_id"),
		FacebookClientSecret: appValues.String("facebook_client_secret"),
		OAuthCookieKey:       appValues.String("oauth_cookie_key"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailSMTPMode: strings.ToLower(appValues.String("mail_smtp_mode")),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		AppName: appValues.String("app_name"),

		UploadDir:       appValues.String("upload_dir"),
		UploadURLPrefix: "/" + strings.Trim(appValues.String("upload_url_prefix"), "/"),

		RequireEmailVerifiedForApproval: appValues.Bool("require_email_verified_for_approval"),
		ReconcileSchedule:               strings.TrimSpace(appValues.String("reconcile_schedule")),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),

		RateLimitEnabled: appValues.Bool("rate_limit_enabled"),
	}

	if len(appCfg.CORSOrigins) == 0 && appCfg.FrontendURL != "" {
		appCfg.CORSOrigins = []string{appCfg.FrontendURL}
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	return validateApp(coreCfg.Env, appCfg)
}

func validateApp(env string, appCfg AppConfig) error {
	var errs []error
	if env != "dev" {
		if len(appCfg.JWTSecret) < minJWTSecretLen || appCfg.JWTSecret == devJWTSecret {
			errs = append(errs, fmt.Errorf("jwt_secret must be at least %d bytes and not the dev default", minJWTSecretLen))
		}
	}
	if appCfg.JWTSecret == "" {
		errs = append(errs, errors.New("jwt_secret is required"))
	}
	if len(appCfg.OAuthCookieKey) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("oauth_cookie_key must be at least %d bytes", minJWTSecretLen))
	}
	switch appCfg.MailSMTPMode {
	case mailer.ModeNone, mailer.ModeSTARTTLS, mailer.ModeTLS:
	default:
		errs = append(errs, fmt.Errorf("mail_smtp_mode %q must be none, starttls or tls", appCfg.MailSMTPMode))
	}
	if appCfg.FrontendURL == "" {
		errs = append(errs, errors.New("frontend_url is required"))
	}
	if appCfg.UploadDir == "" {
		errs = append(errs, errors.New("upload_dir is required"))
	}
	if err := workers.ParseSchedule(appCfg.ReconcileSchedule); err != nil {
		errs = append(errs, fmt.Errorf("reconcile_schedule: %w", err))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimRight(strings.TrimSpace(p), "/"); p != "" {
			out = append(out, p)
		}
	}
	return out
}
