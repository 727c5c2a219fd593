// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	donationstore "github.com/dalemusser/hopenest/internal/app/store/donations"
	"github.com/dalemusser/hopenest/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	volunteerstore "github.com/dalemusser/hopenest/internal/app/store/volunteers"
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/app/system/mailer"
	"github.com/dalemusser/hopenest/internal/app/system/ratelimit"
	"github.com/dalemusser/hopenest/internal/app/system/uploads"
	"github.com/dalemusser/hopenest/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// services are built once in Startup and read by BuildHandler and Shutdown.
type services struct {
	Mailer     *mailer.Mailer
	Files      *uploads.Store
	Tokens     *auth.Tokens
	Cookies    *securecookie.SecureCookie
	Reconciler *workers.TotalsReconciler

	Users      *userstore.Store
	States     *oauthstate.Store
	Campaigns  *campaignstore.Store
	Donations  *donationstore.Store
	Volunteers *volunteerstore.Store

	AuthLimiter    *ratelimit.Limiter
	GeneralLimiter *ratelimit.Limiter
	UploadLimiter  *ratelimit.Limiter
}

var appServices *services

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	svc, err := buildServices(coreCfg.Env, appCfg, deps, logger)
	if err != nil {
		return err
	}

	if err := ensureAdmin(ctx, svc.Users, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
		// A missing admin is not fatal; the service still serves users.
		logger.Error("admin bootstrap failed", zap.String("email", appCfg.AdminEmail), zap.Error(err))
	}

	if err := svc.Reconciler.Start(); err != nil {
		return fmt.Errorf("start reconciler: %w", err)
	}

	appServices = svc
	return nil
}

func buildServices(env string, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*services, error) {
	db := deps.MongoDatabase

	m, err := mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		Username: appCfg.MailSMTPUser,
		Password: appCfg.MailSMTPPass,
		Mode:     appCfg.MailSMTPMode,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
		Sandbox:  env == "dev" && appCfg.MailSMTPHost == "sandbox",
	}, logger.Named("mailer"))
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}

	files, err := uploads.NewLocal(appCfg.UploadDir, appCfg.UploadURLPrefix, logger.Named("uploads"))
	if err != nil {
		return nil, fmt.Errorf("upload store: %w", err)
	}

	campaigns := campaignstore.New(db)
	svc := &services{
		Mailer:     m,
		Files:      files,
		Tokens:     auth.NewTokens(appCfg.JWTSecret, appCfg.JWTTTL),
		Cookies:    securecookie.New([]byte(appCfg.OAuthCookieKey), nil).MaxAge(600),
		Reconciler: workers.NewTotalsReconciler(campaigns, logger.Named("reconcile"), appCfg.ReconcileSchedule),

		Users:      userstore.New(db),
		States:     oauthstate.New(db),
		Campaigns:  campaigns,
		Donations:  donationstore.New(db),
		Volunteers: volunteerstore.New(db),
	}
	if appCfg.RateLimitEnabled {
		svc.AuthLimiter = ratelimit.Auth()
		svc.GeneralLimiter = ratelimit.General()
		svc.UploadLimiter = ratelimit.Upload()
	}
	return svc, nil
}

// ensureAdmin promotes email to admin, creating the account when a password
// is configured and none exists.
func ensureAdmin(ctx context.Context, users *userstore.Store, email, password string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}
	created, err := users.EnsureAdmin(ctx, email, password)
	if errors.Is(err, userstore.ErrNotFound) {
		logger.Warn("admin_email has no account and admin_password is unset; nothing promoted",
			zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}
	if created {
		logger.Info("admin account created", zap.String("email", email))
	} else {
		logger.Info("admin role ensured", zap.String("email", email))
	}
	return nil
}
