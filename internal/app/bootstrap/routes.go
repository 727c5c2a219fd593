// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"
	"strings"

	authfeature "github.com/dalemusser/hopenest/internal/app/features/auth"
	"github.com/dalemusser/hopenest/internal/app/features/authfacebook"
	"github.com/dalemusser/hopenest/internal/app/features/authgoogle"
	campaignsfeature "github.com/dalemusser/hopenest/internal/app/features/campaigns"
	crowdfundingfeature "github.com/dalemusser/hopenest/internal/app/features/crowdfunding"
	devmailfeature "github.com/dalemusser/hopenest/internal/app/features/devmail"
	donationsfeature "github.com/dalemusser/hopenest/internal/app/features/donations"
	errorsfeature "github.com/dalemusser/hopenest/internal/app/features/errors"
	healthfeature "github.com/dalemusser/hopenest/internal/app/features/health"
	"github.com/dalemusser/hopenest/internal/app/features/shared/oauthflow"
	statusfeature "github.com/dalemusser/hopenest/internal/app/features/status"
	usersfeature "github.com/dalemusser/hopenest/internal/app/features/users"
	volunteersfeature "github.com/dalemusser/hopenest/internal/app/features/volunteers"
	campaignstore "github.com/dalemusser/hopenest/internal/app/store/campaigns"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"github.com/dalemusser/hopenest/internal/app/system/auth"
	"github.com/dalemusser/hopenest/internal/app/system/metrics"
	"github.com/dalemusser/hopenest/internal/app/system/ratelimit"
	"github.com/dalemusser/hopenest/internal/app/system/secheaders"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Version is reported by /health and /api/status. Set with -ldflags.
var Version = "1.0.0"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed; the services Startup built are read from
// appServices.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	svc := appServices
	if svc == nil {
		return nil, errors.New("BuildHandler called before Startup")
	}

	// The crowdfunding verify page is the only server-rendered HTML.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	return newRouter(coreCfg.Env, appCfg, deps, svc, logger), nil
}

func newRouter(env string, appCfg AppConfig, deps DBDeps, svc *services, logger *zap.Logger) chi.Router {
	dev := env == "dev"

	// Every request resolves its bearer token against a fresh user record so
	// role changes and blocks apply immediately.
	authn := auth.NewAuthenticator(svc.Tokens, userstore.NewFetcher(deps.MongoDatabase), logger.Named("auth"))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(errorsfeature.Recoverer(logger, dev))
	r.Use(metrics.InstrumentHandler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	headers := secheaders.DefaultConfig(dev)
	headers.UploadsPrefix = svc.Files.Prefix() + "/"
	r.Use(secheaders.Middleware(headers))
	r.Use(authn.LoadUser)

	r.NotFound(errorsfeature.NotFound)
	r.MethodNotAllowed(errorsfeature.MethodNotAllowed)

	// Operational endpoints
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, env, Version, logger)))
	r.Handle("/metrics", metrics.Handler())
	r.Handle(svc.Files.Prefix()+"/*", svc.Files.Handler())

	// Authentication: local accounts plus the two OAuth providers.
	oauthDeps := oauthflow.Deps{
		States:        svc.States,
		Users:         svc.Users,
		Tokens:        svc.Tokens,
		Cookies:       svc.Cookies,
		FrontendURL:   appCfg.FrontendURL,
		SecureCookies: strings.HasPrefix(appCfg.APIPublicURL, "https://"),
		Log:           logger.Named("oauth"),
	}
	googleHandler := authgoogle.NewHandler(authgoogle.Config{
		ClientID:     appCfg.GoogleClientID,
		ClientSecret: appCfg.GoogleClientSecret,
		RedirectURL:  appCfg.APIPublicURL + "/api/auth/google/callback",
	}, oauthDeps)
	facebookHandler := authfacebook.NewHandler(authfacebook.Config{
		ClientID:     appCfg.FacebookClientID,
		ClientSecret: appCfg.FacebookClientSecret,
		RedirectURL:  appCfg.APIPublicURL + "/api/auth/facebook/callback",
	}, oauthDeps)

	authHandler := authfeature.NewHandler(svc.Users, svc.Tokens, svc.Mailer, logger)
	authHandler.AppName = appCfg.AppName
	authHandler.ExposeResetToken = dev
	authHandler.GoogleConfigured = googleHandler.IsConfigured()
	authHandler.FacebookConfigured = facebookHandler.IsConfigured()

	cf := crowdfundingfeature.NewHandler(svc.Campaigns, svc.Users, svc.Files, svc.Tokens, svc.Mailer,
		appCfg.APIPublicURL, appCfg.FrontendURL, logger)
	cf.SiteName = appCfg.AppName
	cf.Policy = campaignstore.DecisionPolicy{RequireEmailVerified: appCfg.RequireEmailVerifiedForApproval}

	donations := donationsfeature.NewHandler(svc.Donations, svc.Campaigns, svc.Mailer, logger)
	donations.SiteName = appCfg.AppName

	// The general limiter covers /api only.
	r.Route("/api", func(api chi.Router) {
		api.Use(optional(svc.GeneralLimiter))

		api.Route("/auth", func(ar chi.Router) {
			ar.Use(optional(svc.AuthLimiter))
			ar.Mount("/google", authgoogle.Routes(googleHandler))
			ar.Mount("/facebook", authfacebook.Routes(facebookHandler))
			ar.Mount("/", authfeature.Routes(authHandler))
		})

		// Domain
		api.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(svc.Users, logger)))
		api.Mount("/campaigns", campaignsfeature.Routes(campaignsfeature.NewHandler(svc.Campaigns, svc.Files, logger)))
		api.Mount("/crowdfunding", crowdfundingfeature.Routes(cf, optional(svc.UploadLimiter)))
		api.Mount("/donations", donationsfeature.Routes(donations))
		api.Mount("/volunteers", volunteersfeature.Routes(volunteersfeature.NewHandler(svc.Volunteers, logger)))

		if sb, ok := svc.Mailer.Sandbox(); ok && dev {
			api.Mount("/dev", devmailfeature.Routes(devmailfeature.NewHandler(sb)))
			logger.Info("dev outbox mounted at /api/dev/outbox")
		}

		api.Mount("/", statusfeature.Routes(statusfeature.NewHandler(svc.Tokens, Version, logger)))
	})

	return r
}

// optional returns l's middleware, or a pass-through when limiting is off.
func optional(l *ratelimit.Limiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return l.Middleware
}
