// Package secheaders sets response security headers for the JSON API and the
// few HTML pages it serves.
package secheaders

import (
	"net/http"
	"strconv"
	"strings"
)

// Config controls the headers written on every response.
type Config struct {
	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds. Zero
	// disables the header.
	HSTSMaxAge int
	// ContentSecurityPolicy defaults to DefaultCSP.
	ContentSecurityPolicy string
	// CrossOriginResourcePolicy applies under UploadsPrefix so the web
	// client, which lives on another origin, can embed documents and images.
	CrossOriginResourcePolicy string
	UploadsPrefix             string
}

// DefaultCSP allows the inline stylesheet of the verification page and
// nothing else.
const DefaultCSP = "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"

// DefaultConfig leaves HSTS off in dev.
func DefaultConfig(isDev bool) Config {
	cfg := Config{
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     DefaultCSP,
		CrossOriginResourcePolicy: "cross-origin",
		UploadsPrefix:             "/uploads/",
	}
	if isDev {
		cfg.HSTSMaxAge = 0
	}
	return cfg
}

// Middleware writes the configured headers before calling next.
func Middleware(cfg Config) func(http.Handler) http.Handler {
	csp := cfg.ContentSecurityPolicy
	if csp == "" {
		csp = DefaultCSP
	}
	var hsts string
	if cfg.HSTSMaxAge > 0 {
		hsts = "max-age=" + strconv.Itoa(cfg.HSTSMaxAge) + "; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", csp)
			h.Set("Permissions-Policy", "camera=(), geolocation=(), microphone=(), payment=(), interest-cohort=()")
			if cfg.CrossOriginResourcePolicy != "" && cfg.UploadsPrefix != "" &&
				strings.HasPrefix(r.URL.Path, cfg.UploadsPrefix) {
				h.Set("Cross-Origin-Resource-Policy", cfg.CrossOriginResourcePolicy)
			}
			if hsts != "" && isHTTPS(r) {
				h.Set("Strict-Transport-Security", hsts)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
