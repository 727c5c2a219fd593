// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/features/shared/oauthflow"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// UserInfoURL is Google's v2 userinfo endpoint.
const UserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Config holds the Google client credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://api.hopenest.org/api/auth/google/callback"
}

// NewHandler creates the Google login handler.
func NewHandler(cfg Config, deps oauthflow.Deps) *oauthflow.Handler {
	return oauthflow.NewHandler(Provider(cfg), deps)
}

// Provider describes Google to the shared OAuth flow.
func Provider(cfg Config) oauthflow.Provider {
	return oauthflow.Provider{
		Name:   models.ProviderGoogle,
		Config: oauth2Config(cfg),
		Fetch:  fetchUserInfo(UserInfoURL),
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func oauth2Config(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// fetchUserInfo retrieves the profile from Google's userinfo endpoint.
// An email Google has not verified is not used for account linking.
func fetchUserInfo(endpoint string) oauthflow.ProfileFetcher {
	return func(ctx context.Context, client *http.Client) (userstore.OAuthProfile, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return userstore.OAuthProfile{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return userstore.OAuthProfile{}, fmt.Errorf("failed to fetch user info: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return userstore.OAuthProfile{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var info googleUserInfo
		if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
			return userstore.OAuthProfile{}, fmt.Errorf("failed to decode user info: %w", err)
		}

		p := userstore.OAuthProfile{
			ProviderID: info.ID,
			Name:       info.Name,
			Avatar:     info.Picture,
		}
		if info.EmailVerified {
			p.Email = info.Email
		}
		return p, nil
	}
}
