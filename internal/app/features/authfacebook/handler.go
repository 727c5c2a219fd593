// internal/app/features/authfacebook/handler.go
package authfacebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dalemusser/hopenest/internal/app/features/shared/oauthflow"
	userstore "github.com/dalemusser/hopenest/internal/app/store/users"
	"github.com/dalemusser/hopenest/internal/domain/models"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

// ProfileURL asks the Graph API for the fields an account needs.
const ProfileURL = "https://graph.facebook.com/me?fields=id,name,email,picture.type(large)"

// Config holds the Facebook app credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewHandler creates the Facebook login handler.
func NewHandler(cfg Config, deps oauthflow.Deps) *oauthflow.Handler {
	return oauthflow.NewHandler(Provider(cfg), deps)
}

// Provider describes Facebook to the shared OAuth flow.
func Provider(cfg Config) oauthflow.Provider {
	return oauthflow.Provider{
		Name: models.ProviderFacebook,
		Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"email", "public_profile"},
			Endpoint:     facebook.Endpoint,
		},
		Fetch: fetchProfile(ProfileURL),
	}
}

type graphProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// fetchProfile reads /me from the Graph API. Email is absent when the user
// declined the permission or has none on file.
func fetchProfile(endpoint string) oauthflow.ProfileFetcher {
	return func(ctx context.Context, client *http.Client) (userstore.OAuthProfile, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return userstore.OAuthProfile{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return userstore.OAuthProfile{}, fmt.Errorf("graph request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return userstore.OAuthProfile{}, fmt.Errorf("graph status %d", resp.StatusCode)
		}
		var gp graphProfile
		if err := json.NewDecoder(resp.Body).Decode(&gp); err != nil {
			return userstore.OAuthProfile{}, fmt.Errorf("decode graph profile: %w", err)
		}
		return userstore.OAuthProfile{
			ProviderID: gp.ID,
			Name:       gp.Name,
			Email:      gp.Email,
			Avatar:     gp.Picture.Data.URL,
		}, nil
	}
}
