package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/skydeals/skydeals-api/internal/config"
)

// userInfoEndpoint is Google's OpenID Connect userinfo endpoint.
const userInfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GoogleProfile holds the subset of the Google userinfo response the
// application needs to provision an account.
type GoogleProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleOAuth exchanges authorization codes with Google and fetches the
// authenticated user's profile.
type GoogleOAuth struct {
	conf *oauth2.Config
}

// NewGoogleOAuth creates a GoogleOAuth from application configuration.
func NewGoogleOAuth(cfg config.OAuthConfig) *GoogleOAuth {
	return &GoogleOAuth{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthURL returns the Google consent page URL for the given state token.
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for tokens and fetches the
// user's profile from the userinfo endpoint.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("exchanging authorization code: %w", err)
	}

	client := g.conf.Client(ctx, token)
	resp, err := client.Get(userInfoEndpoint)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("fetching user profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return GoogleProfile{}, fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, body)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return GoogleProfile{}, fmt.Errorf("decoding user profile: %w", err)
	}
	if profile.Email == "" {
		return GoogleProfile{}, fmt.Errorf("userinfo response missing email")
	}
	return profile, nil
}
