package googleauth

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Client wraps the OAuth2 configuration for the Google sign-in flow. The
// frontend drives the flow itself; the API only hands out the configuration
// and later verifies the resulting ID token.
type Client struct {
	config *oauth2.Config
}

// NewClient creates an OAuth2 client for the given application credentials
func NewClient(clientID, redirectURI string) *Client {
	return &Client{
		config: &oauth2.Config{
			ClientID:    clientID,
			RedirectURL: redirectURI,
			Scopes:      []string{"openid", "email", "profile"},
			Endpoint:    google.Endpoint,
		},
	}
}

// AuthCodeURL returns the authorization URL for the given state
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// LoginConfig contains what the frontend needs to start a Google sign-in
type LoginConfig struct {
	AuthorizationEndpoint string `json:"authorization_endpoint"`
	TokenEndpoint         string `json:"token_endpoint"`
	ClientID              string `json:"client_id"`
	RedirectURI           string `json:"redirect_uri"`
	Scope                 string `json:"scope"`
}

// LoginConfig returns the OAuth2 configuration for frontend-initiated sign-in
func (c *Client) LoginConfig() *LoginConfig {
	return &LoginConfig{
		AuthorizationEndpoint: c.config.Endpoint.AuthURL,
		TokenEndpoint:         c.config.Endpoint.TokenURL,
		ClientID:              c.config.ClientID,
		RedirectURI:           c.config.RedirectURL,
		Scope:                 "openid email profile",
	}
}
