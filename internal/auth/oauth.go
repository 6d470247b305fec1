package auth

import (
	"strings"

	"golang.org/x/oauth2"

	"github.com/teemow/toodledo/internal/transport"
)

// DefaultScopes are requested when the configuration names none.
var DefaultScopes = []string{"basic", "tasks", "notes", "folders", "write"}

// Endpoint returns the Toodledo OAuth2 endpoint below baseURL, normally
// transport.DefaultBaseURL.
func Endpoint(baseURL string) oauth2.Endpoint {
	if baseURL == "" {
		baseURL = transport.DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return oauth2.Endpoint{
		AuthURL:   baseURL + "/account/authorize.php",
		TokenURL:  baseURL + "/account/token.php",
		AuthStyle: oauth2.AuthStyleAutoDetect,
	}
}

// OAuthConfig returns the OAuth2 configuration for a registered Toodledo
// application. Toodledo redirects to the URL registered with the application,
// so RedirectURL stays empty.
func OAuthConfig(clientID, clientSecret, baseURL string, scopes []string) *oauth2.Config {
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     Endpoint(baseURL),
		Scopes:       scopes,
	}
}
