package backend

import (
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// OAuth providers supported for redirect-initiation. The backend
// completes the provider flow and hands the resulting bearer token back
// through query parameters on the client's callback route.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

var providerEndpoints = map[string]oauth2.Endpoint{
	ProviderGoogle: endpoints.Google,
	ProviderGitHub: endpoints.GitHub,
}

// OAuthSettings configures redirect initiation for one provider.
type OAuthSettings struct {
	ClientID    string
	RedirectURL string
	Scopes      []string
}

// AuthorizeURL builds the provider authorize URL the UI navigates to.
// state is echoed back on the callback for CSRF checking.
func AuthorizeURL(provider string, settings OAuthSettings, state string) (string, error) {
	endpoint, ok := providerEndpoints[provider]
	if !ok {
		return "", errors.Errorf("[AuthorizeURL] unsupported oauth provider %q", provider)
	}
	cfg := oauth2.Config{
		ClientID:    settings.ClientID,
		RedirectURL: settings.RedirectURL,
		Scopes:      settings.Scopes,
		Endpoint:    endpoint,
	}
	return cfg.AuthCodeURL(state), nil
}
