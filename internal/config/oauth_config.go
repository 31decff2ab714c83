package config

import "time"

const (
	authorizeURLVar    = "PROVIDER_AUTHORIZE_URL"
	tokenURLVar        = "PROVIDER_TOKEN_URL"
	redirectURIVar     = "BLING_REDIRECT_URI"
	providerTimeoutVar = "PROVIDER_TIMEOUT"

	DefaultAuthorizeURL = "https://bling.com.br/Api/v3/oauth/authorize"
	DefaultTokenURL     = "https://www.bling.com.br/Api/v3/oauth/token"
	DefaultRedirectURI  = "https://oauth-bling-web.vercel.app/oauth/redirect"
)

type OAuthConfig interface {
	GetAuthorizeURL() string
	GetTokenURL() string
	GetRedirectURI() string
	GetProviderTimeout() time.Duration
	GetStateLength() int
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetAuthorizeURL() string {
	return GetEnv(authorizeURLVar, DefaultAuthorizeURL)
}

func (OAuth) GetTokenURL() string {
	return GetEnv(tokenURLVar, DefaultTokenURL)
}

// GetRedirectURI returns the callback URL registered with the provider.
// The authorize URL and the token exchange must both use this value.
func (OAuth) GetRedirectURI() string {
	return GetEnv(redirectURIVar, DefaultRedirectURI)
}

func (OAuth) GetProviderTimeout() time.Duration {
	return GetEnvDuration(providerTimeoutVar, 15*time.Second)
}

func (OAuth) GetStateLength() int {
	return 16 // 16 bytes = 128 bits
}
