package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Token request includes: code, redirect_uri, client credentials in the Basic auth header
	// Returns: access_token, refresh_token, expires_in
	AuthorizationCodeGrant GrantType = "authorization_code"
)

// Parameter names of the authorize URL, the callback and the token request body.
const (
	ParamResponseType     = "response_type"
	ParamClientID         = "client_id"
	ParamState            = "state"
	ParamRedirectURI      = "redirect_uri"
	ParamGrantType        = "grant_type"
	ParamCode             = "code"
	ParamError            = "error"
	ParamErrorDescription = "error_description"
)

// HeaderEnableJWT asks the provider to issue JWT formatted access tokens.
const HeaderEnableJWT = "enable-jwt"
