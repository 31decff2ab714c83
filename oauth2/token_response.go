package oauth2

import (
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenResponse is the subset of the provider's token endpoint response the
// relay looks at. The provider owns these fields and any of them may be absent.
type TokenResponse struct {
	// AccessToken authorizes API calls against the provider.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..." (with enable-jwt: 1)
	AccessToken string `json:"access_token,omitempty"`

	// RefreshToken obtains new access tokens later. Refreshing is left to the caller.
	RefreshToken string `json:"refresh_token,omitempty"`

	// ExpiresIn is the access token lifetime in seconds.
	// Some providers send it quoted, json.Number accepts both.
	ExpiresIn json.Number `json:"expires_in,omitempty"`

	TokenType string `json:"token_type,omitempty"`
	Scope     string `json:"scope,omitempty"`
}

// TokenSummary is what a result page would show: the two tokens and when the
// access token expires.
type TokenSummary struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	ExpiresAt    time.Time
}

// HasRefreshToken reports whether the provider issued a refresh token.
func (s TokenSummary) HasRefreshToken() bool {
	return s.RefreshToken != ""
}

// Summarize extracts a TokenSummary from a token endpoint JSON body. It
// returns false when the body has no access token. When expires_in is missing
// and the access token is a JWT, the exp claim is used instead; the token is
// not verified, the relay only displays it.
func Summarize(body []byte, now time.Time) (TokenSummary, bool) {
	var resp TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.AccessToken == "" {
		return TokenSummary{}, false
	}

	summary := TokenSummary{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}

	if seconds, err := resp.ExpiresIn.Int64(); err == nil && seconds > 0 {
		summary.ExpiresIn = time.Duration(seconds) * time.Second
		summary.ExpiresAt = now.Add(summary.ExpiresIn)
		return summary, true
	}

	if exp, ok := jwtExpiry(resp.AccessToken); ok {
		summary.ExpiresAt = exp
		if exp.After(now) {
			summary.ExpiresIn = exp.Sub(now).Truncate(time.Second)
		}
	}
	return summary, true
}

func jwtExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
